package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctors-portal/internal/config"
	"github.com/harentsoaR/doctors-portal/internal/events"
	"github.com/harentsoaR/doctors-portal/internal/handlers"
	"github.com/harentsoaR/doctors-portal/internal/logger"
	"github.com/harentsoaR/doctors-portal/internal/middleware"
	"github.com/harentsoaR/doctors-portal/internal/models"
	"github.com/harentsoaR/doctors-portal/internal/services"
	"github.com/harentsoaR/doctors-portal/internal/store"
	"github.com/harentsoaR/doctors-portal/internal/tracing"
	"github.com/harentsoaR/doctors-portal/internal/utils"
)

const serviceName = "doctors-portal"

func main() {
	rootCmd := &cobra.Command{
		Use:   "doctors-portal",
		Short:        "Doctors portal booking API",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the treatment catalog from a JSON file",
		RunE:  runSeed,
	}
	seedCmd.Flags().StringP("file", "f", "catalog.json", "catalog file: [{\"name\",\"slots\",\"price\"}]")

	rootCmd.AddCommand(serveCmd, seedCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *logrus.Logger, error) {
	cfg, envFile, err := config.Load()
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	if !envFile {
		log.Info("No .env file found, relying on environment variables.")
	}
	log.WithFields(logrus.Fields{
		"mongo_database": cfg.MongoDatabase,
		"port":           cfg.Port,
		"payments":       cfg.StripeSecretKey != "",
		"broker":         cfg.RabbitURL != "",
		"tracing":        cfg.OTLPEndpoint != "",
	}).Info("configuration loaded")
	return cfg, log, nil
}

func connectMongo(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	// --- Database Connection ---
	client, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	db := store.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}
	log.Info("Successfully connected to MongoDB!")

	// --- Events ---
	var pub events.Publisher = events.NewLogPublisher(log)
	if cfg.RabbitURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			return err
		}
		pub = amqpPub
	}
	defer pub.Close()

	// --- Services ---
	var gateway services.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = services.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY is not set, payment intents are disabled")
	}
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	notify := services.NewNotificationService(pub, log)

	h := handlers.NewHandler(
		services.NewBookingService(db, notify, log),
		services.NewPaymentService(db, gateway, notify, log),
		services.NewUserService(db, tokens, cfg.BcryptCost, log),
		services.NewDoctorService(db, log),
		log,
	)

	// --- Gin Router ---
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsConfig))
	h.Register(r, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Doctors portal running on %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		log.WithField("signal", s.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("file")

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var catalog []models.TreatmentOption
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	ctx := cmd.Context()
	client, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	db := store.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	for _, option := range catalog {
		if option.Name == "" {
			return errors.New("catalog entry without a name")
		}
		if err := db.UpsertTreatment(ctx, option); err != nil {
			return fmt.Errorf("upsert %q: %w", option.Name, err)
		}
		log.WithFields(logrus.Fields{"treatment": option.Name, "slots": len(option.Slots)}).Info("treatment seeded")
	}
	return nil
}
