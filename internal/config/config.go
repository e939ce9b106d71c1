package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Database
	MongoURI      string `envconfig:"MONGO_URI" required:"true"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"doctors-portal"`
	// Auth
	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL     time.Duration `envconfig:"JWT_TTL" default:"24h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"12"`
	// Payments
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	// Network
	Port        string   `envconfig:"API_PORT" default:"5000"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	// Messaging
	RabbitURL      string `envconfig:"RABBIT_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"booking.events"`
	// Observability
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file and then decodes the environment.
// The returned bool reports whether a .env file was found.
func Load() (Config, bool, error) {
	envFile := godotenv.Load() == nil
	var c Config
	err := envconfig.Process("", &c)
	return c, envFile, err
}
