package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/doctors-portal/internal/services"
)

// Handler bundles the services the HTTP layer talks to.
type Handler struct {
	Bookings *services.BookingService
	Payments *services.PaymentService
	Users    *services.UserService
	Doctors  *services.DoctorService
	Log      logrus.FieldLogger
}

func NewHandler(
	bookings *services.BookingService,
	payments *services.PaymentService,
	users *services.UserService,
	doctors *services.DoctorService,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		Bookings: bookings,
		Payments: payments,
		Users:    users,
		Doctors:  doctors,
		Log:      log,
	}
}

// respondError maps service errors onto status codes. Anything unknown is an
// upstream failure and its message is passed through.
func respondError(c *gin.Context, err error) {
	var dup *services.DuplicateBookingError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{"acknowledged": false, "message": dup.Error()})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Doctors portal server is running")
}
