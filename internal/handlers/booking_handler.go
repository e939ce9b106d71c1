package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal/internal/middleware"
	"github.com/harentsoaR/doctors-portal/internal/models"
	"github.com/harentsoaR/doctors-portal/internal/services"
)

// GET /appointmentOptions?date=
func (h *Handler) GetAppointmentOptions(c *gin.Context) {
	options, err := h.Bookings.Availability(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

// GET /appointmentSpeciality
func (h *Handler) GetAppointmentSpeciality(c *gin.Context) {
	names, err := h.Bookings.TreatmentNames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	specialities := make([]gin.H, 0, len(names))
	for _, name := range names {
		specialities = append(specialities, gin.H{"name": name})
	}
	c.JSON(http.StatusOK, specialities)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var booking models.Booking
	if err := c.ShouldBindJSON(&booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity := middleware.CurrentIdentity(c)
	resource := services.Resource{Kind: services.ResourceBooking, Owner: booking.Email}
	if err := services.Authorize(identity, resource, services.ActionCreate); err != nil {
		respondError(c, err)
		return
	}

	id, err := h.Bookings.Create(c.Request.Context(), &booking)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": id})
}

// GET /bookings?email=  (only the token holder's own bookings)
func (h *Handler) GetBookings(c *gin.Context) {
	email := c.Query("email")
	identity := middleware.CurrentIdentity(c)
	resource := services.Resource{Kind: services.ResourceBooking, Owner: email}
	if err := services.Authorize(identity, resource, services.ActionRead); err != nil {
		respondError(c, err)
		return
	}

	bookings, err := h.Bookings.ListForPatient(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	booking, err := h.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	identity := middleware.CurrentIdentity(c)
	resource := services.Resource{Kind: services.ResourceBooking, Owner: booking.Email}
	if err := services.Authorize(identity, resource, services.ActionRead); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
