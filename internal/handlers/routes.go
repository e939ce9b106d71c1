package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal/internal/middleware"
	"github.com/harentsoaR/doctors-portal/internal/services"
	"github.com/harentsoaR/doctors-portal/internal/utils"
)

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter, tokens *utils.TokenManager) {
	auth := middleware.AuthMiddleware(tokens)
	require := func(kind services.ResourceKind, action services.Action) gin.HandlerFunc {
		return middleware.Require(h.Users, kind, action)
	}

	r.GET("/", h.Root)

	// Catalog
	r.GET("/appointmentOptions", h.GetAppointmentOptions)
	r.GET("/appointmentSpeciality", h.GetAppointmentSpeciality)

	// Bookings
	r.POST("/bookings", auth, h.CreateBooking)
	r.GET("/bookings", auth, h.GetBookings)
	r.GET("/bookings/:id", auth, h.GetBooking)

	// Users
	r.POST("/users", h.CreateUser)
	r.GET("/users", h.GetUsers)
	r.GET("/users/admin/:email", h.GetAdminStatus)
	r.PUT("/users/admin/:id", auth, require(services.ResourceUserRole, services.ActionUpdate), h.MakeAdmin)
	r.GET("/jwt", h.IssueJWT)
	r.POST("/login", h.Login)

	// Doctors
	r.POST("/doctors", auth, require(services.ResourceDoctor, services.ActionCreate), h.CreateDoctor)
	r.GET("/doctors", auth, require(services.ResourceDoctor, services.ActionRead), h.GetDoctors)
	r.DELETE("/doctors/:id", auth, require(services.ResourceDoctor, services.ActionDelete), h.DeleteDoctor)

	// Payments
	r.POST("/create-payment-intent", h.CreatePaymentIntent)
	r.POST("/payments", h.CreatePayment)
}
