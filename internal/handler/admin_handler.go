package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tripweave/service-booking/internal/application"
	"github.com/tripweave/service-booking/internal/domain"
	"github.com/tripweave/service-booking/internal/domain/booking"
	"github.com/tripweave/service-booking/internal/platform/auth"
	"github.com/tripweave/service-booking/internal/platform/middleware"
	"github.com/tripweave/service-booking/internal/platform/response"
)

// AdminBookingHandler handles admin HTTP requests for booking management and
// manual sweep triggers.
type AdminBookingHandler struct {
	service *application.BookingService
	sweeps  *application.SweepService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService, sweeps *application.SweepService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service, sweeps: sweeps}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.POST("/sweeps/auto-cancel", h.TriggerAutoCancel)
		admin.POST("/sweeps/auto-complete", h.TriggerAutoComplete)
	}
}

// ListBookings handles GET /api/v1/admin/bookings. Admins see all bookings,
// optionally narrowed by type and status.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	filter := application.ListBookingsFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}

	items, total, err := h.service.ListBookings(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

type sweepRequest struct {
	Kind       string `json:"kind" binding:"required"`
	StaleHours int    `json:"stale_hours"`
}

// TriggerAutoCancel handles POST /api/v1/admin/sweeps/auto-cancel.
func (h *AdminBookingHandler) TriggerAutoCancel(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	kind, err := booking.ParseBookingType(req.Kind)
	if err != nil {
		response.Error(c, domain.NewValidationError(err.Error()))
		return
	}

	count, err := h.sweeps.AutoCancelStaleRequests(c.Request.Context(), kind, req.StaleHours)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"canceled": count})
}

// TriggerAutoComplete handles POST /api/v1/admin/sweeps/auto-complete.
func (h *AdminBookingHandler) TriggerAutoComplete(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	kind, err := booking.ParseBookingType(req.Kind)
	if err != nil {
		response.Error(c, domain.NewValidationError(err.Error()))
		return
	}

	count, err := h.sweeps.AutoComplete(c.Request.Context(), kind)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"completed": count})
}
