package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/dto"
	"github.com/bookahq/booka_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// bookingHandler handles HTTP requests related to reservations.
type bookingHandler struct {
	bookingService portssvc.BookingSvcFacade
}

// newBookingHandler creates a new bookingHandler.
func newBookingHandler(bs portssvc.BookingSvcFacade) *bookingHandler {
	return &bookingHandler{
		bookingService: bs,
	}
}

// registerBookingRoutes registers routes related to reservations. Every route
// carries a declarative policy; the Authorize middleware is the only place
// roles and tenant scope are checked.
func registerBookingRoutes(rg *gin.RouterGroup, bookingService portssvc.BookingSvcFacade) {
	h := newBookingHandler(bookingService)

	readPolicy := middleware.OperationPolicy{
		Name:  "bookings.read",
		Roles: []domain.TenantRole{domain.RoleAdmin, domain.RoleStaff, domain.RoleViewer},
	}
	writePolicy := middleware.OperationPolicy{
		Name:  "bookings.write",
		Roles: []domain.TenantRole{domain.RoleAdmin, domain.RoleStaff},
	}

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", middleware.Authorize(writePolicy), h.createBooking)
		bookings.GET("", middleware.Authorize(readPolicy), h.listBookings)
		bookings.GET("/:id", middleware.Authorize(readPolicy), h.getBooking)
		bookings.PATCH("/:id", middleware.Authorize(writePolicy), h.updateBooking)
		bookings.POST("/:id/cancel", middleware.Authorize(writePolicy), h.cancelBooking)
	}
}

// createBooking godoc
// @Summary Create a new booking
// @Description Creates a confirmed reservation after checking staff availability
// @Tags bookings
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   booking body dto.CreateBookingRequest true "Booking details"
// @Success 201 {object} dto.BookingResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Slot no longer available"
// @Failure 500 {object} map[string]string "Failed to create booking"
// @Security BearerAuth
// @Router /tenants/{tenantID}/bookings [post]
func (h *bookingHandler) createBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBooking", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), tenantID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating booking", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Booking conflict", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create booking in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		}
		return
	}

	logger.Info("Booking created successfully", slog.String("reservation_id", booking.ReservationID))
	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

// getBooking godoc
// @Summary Get a booking by ID
// @Description Retrieves a reservation scoped to the tenant
// @Tags bookings
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   id path string true "Reservation ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 500 {object} map[string]string "Failed to retrieve booking"
// @Security BearerAuth
// @Router /tenants/{tenantID}/bookings/{id} [get]
func (h *bookingHandler) getBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")
	reservationID := c.Param("id")

	booking, err := h.bookingService.GetBooking(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Booking not found", slog.String("reservation_id", reservationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		} else {
			logger.Error("Failed to get booking from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve booking"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// listBookings godoc
// @Summary List bookings
// @Description Retrieves a page of the tenant's reservations, newest first
// @Tags bookings
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   limit query int false "Page size (default 50, max 100)"
// @Param   offset query int false "Offset"
// @Success 200 {array} dto.BookingResponse
// @Failure 500 {object} map[string]string "Failed to list bookings"
// @Security BearerAuth
// @Router /tenants/{tenantID}/bookings [get]
func (h *bookingHandler) listBookings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.bookingService.ListBookings(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		logger.Error("Failed to list bookings from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListBookingResponse(bookings))
}

// updateBooking godoc
// @Summary Reschedule or reassign a booking
// @Description Patches a reservation's staff or interval, re-running the availability check
// @Tags bookings
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   id path string true "Reservation ID"
// @Param   booking body dto.UpdateBookingRequest true "Fields to change"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 409 {object} map[string]string "Slot no longer available"
// @Failure 422 {object} map[string]string "Booking is cancelled"
// @Failure 500 {object} map[string]string "Failed to update booking"
// @Security BearerAuth
// @Router /tenants/{tenantID}/bookings/{id} [patch]
func (h *bookingHandler) updateBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")
	reservationID := c.Param("id")

	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateBooking", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Updater user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booking, err := h.bookingService.UpdateBooking(c.Request.Context(), tenantID, reservationID, req, updaterUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Booking not found", slog.String("reservation_id", reservationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error updating booking", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Booking conflict on update", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidState):
			logger.Warn("Invalid booking state for update", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update booking in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		}
		return
	}

	logger.Info("Booking updated successfully", slog.String("reservation_id", booking.ReservationID))
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// cancelBooking godoc
// @Summary Cancel a booking
// @Description Marks a reservation cancelled, freeing its slot. Cancelling twice is a no-op.
// @Tags bookings
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   id path string true "Reservation ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 500 {object} map[string]string "Failed to cancel booking"
// @Security BearerAuth
// @Router /tenants/{tenantID}/bookings/{id}/cancel [post]
func (h *bookingHandler) cancelBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")
	reservationID := c.Param("id")

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Updater user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), tenantID, reservationID, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Booking not found", slog.String("reservation_id", reservationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		} else {
			logger.Error("Failed to cancel booking in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	logger.Info("Booking cancelled", slog.String("reservation_id", reservationID))
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
