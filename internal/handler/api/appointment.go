package api

import (
	"errors"
	"net/http"

	"shopbook/internal/domain/appointment"
	reqdto "shopbook/internal/handler/dto/request"
	resdto "shopbook/internal/handler/dto/response"
	"shopbook/internal/handler/httperr"
	"shopbook/internal/handler/middleware"
	"shopbook/internal/usecase/commands"
	"shopbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	booking      commands.BookingCommands
	transitions  commands.TransitionCommands
	availability queries.AvailabilityQueries
	appointments queries.AppointmentQueries
}

func NewAppointmentHandler(
	booking commands.BookingCommands,
	transitions commands.TransitionCommands,
	availability queries.AvailabilityQueries,
	appointments queries.AppointmentQueries,
) *AppointmentHandler {
	return &AppointmentHandler{
		booking:      booking,
		transitions:  transitions,
		availability: availability,
		appointments: appointments,
	}
}

// @Summary Available time slots
// @Description List bookable slots for a shop service on a given day
// @Tags appointments
// @Produce json
// @Param shopId query string true "Shop ID"
// @Param serviceId query string true "Service ID"
// @Param date query string true "Date (2006-01-02)"
// @Success 200 {object} response.TimeSlotsResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /appointments/time-slots [get]
func (h *AppointmentHandler) GetTimeSlots(c *gin.Context) {
	var query reqdto.TimeSlotsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	slots, err := h.availability.AvailableSlots(c.Request.Context(), query.ShopID, query.ServiceID, query.Day)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrShopNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Shop not found", nil)
		case errors.Is(err, queries.ErrServiceNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Service not found", nil)
		case errors.Is(err, queries.ErrInvalidDate):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromSlotViews(slots))
}

// @Summary Book appointment
// @Description Create an appointment; requires an Idempotency-Key header
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key (UUID)"
// @Param request body request.CreateAppointmentRequest true "Booking request"
// @Success 201 {object} response.AppointmentResponse
// @Success 200 {object} response.AppointmentResponse "Idempotent replay"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	idempotencyKey, err := idempotencyKeyFromHeader(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	var req reqdto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.booking.CreateAppointment(c.Request.Context(), req.ToInput(), customerID, idempotencyKey)
	if err != nil {
		h.mapBookingError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromAppointmentView(result.Appointment))
}

func (h *AppointmentHandler) mapBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrShopNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Shop not found", nil)
	case errors.Is(err, commands.ErrServiceNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Service not found", nil)
	case errors.Is(err, commands.ErrSlotTaken):
		httperr.AbortWithError(c, http.StatusConflict, err, "Slot already taken", nil)
	case errors.Is(err, commands.ErrSlotNoLongerValid):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Slot is no longer valid", nil)
	case errors.Is(err, commands.ErrInvalidTimeSlot):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid time slot", nil)
	case errors.Is(err, commands.ErrInvalidPaymentMethod):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment method", nil)
	case errors.Is(err, commands.ErrPromotionNotFound):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Coupon not found", nil)
	case errors.Is(err, commands.ErrPromotionRejected):
		httperr.AbortWithError(c, http.StatusBadRequest, err, promotionRejectionMessage(err), nil)
	case errors.Is(err, commands.ErrDuplicateRequest):
		httperr.AbortWithError(c, http.StatusConflict, err, "Duplicate request with different parameters", nil)
	case errors.Is(err, commands.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request is already being processed", nil)
	case errors.Is(err, commands.ErrPaymentFailed):
		httperr.AbortWithError(c, http.StatusPaymentRequired, err, "Payment failed; the slot was released", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Booking request failed validation", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

// @Summary Change appointment status
// @Description Move an appointment along its status graph
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param request body request.ChangeStatusRequest true "Target status"
// @Success 200 {object} response.AppointmentResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /appointments/{id}/status [put]
func (h *AppointmentHandler) ChangeStatus(c *gin.Context) {
	requesterID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid appointment ID format", nil)
		return
	}

	var req reqdto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.transitions.ChangeStatus(c.Request.Context(), id, req.Status, requesterID, role.String())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrAppointmentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Appointment not found", nil)
		case errors.Is(err, commands.ErrInvalidStatus):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid status value", nil)
		case errors.Is(err, commands.ErrUnauthorizedActor), errors.Is(err, appointment.ErrActorNotAllowed):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Not allowed to perform this transition", nil)
		case errors.Is(err, appointment.ErrInvalidTransition):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid status transition", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAppointmentView(view))
}

// @Summary Get appointment
// @Description Get an appointment by ID; customers see their own, owners their shop's
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.AppointmentResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	requesterID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid appointment ID format", nil)
		return
	}

	view, err := h.appointments.GetByID(c.Request.Context(), id, requesterID, role.String())
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrAppointmentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Appointment not found", nil)
		case errors.Is(err, queries.ErrAccessDenied):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAppointmentView(view))
}

// @Summary List my appointments
// @Description List the caller's appointments, newest first
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} response.AppointmentListResponse
// @Failure 401 {object} httperr.Response
// @Router /appointments [get]
func (h *AppointmentHandler) ListMyAppointments(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), "Internal server error", nil)
		return
	}

	items, err := h.appointments.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	resp := make([]*resdto.AppointmentListResponse, len(items))
	for i, item := range items {
		resp[i] = resdto.FromAppointmentListItem(item)
	}
	c.JSON(http.StatusOK, resp)
}

var errIdempotencyKeyRequired = errors.New("Idempotency-Key header is required")

func idempotencyKeyFromHeader(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return uuid.Nil, errIdempotencyKeyRequired
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid idempotency key format")
	}
	return key, nil
}
