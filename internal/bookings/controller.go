package bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buslink/internal/schedules"
	"buslink/internal/shared/utils/response"
	"buslink/internal/users"
)

type Controller interface {
	GetSeatAvailability(c *gin.Context)
	CreateBooking(c *gin.Context)
	GetBooking(c *gin.Context)
	GetMyBookings(c *gin.Context)
	GetAllBookings(c *gin.Context)
	CancelBooking(c *gin.Context)
	ProcessPayment(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func callerIdentity(c *gin.Context) (uuid.UUID, users.Role) {
	userID := uuid.Nil
	if raw, exists := c.Get("user_id"); exists {
		if parsed, err := uuid.Parse(raw.(string)); err == nil {
			userID = parsed
		}
	}
	role := users.RolePassenger
	if raw, exists := c.Get("user_role"); exists {
		role = users.Role(raw.(string))
	}
	return userID, role
}

func (ctrl *controller) GetSeatAvailability(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	journeyDate := c.Query("date")
	if journeyDate == "" {
		response.RespondJSON(c, "error", http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)", nil, nil)
		return
	}

	availability, err := ctrl.service.GetSeatAvailability(c.Request.Context(), scheduleID, journeyDate)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, schedules.ErrScheduleNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seat availability retrieved successfully", availability, nil)
}

func (ctrl *controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, _ := callerIdentity(c)
	if userID == uuid.Nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	confirmation, err := ctrl.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		var conflict *SeatConflictError
		statusCode := http.StatusBadRequest
		switch {
		case errors.As(err, &conflict):
			statusCode = http.StatusConflict
			response.RespondJSON(c, "error", statusCode, err.Error(), gin.H{
				"conflicting_seats": conflict.Seats,
			}, nil)
			return
		case errors.Is(err, schedules.ErrScheduleNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrScheduleNotBookable):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking created successfully", confirmation, nil)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	userID, role := callerIdentity(c)
	booking, err := ctrl.service.GetBooking(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrBookingNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrNotBookingOwner):
			statusCode = http.StatusForbidden
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

func (ctrl *controller) GetMyBookings(c *gin.Context) {
	userID, _ := callerIdentity(c)
	if userID == uuid.Nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	query := listQueryFromContext(c)
	list, total, err := ctrl.service.GetUserBookings(c.Request.Context(), userID, query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": list,
		"total":    total,
		"page":     query.Page,
		"limit":    query.Limit,
	}, nil)
}

func (ctrl *controller) GetAllBookings(c *gin.Context) {
	query := listQueryFromContext(c)
	if raw := c.Query("schedule_id"); raw != "" {
		if scheduleID, err := uuid.Parse(raw); err == nil {
			query.ScheduleID = &scheduleID
		}
	}

	list, total, err := ctrl.service.GetAllBookings(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": list,
		"total":    total,
		"page":     query.Page,
		"limit":    query.Limit,
	}, nil)
}

func (ctrl *controller) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	userID, role := callerIdentity(c)
	if err := ctrl.service.CancelBooking(c.Request.Context(), bookingID, userID, role); err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrBookingNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrNotBookingOwner):
			statusCode = http.StatusForbidden
		case errors.Is(err, ErrAlreadyCancelled), errors.Is(err, ErrBookingCompleted), errors.Is(err, ErrPastJourney):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking cancelled successfully", nil, nil)
}

func (ctrl *controller) ProcessPayment(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, _ := callerIdentity(c)
	booking, err := ctrl.service.ProcessPayment(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrBookingNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrNotBookingOwner):
			statusCode = http.StatusForbidden
		case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrAlreadyCancelled):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment processed successfully", booking, nil)
}

func listQueryFromContext(c *gin.Context) BookingListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	query := BookingListQuery{
		Status:        Status(c.Query("status")),
		PaymentStatus: PaymentStatus(c.Query("payment_status")),
		Page:          page,
		Limit:         limit,
	}
	if raw := c.Query("from"); raw != "" {
		if day, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
			query.From = &day
		}
	}
	if raw := c.Query("to"); raw != "" {
		if day, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
			query.To = &day
		}
	}
	return query
}
