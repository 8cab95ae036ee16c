package schedules

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buslink/internal/shared/utils/response"
	"buslink/internal/users"
)

type Controller interface {
	GetSchedules(c *gin.Context)
	GetSchedule(c *gin.Context)
	CreateSchedule(c *gin.Context)
	UpdateSchedule(c *gin.Context)
	DeleteSchedule(c *gin.Context)
	GetMySchedules(c *gin.Context)
	ApproveSchedule(c *gin.Context)
	RejectSchedule(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// callerIdentity pulls the authenticated user and role out of the gin
// context. Unauthenticated requests yield a nil UUID and passenger role.
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

func (ctrl *controller) GetSchedules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	filter := ScheduleFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		BusType:     c.Query("bus_type"),
		Status:      ScheduleStatus(c.Query("status")),
		Page:        page,
		Limit:       limit,
	}

	_, role := callerIdentity(c)
	list, total, err := ctrl.service.GetSchedules(c.Request.Context(), filter, role == users.RoleAdmin)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Schedules retrieved successfully", gin.H{
		"schedules": list,
		"total":     total,
		"page":      page,
		"limit":     limit,
	}, nil)
}

func (ctrl *controller) GetSchedule(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	schedule, err := ctrl.service.GetScheduleByID(c.Request.Context(), scheduleID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrScheduleNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Schedule retrieved successfully", schedule, nil)
}

func (ctrl *controller) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, role := callerIdentity(c)
	if userID == uuid.Nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	schedule, err := ctrl.service.CreateSchedule(c.Request.Context(), userID, role, req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	message := "Schedule created successfully"
	if schedule.Status == StatusPending {
		message = "Schedule submitted for admin approval"
	}
	response.RespondJSON(c, "success", http.StatusCreated, message, schedule, nil)
}

func (ctrl *controller) UpdateSchedule(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, role := callerIdentity(c)
	schedule, err := ctrl.service.UpdateSchedule(c.Request.Context(), scheduleID, userID, role, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrScheduleNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrNotScheduleOwner):
			statusCode = http.StatusForbidden
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Schedule updated successfully", schedule, nil)
}

func (ctrl *controller) DeleteSchedule(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	userID, role := callerIdentity(c)
	if err := ctrl.service.DeleteSchedule(c.Request.Context(), scheduleID, userID, role); err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrScheduleNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrNotScheduleOwner):
			statusCode = http.StatusForbidden
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Schedule deleted successfully", nil, nil)
}

func (ctrl *controller) GetMySchedules(c *gin.Context) {
	userID, _ := callerIdentity(c)
	if userID == uuid.Nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	list, total, err := ctrl.service.GetMySchedules(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Schedules retrieved successfully", gin.H{
		"schedules": list,
		"total":     total,
	}, nil)
}

func (ctrl *controller) ApproveSchedule(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	schedule, err := ctrl.service.ApproveSchedule(c.Request.Context(), scheduleID)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrScheduleNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Schedule approved successfully", schedule, nil)
}

func (ctrl *controller) RejectSchedule(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	var req RejectScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	schedule, err := ctrl.service.RejectSchedule(c.Request.Context(), scheduleID, req.Reason)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrScheduleNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Schedule rejected", schedule, nil)
}
