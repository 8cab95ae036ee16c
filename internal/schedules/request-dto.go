package schedules

type CreateScheduleRequest struct {
	Origin      string `json:"origin" binding:"required,min=2,max=100"`
	Destination string `json:"destination" binding:"required,min=2,max=100"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	BusType     string `json:"bus_type" binding:"required"`
}

type UpdateScheduleRequest struct {
	Origin      *string `json:"origin" binding:"omitempty,min=2,max=100"`
	Destination *string `json:"destination" binding:"omitempty,min=2,max=100"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	BusType     *string `json:"bus_type"`
}

type RejectScheduleRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}
