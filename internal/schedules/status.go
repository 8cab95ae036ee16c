package schedules

type ScheduleStatus string

const (
	StatusPending  ScheduleStatus = "PENDING"
	StatusApproved ScheduleStatus = "APPROVED"
	StatusRejected ScheduleStatus = "REJECTED"
)
