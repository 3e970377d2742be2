package entity

import "time"

// Status - снимок состояния сбора товаров и планировщика
type Status struct {
	Running         bool       `json:"running"`
	Progress        int        `json:"progress"` // 0-100
	TotalFound      int        `json:"total_found"`
	LastError       *string    `json:"error"`
	LastRun         *time.Time `json:"last_run"`
	NextRun         *time.Time `json:"next_run"`
	SchedulerActive bool       `json:"scheduler_active"`
	Queued          bool       `json:"queued"`
	PassID          string     `json:"pass_id,omitempty"`
}
