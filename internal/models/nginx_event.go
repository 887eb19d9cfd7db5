package models

import (
	"time"
)

// NginxEvent is the audit trail for generated config applications: one row
// per attempt, recording the content hash of the generated include files and
// the collaborator's diagnostic on failure.
type NginxEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ConfigHash string    `json:"config_hash"`
	AppliedAt  time.Time `json:"applied_at"`
	Success    bool      `json:"success"`
	ErrorMsg   string    `json:"error_msg"`
}
