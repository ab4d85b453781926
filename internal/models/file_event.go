package models

import "time"

// FileEvent is an externally produced "file ready" record.
type FileEvent struct {
	ExternalID string    `json:"external_id"`
	Key        string    `json:"key"`
	Recipients []string  `json:"recipients"`
	ReadyAt    time.Time `json:"ready_at"`
}
