package models

import "time"

// Render job lifecycle states as recorded in Redis.
const (
	RenderStatusDone   = "done"
	RenderStatusFailed = "failed"
)

// RenderJobResult is the persisted outcome of an asynchronously queued render.
type RenderJobResult struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	FilePath   string    `json:"filePath,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finishedAt"`
}
