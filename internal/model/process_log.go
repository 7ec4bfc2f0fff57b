package model

import "time"

// ProcessLogID identifies a process log entry
type ProcessLogID string

// ProcessLogLevel is the outcome recorded by a process log entry
type ProcessLogLevel string

const (
	ProcessLogSuccess ProcessLogLevel = "SUCCESS"
	ProcessLogError   ProcessLogLevel = "ERROR"
)

// ProcessLog records the outcome of a request against the registry
type ProcessLog struct {
	ID          ProcessLogID
	Timestamp   time.Time
	Level       ProcessLogLevel
	Message     string
	Error       string // empty on success
	RequestPath string
}
