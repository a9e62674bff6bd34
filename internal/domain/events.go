package domain

import "time"

// EventType represents the type of stream event
type EventType string

const (
	EventStart          EventType = "start"
	EventPageProcessing EventType = "page_processing"
	EventPageComplete   EventType = "page_complete"
	EventError          EventType = "error"
	EventComplete       EventType = "complete"
)

// StreamEvent represents an event emitted during a multi-page operation
type StreamEvent struct {
	Type       EventType   `json:"type"`
	PageNumber int         `json:"page_number,omitempty"`
	Payload    interface{} `json:"payload,omitempty"` // status message or error text
	Timestamp  time.Time   `json:"timestamp"`
}

// ProcessingStats summarises a multi-page operation
type ProcessingStats struct {
	TotalTime      time.Duration
	PagesProcessed int
	Invocations    int
}
