package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventFaceDetection      EventType = "face_detection"
	EventValidationProgress EventType = "validation_progress"
	EventValidationResult   EventType = "validation_result"
	EventValidationComplete EventType = "validation_complete"
)

type Event struct {
	SessionID uuid.UUID   `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
