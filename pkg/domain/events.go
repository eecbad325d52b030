package domain

import "time"

// EventType identifies the kind of run event
type EventType string

const (
	EventTypeRunSubmitted   EventType = "run.submitted"
	EventTypeRunStarted     EventType = "run.started"
	EventTypeRunCompleted   EventType = "run.completed"
	EventTypeRunFailed      EventType = "run.failed"
	EventTypeRunCancelled   EventType = "run.cancelled"
	EventTypeStoryReady     EventType = "story.ready"
	EventTypeStoryStarted   EventType = "story.started"
	EventTypeStoryCompleted EventType = "story.completed"
	EventTypeStoryFailed    EventType = "story.failed"
)

// Event is a run progress notification published to the event bus
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	RunID     string                 `json:"run_id"`
	StoryID   string                 `json:"story_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
