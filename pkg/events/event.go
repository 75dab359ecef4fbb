package events

import "time"

// Progress event types emitted by the research pipeline.
const (
	TypeRequestReceived   = "RESEARCH_REQUEST_RECEIVED"
	TypeStateChanged      = "RESEARCH_STATE_CHANGED"
	TypeTopicDecomposed   = "RESEARCH_TOPIC_DECOMPOSED"
	TypeDecomposeFailed   = "RESEARCH_DECOMPOSE_FAILED"
	TypeSubtopicStarted   = "RESEARCH_SUBTOPIC_STARTED"
	TypeSubtopicSucceeded = "RESEARCH_SUBTOPIC_SUCCEEDED"
	TypeSubtopicFailed    = "RESEARCH_SUBTOPIC_FAILED"
	TypeReportStarted     = "RESEARCH_REPORT_STARTED"
	TypeReportSaved       = "RESEARCH_REPORT_SAVED"
	TypeReportFailed      = "RESEARCH_REPORT_FAILED"
	TypePipelineCompleted = "RESEARCH_PIPELINE_COMPLETED"
	TypePipelineAborted   = "RESEARCH_PIPELINE_ABORTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "RESEARCH_SUBTOPIC_FAILED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// String reads a payload value as a string; missing or non-string values yield "".
func (e BaseEvent) String(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}
