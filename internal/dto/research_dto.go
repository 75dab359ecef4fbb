package dto

import "time"

// Decomposition is the schema the decomposer holds the LLM's JSON to.
type Decomposition struct {
	Topic     string   `json:"topic" validate:"required,notblank"`
	Subtopics []string `json:"subtopics" validate:"required,min=2,max=4,unique,dive,required,notblank"`
}

// ResearchOutcome is the result of researching one subtopic. Exactly one of
// (Key, Content) or Reason is meaningful, depending on Success.
type ResearchOutcome struct {
	Subtopic string
	Success  bool
	Key      string
	Location string
	Content  string
	Reason   string
}

// ReportHandle points at a persisted report.
type ReportHandle struct {
	Topic     string
	Key       string
	Location  string
	NoteCount int
	CreatedAt time.Time
}

// PipelineResult summarizes one request through the controller.
type PipelineResult struct {
	Request       string
	FinalState    string
	States        []string
	Topic         string
	Subtopics     []string
	Outcomes      []ResearchOutcome
	Report        *ReportHandle
	FailureReason string
	StartedAt     time.Time
	FinishedAt    time.Time
}

func (r *PipelineResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

func (r *PipelineResult) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
