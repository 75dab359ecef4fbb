package nats

import (
	"testing"

	"ai-research-agent/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	event := events.New(events.TypeReportSaved, map[string]interface{}{"location": "reports/x.md"})

	data, err := Encode(event)
	require.NoError(t, err)

	got, err := Decode(Subject(events.TypeReportSaved), data)
	require.NoError(t, err)
	assert.Equal(t, events.TypeReportSaved, got.Type)
	assert.Equal(t, "reports/x.md", got.String("location"))
	assert.WithinDuration(t, event.OccurredAt, got.OccurredAt, 0)
}

func TestDecodeFallsBackToSubject(t *testing.T) {
	got, err := Decode("research.events.RESEARCH_PIPELINE_ABORTED", []byte(`{"data": null}`))
	require.NoError(t, err)
	assert.Equal(t, events.TypePipelineAborted, got.Type)
	assert.NotNil(t, got.Data)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "research.events.RESEARCH_SUBTOPIC_FAILED", Subject(events.TypeSubtopicFailed))
}
