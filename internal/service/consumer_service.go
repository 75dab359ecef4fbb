package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"ai-research-agent/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/fatih/color"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	printer    *ProgressPrinter
}

func NewConsumerService(subscriber message.Subscriber, topicName string, out io.Writer) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		printer:    NewProgressPrinter(out),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Printf("[ERROR] Failed to unmarshal progress event: %v", err)
		msg.Ack()
		return
	}
	cs.printer.Print(event)
	msg.Ack()
}

type tone int

const (
	toneSilent tone = iota
	tonePlain
	toneHeading
	toneSuccess
	toneFailure
	toneMuted
)

// ProgressPrinter turns progress events into console lines. It keeps a running
// subtopic counter, so one printer must see events in publish order.
type ProgressPrinter struct {
	out     io.Writer
	total   int
	started int
	palette map[tone]*color.Color
}

func NewProgressPrinter(out io.Writer) *ProgressPrinter {
	return &ProgressPrinter{
		out: out,
		palette: map[tone]*color.Color{
			tonePlain:   color.New(color.Reset),
			toneHeading: color.New(color.FgCyan, color.Bold),
			toneSuccess: color.New(color.FgGreen),
			toneFailure: color.New(color.FgRed),
			toneMuted:   color.New(color.Faint),
		},
	}
}

func (p *ProgressPrinter) Print(event events.BaseEvent) {
	for _, line := range p.describe(event) {
		if line.tone == toneSilent {
			continue
		}
		p.palette[line.tone].Fprintln(p.out, line.text)
	}
}

type consoleLine struct {
	tone tone
	text string
}

func (p *ProgressPrinter) describe(e events.BaseEvent) []consoleLine {
	switch e.Type {
	case events.TypeStateChanged:
		switch e.String("state") {
		case string(StateDecomposing):
			return []consoleLine{{toneHeading, "\nDecomposing research request..."}}
		case string(StateResearching):
			return []consoleLine{{toneHeading, "\nResearching subtopics..."}}
		case string(StateSynthesizing):
			return []consoleLine{{toneHeading, "\nSynthesizing final report..."}}
		}
	case events.TypeTopicDecomposed:
		subtopics := stringList(e.Data["subtopics"])
		p.total = len(subtopics)
		p.started = 0
		lines := []consoleLine{{tonePlain, "Topic: " + e.String("topic")}}
		for i, s := range subtopics {
			lines = append(lines, consoleLine{tonePlain, fmt.Sprintf("  %d. %s", i+1, s)})
		}
		return lines
	case events.TypeDecomposeFailed:
		return []consoleLine{{toneFailure, "✗ Could not decompose request: " + e.String("reason")}}
	case events.TypeSubtopicStarted:
		p.started++
		if p.total > 0 {
			return []consoleLine{{tonePlain, fmt.Sprintf("[%d/%d] Researching: %s", p.started, p.total, e.String("subtopic"))}}
		}
		return []consoleLine{{tonePlain, "Researching: " + e.String("subtopic")}}
	case events.TypeSubtopicSucceeded:
		return []consoleLine{
			{toneSuccess, "  ✓ Saved note: " + e.String("location")},
			{toneMuted, "  " + e.String("preview")},
		}
	case events.TypeSubtopicFailed:
		return []consoleLine{{toneFailure, fmt.Sprintf("  ✗ Research failed for %q: %s", e.String("subtopic"), e.String("reason"))}}
	case events.TypeReportSaved:
		return []consoleLine{{toneSuccess, "✓ Report saved: " + e.String("location")}}
	case events.TypeReportFailed:
		return []consoleLine{{toneFailure, "✗ Report failed: " + e.String("reason")}}
	case events.TypePipelineCompleted:
		return []consoleLine{{toneHeading, fmt.Sprintf("\nResearch complete: %v of %v subtopics researched. Report: %s",
			e.Data["succeeded"], e.Data["total"], e.String("location"))}}
	case events.TypePipelineAborted:
		return []consoleLine{{toneFailure, "\nResearch aborted: " + e.String("reason")}}
	}
	return nil
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, strings.TrimSpace(fmt.Sprint(item)))
		}
		return out
	}
	return nil
}
