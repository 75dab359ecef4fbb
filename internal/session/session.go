package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai-research-agent/internal/pkg/logger"

	"github.com/google/uuid"
)

const (
	TranscriptFileName = "transcript.log"
	dirTimeLayout      = "20060102_150405"
)

// Session is the process-wide context every pipeline component logs through.
// It is created once at startup and passed explicitly.
type Session struct {
	Id        uuid.UUID
	CreatedAt time.Time
	Dir       string
	Logger    logger.ILogger
}

// New creates logs/session_<timestamp>/ under logsDir and opens its transcript.
// With console=true the transcript is also echoed to stderr.
func New(logsDir string, console, isProd bool) (*Session, error) {
	createdAt := time.Now()
	dir := filepath.Join(logsDir, "session_"+createdAt.Format(dirTimeLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	transcript := filepath.Join(dir, TranscriptFileName)
	var l logger.ILogger
	if console {
		l = logger.NewZapLogger(transcript, isProd)
	} else {
		l = logger.NewIsolatedLogger(transcript)
	}

	s := &Session{
		Id:        uuid.New(),
		CreatedAt: createdAt,
		Dir:       dir,
		Logger:    l,
	}
	s.Logger.Info("Session", "Session started", map[string]interface{}{
		"session_id": s.Id.String(),
		"dir":        dir,
	})
	return s, nil
}

// NewDetached returns a session that logs nowhere; used by tests and one-off tooling.
func NewDetached() *Session {
	return &Session{
		Id:        uuid.New(),
		CreatedAt: time.Now(),
		Logger:    logger.NewNopLogger(),
	}
}

// TranscriptPath is empty for detached sessions.
func (s *Session) TranscriptPath() string {
	if s.Dir == "" {
		return ""
	}
	return filepath.Join(s.Dir, TranscriptFileName)
}

func (s *Session) Close() error {
	s.Logger.Info("Session", "Session closed", map[string]interface{}{
		"session_id": s.Id.String(),
		"duration":   time.Since(s.CreatedAt).String(),
	})
	return s.Logger.Sync()
}
