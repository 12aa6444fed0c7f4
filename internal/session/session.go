package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/jobs"
	"go.uber.org/zap"
)

// ErrNoDocument is reported when the backend returns neither a document nor an error.
var ErrNoDocument = errors.New("no text was returned for the resume file")

// Backend performs the effects requested by Reduce.
type Backend interface {
	Extract(ctx context.Context, file File) (*extract.Document, error)
	Match(ctx context.Context, resumeText string) ([]jobs.Title, error)
}

// Session runs events through Reduce and executes the resulting effects until
// the state settles.
type Session struct {
	state   State
	backend Backend
	logger  *zap.Logger
}

func New(backend Backend, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{backend: backend, logger: logger}
}

func (s *Session) State() State {
	return s.state
}

// Dispatch applies ev and every follow-up event produced by effects. Effects
// run synchronously, so a new event is only accepted after the previous one
// settled.
func (s *Session) Dispatch(ctx context.Context, ev Event) []Notice {
	var notices []Notice

	for ev != nil {
		next, effect, notice := Reduce(s.state, ev)
		s.state = next

		if notice != nil {
			notices = append(notices, *notice)
		}

		s.logger.Debug("session transition",
			zap.String("event", fmt.Sprintf("%T", ev)),
			zap.Stringer("effect", effect),
			zap.Bool("loading", next.Loading),
			zap.Bool("suggestions_visible", next.SuggestionsVisible),
		)

		ev = s.run(ctx, effect)
	}

	return notices
}

func (s *Session) run(ctx context.Context, effect Effect) Event {
	switch effect {
	case EffectExtract:
		doc, err := s.backend.Extract(ctx, *s.state.File)
		if err != nil {
			s.logger.Warn("reading resume file", zap.String("file", s.state.File.Name), zap.Error(err))
			return ExtractionFailed{Err: err}
		}
		if doc == nil {
			s.logger.Warn("reading resume file", zap.String("file", s.state.File.Name), zap.Error(ErrNoDocument))
			return ExtractionFailed{Err: ErrNoDocument}
		}
		return ExtractionSucceeded{Type: doc.Type, Text: doc.Text}

	case EffectMatch:
		matched, err := s.backend.Match(ctx, s.state.ResumeText)
		if err != nil {
			s.logger.Warn("fetching job suggestions", zap.Error(err))
			return MatchFailed{Err: err}
		}
		return MatchSucceeded{Jobs: matched}
	}

	return nil
}
