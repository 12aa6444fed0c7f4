package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/jobs"
	"go.uber.org/zap"
)

const DefaultOracleTimeout = 30 * time.Second

// Service combines a job title source and a match oracle.
type Service struct {
	source        jobs.Source
	oracle        ai.Oracle
	oracleTimeout time.Duration
	logger        *zap.Logger
}

func NewService(source jobs.Source, oracle ai.Oracle, oracleTimeout time.Duration, logger *zap.Logger) *Service {
	if oracleTimeout <= 0 {
		oracleTimeout = DefaultOracleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		source:        source,
		oracle:        oracle,
		oracleTimeout: oracleTimeout,
		logger:        logger,
	}
}

// ListJobs returns every job title from the source.
func (s *Service) ListJobs(ctx context.Context) ([]jobs.Title, error) {
	titles, err := s.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataSource, err)
	}

	if titles == nil {
		titles = []jobs.Title{}
	}

	return titles, nil
}

// FindMatches returns the job titles that fit resumeText. A nil resumeText is
// a request shape error; a blank one yields an empty result.
//
// The returned titles are always a subset of the titles fetched during this call,
// and the oracle is invoked at most once.
func (s *Service) FindMatches(ctx context.Context, resumeText *string) ([]jobs.Title, error) {
	if resumeText == nil {
		return nil, fmt.Errorf("%w: resumeText is required", ErrRequestShape)
	}

	available, err := s.ListJobs(ctx)
	if err != nil {
		return nil, err
	}

	if len(available) == 0 {
		s.logger.Info("no job titles available, skipping match")
		return []jobs.Title{}, nil
	}

	if strings.TrimSpace(*resumeText) == "" {
		s.logger.Info("resume text is blank, skipping match")
		return []jobs.Title{}, nil
	}

	oracleCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	started := time.Now()
	resp, err := s.oracle.Match(oracleCtx, ai.MatchRequest{
		ResumeText:         *resumeText,
		AvailableJobTitles: available,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMatchOracle, err)
	}

	if resp == nil || resp.MatchedJobs == nil {
		return nil, fmt.Errorf("%w: oracle returned no matchedJobs", ErrMatchOracle)
	}

	if err := verifySubset(available, resp.MatchedJobs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMatchOracle, err)
	}

	matched := jobs.Titles(resp.MatchedJobs)

	s.logger.Info("matched job titles",
		zap.Int("available", len(available)),
		zap.Int("matched", matched.Len()),
		zap.Int64s("matched_ids", matched.IDs()),
		zap.Duration("oracle_latency", time.Since(started)),
	)
	s.logger.Debug("matched job title names", zap.Strings("titles", matched.Names()))

	return resp.MatchedJobs, nil
}

func verifySubset(available jobs.Titles, matched []jobs.Title) error {
	for _, title := range matched {
		if !available.Contains(title) {
			return fmt.Errorf("job title %q (id %d) is not among the available job titles", title.Title, title.ID)
		}
	}

	return nil
}
