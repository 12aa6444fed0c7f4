package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/utils"
	"go.uber.org/zap"
)

// Generator sends a prompt to a language model and returns its text reply.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// LLMOracle matches resumes to job titles by prompting a language model.
type LLMOracle struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewLLMOracle(generator Generator, maxLogLength int, logger *zap.Logger) *LLMOracle {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LLMOracle{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (o *LLMOracle) Match(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	if strings.TrimSpace(req.ResumeText) == "" {
		o.logger.Debug("skipping model call", zap.String("reason", "resume text is blank"))
		return &MatchResponse{MatchedJobs: []jobs.Title{}}, nil
	}
	if len(req.AvailableJobTitles) == 0 {
		o.logger.Debug("skipping model call", zap.String("reason", "no job titles available"))
		return &MatchResponse{MatchedJobs: []jobs.Title{}}, nil
	}

	if o.generator == nil {
		return nil, fmt.Errorf("language model generator is not configured")
	}

	prompt := buildPrompt(req.ResumeText, req.AvailableJobTitles)

	o.logger.Debug("generate content request",
		zap.Int("job_titles", len(req.AvailableJobTitles)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(utils.OneLine(prompt), o.maxLogLen)),
	)

	raw, err := o.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(utils.OneLine(raw), o.maxLogLen)),
	)

	resp, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("model matched job titles", zap.Int("matched", len(resp.MatchedJobs)))

	return resp, nil
}

func buildPrompt(resumeText string, titles []jobs.Title) string {
	var list strings.Builder
	for i, title := range titles {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "- ID: %d, Title: %s", title.ID, strconv.Quote(title.Title))
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume Text:\n{{RESUME_TEXT}}\n\nAvailable Job Titles:\n{{JOB_TITLES}}\n\nJSON Response:"
	}

	prompt := strings.ReplaceAll(template, "{{JOB_TITLES}}", list.String())
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", strings.TrimSpace(resumeText))
	return prompt
}

type rawMatch struct {
	ID    *json.Number `json:"id"`
	Title *string      `json:"title"`
}

func parseResponse(raw string) (*MatchResponse, error) {
	cleaned := extractJSON(raw)

	var envelope map[string]json.RawMessage
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.UseNumber()
	if err := decoder.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: parse model response: %v", ErrMalformedResponse, err)
	}

	field, ok := envelope["matchedJobs"]
	if !ok || string(field) == "null" {
		return nil, fmt.Errorf("%w: matchedJobs field is missing", ErrMalformedResponse)
	}

	var items []rawMatch
	itemsDecoder := json.NewDecoder(strings.NewReader(string(field)))
	itemsDecoder.UseNumber()
	if err := itemsDecoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: matchedJobs is not a list of job titles: %v", ErrMalformedResponse, err)
	}

	matched := make([]jobs.Title, 0, len(items))
	for i, item := range items {
		if item.ID == nil || item.Title == nil {
			return nil, fmt.Errorf("%w: matchedJobs[%d] must have id and title", ErrMalformedResponse, i)
		}

		id, err := item.ID.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: matchedJobs[%d].id is not an integer: %v", ErrMalformedResponse, i, err)
		}

		matched = append(matched, jobs.Title{ID: id, Title: *item.Title})
	}

	return &MatchResponse{MatchedJobs: matched}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
