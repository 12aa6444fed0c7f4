package ai

import (
	"context"
	"errors"

	"github.com/spigell/resume-matcher/internal/jobs"
)

// ErrMalformedResponse is returned when the model reply does not match the
// {"matchedJobs": [{"id": ..., "title": ...}]} shape.
var ErrMalformedResponse = errors.New("malformed match response")

type MatchRequest struct {
	ResumeText         string
	AvailableJobTitles []jobs.Title
}

type MatchResponse struct {
	MatchedJobs []jobs.Title `json:"matchedJobs"`
}

// Oracle selects the job titles that fit a resume.
//
// Implementations must return an empty result without contacting the model
// when the resume text is blank or no job titles are available, and must
// call the model at most once per request.
type Oracle interface {
	Match(ctx context.Context, req MatchRequest) (*MatchResponse, error)
}
