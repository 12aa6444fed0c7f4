package session

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-matcher/internal/jobs"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a user facing message produced by a transition.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

// Effect is work the caller has to perform after a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectExtract
	EffectMatch
)

func (e Effect) String() string {
	switch e {
	case EffectExtract:
		return "extract"
	case EffectMatch:
		return "match"
	default:
		return "none"
	}
}

// File describes the selected resume file.
type File struct {
	Path string
	Name string
	Type string
	Size int64
}

// State is the client session. The zero value is the idle state.
type State struct {
	File               *File
	ResumeText         string
	ResumeTextReady    bool
	SuggestionsVisible bool
	Loading            bool
	Jobs               []jobs.Title

	// fetched is set once a match result is held in memory, even an empty one.
	fetched bool
}

func (s State) FileUploaded() bool {
	return s.File != nil
}

// CanToggle reports whether the suggestions toggle accepts input.
func (s State) CanToggle() bool {
	return s.FileUploaded() && !s.Loading
}

type Event interface {
	isEvent()
}

type FileSelected struct {
	File File
}

type ExtractionSucceeded struct {
	Type string
	Text string
}

type ExtractionFailed struct {
	Err error
}

type MatchSucceeded struct {
	Jobs []jobs.Title
}

type MatchFailed struct {
	Err error
}

type ToggleRequested struct{}

func (FileSelected) isEvent()        {}
func (ExtractionSucceeded) isEvent() {}
func (ExtractionFailed) isEvent()    {}
func (MatchSucceeded) isEvent()      {}
func (MatchFailed) isEvent()         {}
func (ToggleRequested) isEvent()     {}

// Reduce applies ev to s and returns the next state together with the effect
// to run and an optional notice.
func Reduce(s State, ev Event) (State, Effect, *Notice) {
	switch ev := ev.(type) {
	case FileSelected:
		file := ev.File
		return State{File: &file, Loading: true}, EffectExtract, nil

	case ExtractionSucceeded:
		if s.File == nil {
			return s, EffectNone, nil
		}

		file := *s.File
		if ev.Type != "" {
			file.Type = ev.Type
		}
		s.File = &file
		s.Jobs = nil
		s.fetched = false

		if strings.TrimSpace(ev.Text) == "" {
			s.ResumeText = ""
			s.ResumeTextReady = false
			s.Loading = false
			return s, EffectNone, &Notice{
				Level:   LevelInfo,
				Title:   "Resume Processing",
				Message: fmt.Sprintf("No text could be read from %s. Please try a different file.", file.Name),
			}
		}

		s.ResumeText = ev.Text
		s.ResumeTextReady = true
		s.Loading = true
		s.SuggestionsVisible = true
		return s, EffectMatch, &Notice{
			Level:   LevelSuccess,
			Title:   "Resume Uploaded & Parsed",
			Message: fmt.Sprintf("%s processed. Fetching matched jobs...", file.Name),
		}

	case ExtractionFailed:
		s.Loading = false
		s.ResumeText = ""
		s.ResumeTextReady = false
		return s, EffectNone, &Notice{
			Level:   LevelError,
			Title:   "Error Reading File",
			Message: "Could not read the resume content. Please try a different file or format (e.g., .txt, .pdf, .docx).",
		}

	case MatchSucceeded:
		s.Loading = false
		s.SuggestionsVisible = true
		s.Jobs = ev.Jobs
		if s.Jobs == nil {
			s.Jobs = []jobs.Title{}
		}
		s.fetched = true
		return s, EffectNone, nil

	case MatchFailed:
		s.Loading = false
		s.SuggestionsVisible = false
		s.Jobs = nil
		s.fetched = false

		reason := "Please try again."
		if ev.Err != nil {
			reason = ev.Err.Error()
		}
		return s, EffectNone, &Notice{
			Level:   LevelError,
			Title:   "Error",
			Message: "Could not load job suggestions: " + reason,
		}

	case ToggleRequested:
		return toggle(s)
	}

	return s, EffectNone, nil
}

func toggle(s State) (State, Effect, *Notice) {
	if s.Loading {
		return s, EffectNone, nil
	}

	if s.SuggestionsVisible {
		s.SuggestionsVisible = false
		return s, EffectNone, nil
	}

	if !s.ResumeTextReady {
		if s.File != nil {
			return s, EffectNone, &Notice{
				Level:   LevelInfo,
				Title:   "Resume Processing",
				Message: "Resume content is being processed or is not available yet. Please wait.",
			}
		}
		return s, EffectNone, &Notice{
			Level:   LevelInfo,
			Title:   "Upload Resume First",
			Message: "Please upload a resume to get job suggestions.",
		}
	}

	s.SuggestionsVisible = true
	if s.fetched {
		return s, EffectNone, nil
	}

	s.Loading = true
	return s, EffectMatch, nil
}
