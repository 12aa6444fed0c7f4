package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestCommonFields(t *testing.T) {
	fields := CommonFields("  Gemini  ", "gemini-2.5-flash")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldProvider || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if fields[1].Key != FieldModel || fields[1].String != "gemini-2.5-flash" {
		t.Fatalf("unexpected model field: %+v", fields[1])
	}

	empty := CommonFields("", "")
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithCommonFields(logger, "openai", "gpt-4o-mini")
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "openai" {
		t.Fatalf("expected provider field to be openai, got %q", ctx[FieldProvider])
	}

	if ctx[FieldModel] != "gpt-4o-mini" {
		t.Fatalf("expected model field to be gpt-4o-mini, got %q", ctx[FieldModel])
	}

	enriched = WithCommonFields(nil, "openai", "gpt-4o-mini")
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestNamed(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	Named(zap.New(core), " server ").Info("listening")
	Named(zap.New(core), "").Info("unnamed")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].ContextMap()[FieldComponent] != "server" {
		t.Fatalf("expected component field, got %v", entries[0].ContextMap())
	}

	if _, ok := entries[1].ContextMap()[FieldComponent]; ok {
		t.Fatalf("expected empty component to be omitted")
	}
}

func TestNew(t *testing.T) {
	for _, tc := range []struct{ json, debug bool }{{false, false}, {true, true}} {
		l, err := New(tc.json, tc.debug)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := l.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
			t.Fatalf("debug enabled = %v, want %v", got, tc.debug)
		}
	}
}

func TestNewWithOutput(t *testing.T) {
	l, err := New(true, false, WithOutput("stderr"), WithOutput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must be disabled")
	}
}

func TestRequestFields(t *testing.T) {
	fields := RequestFields("  3f2c9a4e-1b7d-4c55-9a0e-7d1f2b6c8e90 ")
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != FieldRequestID || fields[0].String != "3f2c9a4e-1b7d-4c55-9a0e-7d1f2b6c8e90" {
		t.Fatalf("unexpected request id field: %+v", fields[0])
	}

	if len(RequestFields("")) != 0 {
		t.Fatalf("expected empty request id to be omitted")
	}
}

func TestWithRequestIDKeepsComponent(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	server := Named(zap.New(core), "server")
	WithRequestID(server, "req-1").Info("matched job titles")
	WithRequestID(server, "").Info("listening")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first[FieldRequestID] != "req-1" || first[FieldComponent] != "server" {
		t.Fatalf("unexpected fields: %v", first)
	}

	second := entries[1].ContextMap()
	if _, ok := second[FieldRequestID]; ok {
		t.Fatalf("expected empty request id to be omitted, got %v", second)
	}
	if second[FieldComponent] != "server" {
		t.Fatalf("expected component to be kept, got %v", second)
	}

	if WithRequestID(nil, "req-2") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}
