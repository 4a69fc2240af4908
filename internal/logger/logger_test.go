package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	info, err := New(Config{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if info.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug to be disabled by default")
	}

	debug, err := New(Config{Debug: true, JSON: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !debug.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug to be enabled")
	}
}

func TestNewRejectsBadOutput(t *testing.T) {
	if _, err := New(Config{Output: "unknown-scheme://nowhere"}); err == nil {
		t.Fatalf("expected error for unsupported output")
	}
}

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  backend  ", Value: "  lexical  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "backend" || fields[0].String != "lexical" {
		t.Fatalf("unexpected backend field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithFields(logger, zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if ctx := entries[0].ContextMap(); ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	fallback := WithFields(nil, zap.String("baz", "qux"))
	if fallback == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	fallback.Info("another log")
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "gemini-embedding-001").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %q", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "gemini-embedding-001" {
		t.Fatalf("unexpected model field: %q", ctx[FieldModel])
	}
}

func TestScreeningFields(t *testing.T) {
	fields := ScreeningFields("embedding", "")
	if len(fields) != 1 {
		t.Fatalf("expected session to be omitted, got %d fields", len(fields))
	}
	if fields[0].Key != FieldBackend || fields[0].String != "embedding" {
		t.Fatalf("unexpected backend field: %+v", fields[0])
	}
}
