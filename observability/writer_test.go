package observability_test

import (
	"bytes"
	"strings"
	"testing"

	"docremedy/observability"
)

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewWriterLogger(&buf, false)

	log.Debug("hidden")
	log.Info("tagging started", observability.Int("elements", 7))
	log.Warn("skipping malformed content element", observability.String("kind", "image"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatal("debug entry emitted without debug enabled")
	}
	if !strings.Contains(out, "INFO tagging started elements=7") {
		t.Fatalf("info line missing: %q", out)
	}
	if !strings.Contains(out, "WARN skipping malformed content element kind=image") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWriterLoggerDebugAndWith(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewWriterLogger(&buf, true).With(observability.String("source", "report.html"))

	log.Debug("extraction complete", observability.Int("pages", 3))

	out := buf.String()
	if !strings.Contains(out, "DEBUG extraction complete") {
		t.Fatalf("debug line missing: %q", out)
	}
	if !strings.Contains(out, "source=report.html") || !strings.Contains(out, "pages=3") {
		t.Fatalf("fields missing: %q", out)
	}
}
