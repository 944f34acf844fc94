package utils

import (
	"strings"
	"testing"
)

func TestLoggerMethods(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, "debug")

	logger.Debug("dbg", "k0", "v0")
	logger.Info("hi", "k", "v")
	logger.Warn("warn", "k2", "v2")
	logger.Error("err", "k3", 3)

	output := buf.String()
	for _, needle := range []string{"DBG", "INF", "WRN", "ERR", "k=v", "k3=3"} {
		if !strings.Contains(output, needle) {
			t.Fatalf("expected log output to contain %q; got %q", needle, output)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, "error")

	logger.Info("hidden")
	logger.Error("visible")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Fatalf("info line should be filtered at error level: %q", output)
	}
	if !strings.Contains(output, "visible") {
		t.Fatalf("error line missing: %q", output)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, "nonsense")

	logger.Debug("hidden")
	logger.Info("visible")

	output := buf.String()
	if strings.Contains(output, "hidden") || !strings.Contains(output, "visible") {
		t.Fatalf("unexpected output for default level: %q", output)
	}
}
