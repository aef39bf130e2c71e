package logger

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigure(t *testing.T) {
	defer Configure("", "")

	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{" INFO ", logrus.InfoLevel},
		{"error", logrus.ErrorLevel},
		{"warn", logrus.WarnLevel},
		{"", logrus.WarnLevel},
		{"verbose", logrus.WarnLevel},
	}
	for _, tt := range tests {
		Configure(tt.level, "json")
		if Logger.GetLevel() != tt.want {
			t.Errorf("Configure(%q): expected %s, got %s", tt.level, tt.want, Logger.GetLevel())
		}
	}
}

func TestConfigure_Format(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer Configure("", "")

	Configure("info", "text")
	WithField("match_id", "abc").Info("hello")
	if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "match_id=abc") {
		t.Errorf("Expected text output, got %q", buf.String())
	}

	buf.Reset()
	Configure("info", "json")
	WithField("match_id", "abc").Info("hello")
	if !strings.Contains(buf.String(), `"match_id":"abc"`) {
		t.Errorf("Expected JSON output, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer Configure("", "")

	Configure("error", "json")
	WithError(errors.New("decode failed")).Error("aborted")
	if !strings.Contains(buf.String(), `"error":"decode failed"`) {
		t.Errorf("Expected the error field, got %q", buf.String())
	}
}
