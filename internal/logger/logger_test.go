package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter_ServiceAndStack(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("stockctl", &buf)
	l.Error().Stack().Err(errors.New("session store locked")).Msg("restore failed")

	line := strings.TrimSpace(buf.String())
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json %q: %v", line, err)
	}
	if m["service"] != "stockctl" {
		t.Fatalf("missing service field: %v", m)
	}
	if m["error"] != "session store locked" {
		t.Fatalf("unexpected error field: %v", m["error"])
	}
	if _, ok := m["stack"]; !ok {
		t.Fatalf("expected stack for plain error: %v", m)
	}
	if _, ok := m["time"]; !ok {
		t.Fatalf("expected timestamp: %v", m)
	}
}

func TestLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := Level(in); got != want {
			t.Errorf("Level(%q) = %v, want %v", in, got, want)
		}
	}
}
