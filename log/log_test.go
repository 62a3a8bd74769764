// log/log_test.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNilLoggerDiscardsDebugAndInfo(t *testing.T) {
	var lg *Logger
	// None of these should panic.
	lg.Debug("debug")
	lg.Debugf("debug %d", 1)
	lg.Info("info")
	lg.Infof("info %d", 2)
	if lg.With("a", 1) != nil {
		t.Errorf("expected With on a nil logger to return nil")
	}
}

func TestLoggerIncludesCallstack(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	lg.Debug("hello", slog.Int("n", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unable to decode log record %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" {
		t.Errorf("got msg %v, expected \"hello\"", rec["msg"])
	}
	if rec["n"] != float64(3) {
		t.Errorf("got n %v, expected 3", rec["n"])
	}
	cs, ok := rec["callstack"].([]any)
	if !ok || len(cs) == 0 {
		t.Fatalf("expected non-empty callstack, got %v", rec["callstack"])
	}
	frame := cs[0].(map[string]any)
	if !strings.HasSuffix(frame["file"].(string), "log_test.go") {
		t.Errorf("expected first frame in log_test.go, got %v", frame["file"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: ParseLevel("warn")}))

	lg.Infof("not logged %d", 1)
	if buf.Len() != 0 {
		t.Errorf("info message logged at warn level: %s", buf.String())
	}
	lg.Warnf("logged %d", 2)
	if !strings.Contains(buf.String(), "logged 2") {
		t.Errorf("warning not logged: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for _, c := range []struct {
		s string
		l slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	} {
		if l := ParseLevel(c.s); l != c.l {
			t.Errorf("%q: got %v, expected %v", c.s, l, c.l)
		}
	}
}
