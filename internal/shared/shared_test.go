package shared

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Error("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected unique IDs")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]any{"ok": true}

	t.Run("Compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(out) != `{"ok":true}` {
			t.Errorf("unexpected output: %s", string(out))
		}
	})

	t.Run("Pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !bytes.Contains(out, []byte("\n")) {
			t.Error("expected indented output")
		}
		var parsed map[string]any
		if err := json.Unmarshal(out, &parsed); err != nil {
			t.Errorf("pretty output should remain valid JSON: %v", err)
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nowplay.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}

	logger.Info("hello")

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file should exist: %v", err)
	}
}
