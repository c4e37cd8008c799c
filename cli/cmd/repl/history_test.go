package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"1 + 2", modeEval},
		{"list", modeCtrl},
		{"1 + 2", modeEval}, // repeat of the newest entry
		{"  ", modeEval},
		{"round(PI, 2)", modeEval},
		{"1 + 2", modeEval},
		{"set $x 5", modeCtrl},
	} {
		if err := h.Append(e.Line, e.Mode); err != nil {
			t.Fatalf("Append(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{"round(PI, 2)", modeEval},
		{"1 + 2", modeEval},
		{"set $x 5", modeCtrl},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	const file = "C:list\nE:round(PI, 2)\nE:1 + 2\nC:set $x 5\n"
	if string(data) != file {
		t.Errorf("history file = %q, want %q", data, file)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded Entries() = %v, want %v", got, want)
	}
}

func TestHistory_LegacyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("1 + 1\n\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []HistoryEntry{{"1 + 1", modeEval}, {"quit", modeCtrl}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Append("2 * 3", modeEval); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}

	e, err := h.Entry(0)
	if err != nil || e.Line != "2 * 3" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}
