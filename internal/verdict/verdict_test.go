package verdict

import (
	"errors"
	"strings"
	"testing"

	"hwbot/internal/practicum"
)

func TestComposeCoversWholeTable(t *testing.T) {
	t.Parallel()
	for _, code := range Codes() {
		code := code
		t.Run(code, func(t *testing.T) {
			msg, err := Compose(practicum.Homework{Name: "hw1", Status: code})
			if err != nil {
				t.Fatalf("Compose: %v", err)
			}
			if msg.Verdict != code {
				t.Fatalf("Verdict = %q, want %q", msg.Verdict, code)
			}
			if !strings.Contains(msg.Text, "hw1") {
				t.Fatalf("text lacks homework name: %q", msg.Text)
			}
			if !strings.Contains(msg.Text, table[code]) {
				t.Fatalf("text lacks mapped verdict: %q", msg.Text)
			}
		})
	}
}

func TestComposeUnknownVerdict(t *testing.T) {
	t.Parallel()
	_, err := Compose(practicum.Homework{Name: "hw1", Status: "burned"})
	var uv *UnknownVerdictError
	if !errors.As(err, &uv) {
		t.Fatalf("err = %v, want UnknownVerdictError", err)
	}
	if uv.Code != "burned" {
		t.Fatalf("Code = %q", uv.Code)
	}
}

func TestComposeIncompleteRecord(t *testing.T) {
	t.Parallel()
	for name, hw := range map[string]practicum.Homework{
		"no name":   {Status: "approved"},
		"no status": {Name: "hw1"},
		"empty":     {},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Compose(hw); !errors.Is(err, ErrIncompleteRecord) {
				t.Fatalf("err = %v, want ErrIncompleteRecord", err)
			}
		})
	}
}
