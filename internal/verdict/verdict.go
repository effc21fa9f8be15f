// Package verdict maps review status codes to the localized messages the bot
// forwards to the chat. The texts are a wire contract carried over from the
// original notification service; do not edit them casually.
package verdict

import (
	"errors"
	"fmt"

	"hwbot/internal/practicum"
)

var table = map[string]string{
	"approved":  "Работа проверена: ревьюеру всё понравилось. Ура!",
	"reviewing": "Работа взята на проверку ревьюером.",
	"rejected":  "Работа проверена: у ревьюера есть замечания.",
}

// ErrIncompleteRecord means the homework record lacks a name or a status.
var ErrIncompleteRecord = errors.New("homework record is missing name or status")

// UnknownVerdictError reports a status code outside the fixed table.
// It is fatal to the cycle and must surface as a notification, never as a
// silent default.
type UnknownVerdictError struct {
	Code string
}

func (e *UnknownVerdictError) Error() string {
	return fmt.Sprintf("unknown homework verdict %q", e.Code)
}

// Message is a composed status notification.
type Message struct {
	// Verdict is the raw status code; the watcher compares it against the
	// last notified one to suppress duplicates.
	Verdict string
	Text    string
}

// Codes lists every status code the table knows, for validation and tests.
func Codes() []string {
	out := make([]string, 0, len(table))
	for c := range table {
		out = append(out, c)
	}
	return out
}

// Compose builds the chat message for a homework record.
// Pure function: no side effects, deterministic.
func Compose(hw practicum.Homework) (Message, error) {
	if hw.Name == "" || hw.Status == "" {
		return Message{}, ErrIncompleteRecord
	}
	text, ok := table[hw.Status]
	if !ok {
		return Message{}, &UnknownVerdictError{Code: hw.Status}
	}
	return Message{
		Verdict: hw.Status,
		Text:    fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", hw.Name, text),
	}, nil
}
