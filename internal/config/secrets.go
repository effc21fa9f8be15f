package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

// ErrMissingSecrets means one or more required environment variables are
// absent. Startup must not proceed past this.
var ErrMissingSecrets = errors.New("missing required environment variables")

// Secrets are resolved once at startup and never hot-reloaded.
type Secrets struct {
	PracticumToken string
	TelegramToken  string
	ChatID         int64
}

// LoadSecrets reads the three required secrets from the environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	var missing []string

	s.PracticumToken = strings.TrimSpace(os.Getenv(EnvPracticumToken))
	if s.PracticumToken == "" {
		missing = append(missing, EnvPracticumToken)
	}
	s.TelegramToken = strings.TrimSpace(os.Getenv(EnvTelegramToken))
	if s.TelegramToken == "" {
		missing = append(missing, EnvTelegramToken)
	}

	rawChat := strings.TrimSpace(os.Getenv(EnvTelegramChatID))
	if rawChat == "" {
		missing = append(missing, EnvTelegramChatID)
	} else {
		id, err := strconv.ParseInt(rawChat, 10, 64)
		if err != nil {
			return Secrets{}, fmt.Errorf("%s: not a chat id: %q", EnvTelegramChatID, rawChat)
		}
		s.ChatID = id
	}

	if len(missing) > 0 {
		return Secrets{}, fmt.Errorf("%w: %s", ErrMissingSecrets, strings.Join(missing, ", "))
	}
	return s, nil
}

// Validate reports whether the secrets are complete.
func (s Secrets) Validate() error {
	if s.PracticumToken == "" || s.TelegramToken == "" || s.ChatID == 0 {
		return ErrMissingSecrets
	}
	return nil
}
