package config

// Config holds the non-secret settings read from the config file.
// Secrets (API tokens, chat id) come from the environment only; see secrets.go.
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Watcher   WatcherConfig   `json:"watcher"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   *StorageConfig  `json:"storage,omitempty"`
}

type PracticumConfig struct {
	// Endpoint overrides the homework-status API URL (mainly for tests).
	Endpoint string `json:"endpoint,omitempty"`
	// Timeout is a Go duration string (e.g. "10s") bounding one API request.
	Timeout string `json:"timeout,omitempty"`
}

type TelegramConfig struct {
	// ThreadID targets a forum topic inside the chat (0 if none).
	ThreadID int `json:"thread_id,omitempty"`
}

// WatcherConfig controls the poll loop.
type WatcherConfig struct {
	// Schedule is either a Go duration ("10m", "interval:45s") or a cron
	// expression ("*/10 * * * *", "cron:0 9 * * *"). The wait runs after each
	// cycle completes, success or failure.
	Schedule string `json:"schedule,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled   bool   `json:"enabled"`
	Path      string `json:"path"`
	MaxSizeMB int    `json:"max_size_mb,omitempty"`
	Backups   int    `json:"backups,omitempty"`
}

// StorageConfig controls the optional notification journal.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./hwbot.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

const (
	DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultTimeout  = "10s"
	DefaultSchedule = "10m"
)

// Default returns the config used when no file is given.
func Default() *Config {
	return &Config{
		Practicum: PracticumConfig{Endpoint: DefaultEndpoint, Timeout: DefaultTimeout},
		Watcher:   WatcherConfig{Schedule: DefaultSchedule},
		Logging:   LoggingConfig{Level: "info", Console: true},
	}
}

// Normalize fills zero-valued fields with defaults.
func (c *Config) Normalize() {
	if c.Practicum.Endpoint == "" {
		c.Practicum.Endpoint = DefaultEndpoint
	}
	if c.Practicum.Timeout == "" {
		c.Practicum.Timeout = DefaultTimeout
	}
	if c.Watcher.Schedule == "" {
		c.Watcher.Schedule = DefaultSchedule
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
