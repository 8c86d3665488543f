package sqlite

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds connection options applied as PRAGMAs immediately after
// open. The zero Config applies nothing, so a configless module behaves
// exactly like the bare bridge.
type Config struct {
	// BusyTimeoutMS sets PRAGMA busy_timeout, in milliseconds.
	BusyTimeoutMS int `toml:"busy-timeout-ms"`

	// ForeignKeys enables PRAGMA foreign_keys.
	ForeignKeys bool `toml:"foreign-keys"`

	// JournalMode sets PRAGMA journal_mode (e.g. "wal", "delete").
	JournalMode string `toml:"journal-mode"`
}

// DefaultConfig returns the empty configuration.
func DefaultConfig() Config {
	return Config{}
}

// LoadConfig parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, nil
}

// pragmas renders the configured options as PRAGMA statements.
func (c Config) pragmas() []string {
	var out []string
	if c.BusyTimeoutMS > 0 {
		out = append(out, fmt.Sprintf("PRAGMA busy_timeout = %d", c.BusyTimeoutMS))
	}
	if c.ForeignKeys {
		out = append(out, "PRAGMA foreign_keys = ON")
	}
	if c.JournalMode != "" {
		out = append(out, fmt.Sprintf("PRAGMA journal_mode = %s", c.JournalMode))
	}
	return out
}

// applyConfig runs the configured PRAGMAs on a freshly opened
// connection. A PRAGMA failure is treated as an open failure: the
// caller closes the connection and reports OPEN_ERROR.
func (m *Module) applyConfig(conn Conn) error {
	for _, p := range m.cfg.pragmas() {
		if err := conn.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
