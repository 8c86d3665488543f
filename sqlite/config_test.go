package sqlite

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.toml")
	content := `
busy-timeout-ms = 5000
foreign-keys = true
journal-mode = "wal"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BusyTimeoutMS != 5000 {
		t.Errorf("BusyTimeoutMS = %d, want 5000", cfg.BusyTimeoutMS)
	}
	if !cfg.ForeignKeys {
		t.Error("ForeignKeys = false, want true")
	}
	if cfg.JournalMode != "wal" {
		t.Errorf("JournalMode = %q, want %q", cfg.JournalMode, "wal")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadConfig on a missing file returned nil error")
	}
}

func TestLoadConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("busy-timeout-ms = [not an int"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig on malformed TOML returned nil error")
	}
}

func TestPragmaRendering(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"zero config", Config{}, nil},
		{"default config", DefaultConfig(), nil},
		{"busy timeout", Config{BusyTimeoutMS: 250}, []string{"PRAGMA busy_timeout = 250"}},
		{"foreign keys", Config{ForeignKeys: true}, []string{"PRAGMA foreign_keys = ON"}},
		{"journal mode", Config{JournalMode: "wal"}, []string{"PRAGMA journal_mode = wal"}},
		{
			"all options",
			Config{BusyTimeoutMS: 1000, ForeignKeys: true, JournalMode: "delete"},
			[]string{
				"PRAGMA busy_timeout = 1000",
				"PRAGMA foreign_keys = ON",
				"PRAGMA journal_mode = delete",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.pragmas()
			if len(got) != len(tt.want) {
				t.Fatalf("pragmas() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("pragmas()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Config PRAGMAs run on every freshly opened connection, through the
// same exec path the bridge exposes.
func TestConfigAppliedOnOpen(t *testing.T) {
	m := NewWithEngine(nil)
	m.SetConfig(Config{BusyTimeoutMS: 100, ForeignKeys: true})

	c := &recordingConn{}
	if err := m.applyConfig(c); err != nil {
		t.Fatalf("applyConfig: %v", err)
	}
	want := []string{"PRAGMA busy_timeout = 100", "PRAGMA foreign_keys = ON"}
	if len(c.execed) != len(want) {
		t.Fatalf("execed = %v, want %v", c.execed, want)
	}
	for i := range want {
		if c.execed[i] != want[i] {
			t.Errorf("execed[%d] = %q, want %q", i, c.execed[i], want[i])
		}
	}
}

type recordingConn struct {
	stubConn
	execed []string
}

func (c *recordingConn) Exec(sql string) error {
	c.execed = append(c.execed, sql)
	return nil
}
