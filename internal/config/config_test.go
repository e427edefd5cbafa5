package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/MrSnakeDoc/jot/internal/storage"
)

func TestRequireEnv(t *testing.T) {
	t.Run("variable set", func(t *testing.T) {
		t.Setenv("JOT_TEST_VAR", "test_value")
		if got := requireEnv("JOT_TEST_VAR"); got != "test_value" {
			t.Errorf("requireEnv() = %v, want test_value", got)
		}
	})

	t.Run("variable not set", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("requireEnv() should have panicked")
			}
		}()
		requireEnv("JOT_TEST_VAR_MISSING")
	})
}

func TestMustStorageKind(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expected  storage.Kind
		wantPanic bool
	}{
		{name: "missing uses default", value: "", expected: storage.KindFile},
		{name: "sqlite", value: "sqlite", expected: storage.KindSQLite},
		{name: "case and spaces", value: " Redis ", expected: storage.KindRedis},
		{name: "memory", value: "memory", expected: storage.KindMemory},
		{name: "unknown backend", value: "postgres", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOT_TEST_STORAGE", tt.value)

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("mustStorageKind() should have panicked")
					}
				}()
			}

			result := mustStorageKind("JOT_TEST_STORAGE", storage.KindFile)
			if !tt.wantPanic && result != tt.expected {
				t.Errorf("mustStorageKind() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{"valid duration", "720h", time.Hour, 720 * time.Hour},
		{"invalid duration uses default", "thirty days", 10 * time.Second, 10 * time.Second},
		{"missing variable uses default", "", 15 * time.Second, 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOT_TEST_DURATION", tt.value)
			if result := mustDuration("JOT_TEST_DURATION", tt.def); result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{"true value", "true", false, true},
		{"false value", "false", true, false},
		{"numeric value", "1", false, true},
		{"invalid value uses default", "invalid", true, true},
		{"missing variable uses default", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOT_TEST_BOOL", tt.value)
			if result := mustBool("JOT_TEST_BOOL", tt.def); result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("JOT_TEST_INT", "7")
	if got := getenvInt("JOT_TEST_INT", 3); got != 7 {
		t.Errorf("getenvInt() = %d, want 7", got)
	}
	t.Setenv("JOT_TEST_INT", "seven")
	if got := getenvInt("JOT_TEST_INT", 3); got != 3 {
		t.Errorf("getenvInt(invalid) = %d, want default 3", got)
	}
}

func TestParseAllowedIPs(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "127.0.0.1", []string{"127.0.0.1"}},
		{"list with quotes and spaces", ` "10.0.0.0/8", 192.168.1.4 ,, `, []string{"10.0.0.0/8", "192.168.1.4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseAllowedIPs(tt.value); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("parseAllowedIPs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JOT_STORAGE", "")
		t.Setenv("JOT_TRASH_RETENTION", "")
		t.Setenv("JOT_UNDO_WINDOW", "")

		cfg := Load()
		if cfg.Storage != storage.KindFile {
			t.Errorf("Storage = %v, want file", cfg.Storage)
		}
		if cfg.TrashRetention != 30*24*time.Hour {
			t.Errorf("TrashRetention = %v, want 720h", cfg.TrashRetention)
		}
		if cfg.UndoWindow != 5*time.Second || cfg.MaxToasts != 3 {
			t.Errorf("UndoWindow/MaxToasts = %v/%d", cfg.UndoWindow, cfg.MaxToasts)
		}
	})

	t.Run("redis requires an address", func(t *testing.T) {
		t.Setenv("JOT_STORAGE", "redis")
		t.Setenv("JOT_REDIS_ADDR", "")

		defer func() {
			if r := recover(); r == nil {
				t.Errorf("Load() should have panicked without JOT_REDIS_ADDR")
			}
		}()
		Load()
	})

	t.Run("negative retention", func(t *testing.T) {
		t.Setenv("JOT_STORAGE", "memory")
		t.Setenv("JOT_TRASH_RETENTION", "-1h")

		defer func() {
			if r := recover(); r == nil {
				t.Errorf("Load() should have panicked on a negative retention")
			}
		}()
		Load()
	})
}
