package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_STRING_VAR", "value")
	if got := getEnvOrDefault("TEST_STRING_VAR", "fallback"); got != "value" {
		t.Errorf("getEnvOrDefault() = %s, want value", got)
	}
	if got := getEnvOrDefault("TEST_MISSING_VAR", "fallback"); got != "fallback" {
		t.Errorf("getEnvOrDefault() = %s, want fallback", got)
	}
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"garbage", true}, // unparseable keeps the default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.value)
			if got := getEnvBoolOrDefault("TEST_BOOL_VAR", true); got != tt.want {
				t.Errorf("getEnvBoolOrDefault(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "42")
	if got := getEnvIntOrDefault("TEST_INT_VAR", 7); got != 42 {
		t.Errorf("getEnvIntOrDefault() = %d, want 42", got)
	}
	t.Setenv("TEST_INT_VAR", "not-a-number")
	if got := getEnvIntOrDefault("TEST_INT_VAR", 7); got != 7 {
		t.Errorf("getEnvIntOrDefault() = %d, want default 7", got)
	}
}

func TestGetEnvFloatOrDefault(t *testing.T) {
	t.Setenv("TEST_FLOAT_VAR", "0.35")
	if got := getEnvFloatOrDefault("TEST_FLOAT_VAR", 1.0); got != 0.35 {
		t.Errorf("getEnvFloatOrDefault() = %v, want 0.35", got)
	}
}

func TestGetEnvDurationOrDefault(t *testing.T) {
	t.Setenv("TEST_DURATION_VAR", "90s")
	if got := getEnvDurationOrDefault("TEST_DURATION_VAR", "1m"); got != 90*time.Second {
		t.Errorf("getEnvDurationOrDefault() = %v, want 90s", got)
	}
	os.Unsetenv("TEST_DURATION_VAR")
	if got := getEnvDurationOrDefault("TEST_DURATION_VAR", "1m"); got != time.Minute {
		t.Errorf("getEnvDurationOrDefault() = %v, want 1m", got)
	}
}

func TestGetEnvSliceOrDefault(t *testing.T) {
	t.Setenv("TEST_SLICE_VAR", "geared, box hold ,open hatch")
	got := getEnvSliceOrDefault("TEST_SLICE_VAR", nil)
	want := []string{"geared", "box hold", "open hatch"}
	if len(got) != len(want) {
		t.Fatalf("getEnvSliceOrDefault() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slice[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment line\nTEST_ENVFILE_VAR=from-file\nTEST_QUOTED_VAR=\"quoted value\"\nmalformed line\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("TEST_ENVFILE_VAR", "")
	os.Unsetenv("TEST_ENVFILE_VAR")
	t.Setenv("TEST_QUOTED_VAR", "")
	os.Unsetenv("TEST_QUOTED_VAR")
	t.Setenv("TEST_PRESET_VAR", "preset")

	loadEnvFile(envPath)

	if got := os.Getenv("TEST_ENVFILE_VAR"); got != "from-file" {
		t.Errorf("TEST_ENVFILE_VAR = %q, want from-file", got)
	}
	if got := os.Getenv("TEST_QUOTED_VAR"); got != "quoted value" {
		t.Errorf("TEST_QUOTED_VAR = %q, want quoted value", got)
	}
	// Pre-existing environment values are not overridden
	if got := os.Getenv("TEST_PRESET_VAR"); got != "preset" {
		t.Errorf("TEST_PRESET_VAR = %q, want preset", got)
	}
}
