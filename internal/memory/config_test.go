package memory

import (
	"runtime/debug"
	"testing"
)

func restoreMemoryLimit(t *testing.T) {
	t.Helper()
	orig := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(orig) })
}

func TestConfigureFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		limit      string
		ratio      string
		configured bool
		source     string
		goMemLimit int64
	}{
		{name: "unset", source: "none"},
		{name: "invalid limit", limit: "lots", source: "none"},
		{name: "negative limit", limit: "-5", source: "none"},
		{name: "default ratio", limit: "1000000000", configured: true, source: "MEMORY_LIMIT", goMemLimit: 850000000},
		{name: "custom ratio", limit: "1000000000", ratio: "0.5", configured: true, source: "MEMORY_LIMIT", goMemLimit: 500000000},
		{name: "ratio out of range", limit: "1000000000", ratio: "1.5", configured: true, source: "MEMORY_LIMIT", goMemLimit: 850000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreMemoryLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", tt.limit)
			t.Setenv("MEMORY_RATIO", tt.ratio)

			got := ConfigureFromEnv()
			if got.Configured != tt.configured || got.Source != tt.source || got.GoMemLimit != tt.goMemLimit {
				t.Errorf("ConfigureFromEnv() = %+v, want configured=%v source=%s limit=%d",
					got, tt.configured, tt.source, tt.goMemLimit)
			}
			if tt.configured {
				if applied := debug.SetMemoryLimit(-1); applied != tt.goMemLimit {
					t.Errorf("runtime memory limit = %d, want %d", applied, tt.goMemLimit)
				}
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{64 << 20, "64.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
