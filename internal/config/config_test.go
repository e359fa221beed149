package config

import "testing"

func TestRedisEnabled(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"redis://localhost:6379/0", true},
		{"rediss://cache.internal:6380/1", true},
		{"", false},
		{"disabled", false},
		{"DISABLED", false},
		{"none", false},
		{"off", false},
		{"  disabled  ", false},
	}

	for _, tt := range tests {
		cfg := &Config{RedisURL: tt.url}
		if got := cfg.RedisEnabled(); got != tt.want {
			t.Errorf("RedisEnabled() with REDIS_URL=%q = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestParseOrigins(t *testing.T) {
	if got := parseOrigins(""); got != nil {
		t.Errorf("parseOrigins(\"\") = %v, want nil", got)
	}

	got := parseOrigins("https://a.example, https://b.example ,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("parseOrigins() = %v", got)
	}
}
