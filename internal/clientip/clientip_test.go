package clientip

import (
	"net/http"
	"testing"
)

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		header     http.Header
		remoteAddr string
		want       string
	}{
		{
			name: "x-client-ip wins",
			header: http.Header{
				"X-Client-Ip":     {"203.0.113.5"},
				"X-Forwarded-For": {"198.51.100.1, 10.0.0.1"},
				"X-Real-Ip":       {"198.51.100.2"},
			},
			remoteAddr: "192.0.2.1:4433",
			want:       "203.0.113.5",
		},
		{
			name: "first forwarded-for hop",
			header: http.Header{
				"X-Forwarded-For": {"198.51.100.1, 10.0.0.1, 10.0.0.2"},
				"X-Real-Ip":       {"198.51.100.2"},
			},
			remoteAddr: "192.0.2.1:4433",
			want:       "198.51.100.1",
		},
		{
			name:       "real-ip fallback",
			header:     http.Header{"X-Real-Ip": {"198.51.100.2"}},
			remoteAddr: "192.0.2.1:4433",
			want:       "198.51.100.2",
		},
		{
			name:       "remote addr fallback strips port",
			header:     http.Header{},
			remoteAddr: "192.0.2.1:4433",
			want:       "192.0.2.1",
		},
		{
			name:       "ipv6 localhost normalized",
			header:     http.Header{},
			remoteAddr: "[::1]:55000",
			want:       "127.0.0.1",
		},
		{
			name:       "ipv6-mapped localhost normalized",
			header:     http.Header{"X-Real-Ip": {"::ffff:127.0.0.1"}},
			remoteAddr: "192.0.2.1:4433",
			want:       "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.header, tt.remoteAddr); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	allowList := "203.0.113.5, 203.0.113.9"

	if !Allowed("203.0.113.5", allowList) {
		t.Error("203.0.113.5 should be allowed")
	}
	if !Allowed("203.0.113.9", allowList) {
		t.Error("203.0.113.9 should be allowed")
	}
	if Allowed("203.0.113.6", allowList) {
		t.Error("203.0.113.6 should be rejected")
	}
	if !Allowed("198.51.100.7", "") {
		t.Error("empty allow-list should permit everything")
	}
	if !Allowed("198.51.100.7", "   ") {
		t.Error("blank allow-list should permit everything")
	}
}
