package utils

import (
	"net/http/httptest"
	"testing"
)

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.4 ", "not-an-ip", "::1"})

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"192.168.1.4", true},
		{"192.168.1.5", false},
		{"::1", true},
		{"::ffff:10.0.0.1", true},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() || !NewIPMatcher([]string{"nope"}).IsEmpty() {
		t.Error("matcher without valid entries should be empty")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		xff        string
		realIP     string
		trustProxy bool
		want       string
	}{
		{"remote addr", "1.2.3.4:5555", "", "", false, "1.2.3.4"},
		{"proxy headers ignored when untrusted", "1.2.3.4:5555", "9.9.9.9", "", false, "1.2.3.4"},
		{"first forwarded for", "127.0.0.1:1", "9.9.9.9, 8.8.8.8", "", true, "9.9.9.9"},
		{"real ip fallback", "127.0.0.1:1", "", "7.7.7.7", true, "7.7.7.7"},
		{"ipv6 remote", "[::1]:8080", "", "", false, "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
