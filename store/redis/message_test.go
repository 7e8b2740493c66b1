package redis

import (
	"testing"
	"time"
)

func TestTTLMillis(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want string
	}{
		{24 * time.Hour, "86400000"},
		{1500 * time.Millisecond, "1500"},
		{500 * time.Millisecond, "500"},
		{1500 * time.Microsecond, "2"},
		{time.Nanosecond, "1"},
		{0, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.ttl.String(), func(t *testing.T) {
			if got := ttlMillis(tt.ttl); got != tt.want {
				t.Errorf("ttlMillis(%v) = %v, want %v", tt.ttl, got, tt.want)
			}
		})
	}
}
