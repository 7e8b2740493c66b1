package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Ratelimit headers sent by Discord.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderResetAfter = "X-RateLimit-Reset-After"
	HeaderBucket     = "X-RateLimit-Bucket"
	HeaderGlobal     = "X-RateLimit-Global"
	HeaderScope      = "X-RateLimit-Scope"
	HeaderRetryAfter = "Retry-After"
)

// Scope is the scope of a 429 response.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeGlobal Scope = "global"
	ScopeShared Scope = "shared"
)

// Info is the ratelimit state Discord reports with a response.
type Info struct {
	Limit      int
	Remaining  int
	Reset      time.Time
	ResetAfter time.Duration
	Bucket     string
	Global     bool
	Scope      Scope
}

// IsGlobal returns true if a 429 with this info applies to every route.
func (i Info) IsGlobal() bool {
	return i.Global || i.Scope == ScopeGlobal
}

// ParseHeaders reads ratelimit info from response headers.
// ok is false if the response doesn't carry bucket headers, which is the case for unlimited routes.
func ParseHeaders(h http.Header) (info Info, ok bool) {
	info.Global = strings.EqualFold(h.Get(HeaderGlobal), "true")
	info.Scope = Scope(h.Get(HeaderScope))
	info.Bucket = h.Get(HeaderBucket)

	limit, err := strconv.Atoi(h.Get(HeaderLimit))
	if err != nil {
		return info, false
	}
	remaining, err := strconv.Atoi(h.Get(HeaderRemaining))
	if err != nil {
		return info, false
	}
	info.Limit = limit
	info.Remaining = remaining

	if reset, err := parseUnix(h.Get(HeaderReset)); err == nil {
		info.Reset = reset
	}

	// Reset-After is relative, so it doesn't depend on our clock agreeing with Discord's
	if after, err := strconv.ParseFloat(h.Get(HeaderResetAfter), 64); err == nil {
		info.ResetAfter = floatDuration(after)
	} else if !info.Reset.IsZero() {
		info.ResetAfter = time.Until(info.Reset)
	} else {
		return info, false
	}

	if info.ResetAfter < 0 {
		info.ResetAfter = 0
	}
	return info, true
}

// RetryAfter returns how long to wait after a 429.
// The body's retry_after is preferred, as it has millisecond precision. The Retry-After header is used otherwise.
func RetryAfter(h http.Header, body []byte) time.Duration {
	var v struct {
		RetryAfter *float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &v); err == nil && v.RetryAfter != nil && *v.RetryAfter >= 0 {
		return floatDuration(*v.RetryAfter)
	}

	if s, err := strconv.ParseFloat(h.Get(HeaderRetryAfter), 64); err == nil && s >= 0 {
		return floatDuration(s)
	}

	if info, ok := ParseHeaders(h); ok {
		return info.ResetAfter
	}
	return 0
}

func floatDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * float64(time.Second)))
}

// parseUnix parses a Unix timestamp with fractional seconds.
// It doesn't go through float64, as that loses the milliseconds.
func parseUnix(s string) (time.Time, error) {
	secs, frac, _ := strings.Cut(s, ".")

	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	var nsec int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		if nsec, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return time.Time{}, err
		}
	}
	return time.Unix(sec, nsec), nil
}
