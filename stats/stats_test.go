package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"
)

func TestNilClient(t *testing.T) {
	var c *Client

	// none of these should panic
	c.Request("get_channel", 200, time.Millisecond)
	c.RateLimited("get_channel", true)
	c.Retry("get_channel")
	c.Interaction("ping")
	c.Run(context.Background())
}

func fields(p *write.Point) map[string]string {
	m := make(map[string]string)
	for _, f := range p.FieldList() {
		m[f.Key] = fmt.Sprint(f.Value)
	}
	return m
}

func tag(p *write.Point, key string) string {
	for _, t := range p.TagList() {
		if t.Key == key {
			return t.Value
		}
	}
	return ""
}

func TestPoints(t *testing.T) {
	c := newClient(zap.NewNop().Sugar(), time.Minute)

	c.Request("get_channel", 200, 10*time.Millisecond)
	c.Request("get_channel", 404, 30*time.Millisecond)
	c.Request("get_channel", 429, 0)
	c.RateLimited("get_channel", false)
	c.Retry("get_channel")
	c.Request("create_reaction", 204, time.Millisecond)
	c.RateLimited("create_reaction", true)
	c.Interaction("config")

	points := c.points(time.Now())

	var requests, statistics int
	for _, p := range points {
		f := fields(p)

		switch p.Name() {
		case "requests":
			requests++
			switch tag(p, "route") {
			case "get_channel":
				want := map[string]string{"requests": "3", "errors": "1", "ratelimits": "1", "retries": "1", "global": "0"}
				for k, v := range want {
					if f[k] != v {
						t.Errorf("get_channel %v = %v, want %v", k, f[k], v)
					}
				}
			case "create_reaction":
				if f["global"] != "1" {
					t.Errorf("create_reaction global = %v, want 1", f["global"])
				}
			default:
				t.Errorf("unexpected route tag %q", tag(p, "route"))
			}
		case "interactions":
			if f["config"] != "1" {
				t.Errorf("interactions config = %v, want 1", f["config"])
			}
		case "statistics":
			statistics++
			if f["requests"] != "4" || f["ratelimits"] != "2" {
				t.Errorf("unexpected totals %v", f)
			}
		}
	}

	if requests != 2 || statistics != 1 {
		t.Errorf("got %d request points and %d statistics points", requests, statistics)
	}

	// counters are reset after each submission
	for _, p := range c.points(time.Now()) {
		if p.Name() == "requests" || p.Name() == "interactions" {
			t.Errorf("expected no %v points after reset", p.Name())
		}
	}
}
