// Package stats reports request metrics to InfluxDB.
//
// Every method is safe to call on a nil *Client, so metrics can be turned off by not creating one.
package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/starshine-sys/cordial/common/log"
)

// Config holds the InfluxDB connection details.
type Config struct {
	URL          string
	Token        string
	Organization string
	Bucket       string
	// Interval defaults to a minute.
	Interval time.Duration
}

// Client is an InfluxDB client
type Client struct {
	Client api.WriteAPI

	influx   influxdb2.Client
	log      *zap.SugaredLogger
	interval time.Duration

	mu           sync.Mutex
	routes       map[string]*routeStats
	interactions map[string]uint32
}

type routeStats struct {
	requests    uint32
	errors      uint32
	rateLimits  uint32
	globalLimit uint32
	retries     uint32
	latency     time.Duration
}

// New creates a new client. Call Run to start submitting metrics.
func New(c Config, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = log.Named("stats")
	}
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}

	influx := influxdb2.NewClientWithOptions(c.URL, c.Token,
		influxdb2.DefaultOptions().SetBatchSize(20))

	client := newClient(logger, c.Interval)
	client.influx = influx
	client.Client = influx.WriteAPI(c.Organization, c.Bucket)
	return client
}

func newClient(logger *zap.SugaredLogger, interval time.Duration) *Client {
	return &Client{
		log:          logger,
		interval:     interval,
		routes:       make(map[string]*routeStats),
		interactions: make(map[string]uint32),
	}
}

func (c *Client) route(name string) *routeStats {
	r, ok := c.routes[name]
	if !ok {
		r = &routeStats{}
		c.routes[name] = r
	}
	return r
}

// Request records a finished request.
func (c *Client) Request(route string, status int, took time.Duration) {
	if c == nil {
		return
	}

	c.mu.Lock()
	r := c.route(route)
	r.requests++
	r.latency += took
	if status >= 400 && status != 429 {
		r.errors++
	}
	c.mu.Unlock()
}

// RateLimited records a 429 response.
func (c *Client) RateLimited(route string, global bool) {
	if c == nil {
		return
	}

	c.mu.Lock()
	r := c.route(route)
	r.rateLimits++
	if global {
		r.globalLimit++
	}
	c.mu.Unlock()
}

// Retry records a retried request.
func (c *Client) Retry(route string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.route(route).retries++
	c.mu.Unlock()
}

// Interaction records a received interaction.
func (c *Client) Interaction(name string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.interactions[name]++
	c.mu.Unlock()
}

// Run submits metrics every interval until ctx is cancelled, then flushes any pending points.
func (c *Client) Run(ctx context.Context) {
	if c == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			go c.submit()
		case <-ctx.Done():
			c.submit()
			c.Client.Flush()
			c.influx.Close()
			return
		}
	}
}

func (c *Client) submit() {
	c.log.Debug("Submitting metrics to InfluxDB")

	for _, p := range c.points(time.Now()) {
		c.Client.WritePoint(p)
	}
}

// points returns the collected metrics as InfluxDB points, and resets the counters.
func (c *Client) points(now time.Time) []*write.Point {
	c.mu.Lock()
	routes := c.routes
	interactions := c.interactions
	c.routes = make(map[string]*routeStats, len(routes))
	c.interactions = make(map[string]uint32, len(interactions))
	c.mu.Unlock()

	var (
		points      []*write.Point
		total       uint32
		totalLimits uint32
	)

	for name, r := range routes {
		fields := map[string]interface{}{
			"requests":    r.requests,
			"errors":      r.errors,
			"ratelimits":  r.rateLimits,
			"global":      r.globalLimit,
			"retries":     r.retries,
			"avg_latency": 0.0,
		}
		if r.requests > 0 {
			fields["avg_latency"] = float64(r.latency.Milliseconds()) / float64(r.requests)
		}

		total += r.requests
		totalLimits += r.rateLimits
		points = append(points, influxdb2.NewPoint("requests", map[string]string{"route": name}, fields, now))
	}

	if len(interactions) > 0 {
		im := make(map[string]interface{}, len(interactions))
		for k, v := range interactions {
			im[k] = v
		}
		points = append(points, influxdb2.NewPoint("interactions", nil, im, now))
	}

	stats := runtime.MemStats{}
	runtime.ReadMemStats(&stats)

	data := map[string]interface{}{
		"requests":    total,
		"ratelimits":  totalLimits,
		"alloc":       stats.Alloc,
		"sys":         stats.Sys,
		"total_alloc": stats.TotalAlloc,
		"goroutines":  runtime.NumGoroutine(),
	}

	sysMem, err := mem.VirtualMemory()
	if err != nil {
		c.log.Errorf("Error getting system memory: %v", err)
	} else {
		data["total_sys"] = sysMem.Used
		data["total_sys_percent"] = sysMem.UsedPercent
	}

	// percentage since the last call
	cpuData, err := cpu.Percent(0, true)
	if err != nil {
		c.log.Errorf("Error getting cpu info: %v", err)
	} else {
		for i, d := range cpuData {
			data[fmt.Sprintf("cpu_%d", i)] = d
		}
	}

	return append(points, influxdb2.NewPoint("statistics", nil, data, now))
}
