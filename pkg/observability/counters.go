package observability

import (
	"context"
	"sync"
	"time"
)

// Counters is an in-process implementation of every hook interface. It keeps
// running totals that the server exposes as JSON.
type Counters struct {
	mu      sync.Mutex
	stages  map[Stage]*StageStats
	store   StoreStats
	started time.Time
	http    map[int]int64
}

// StageStats summarises one pipeline stage.
type StageStats struct {
	Runs     int64         `json:"runs"`
	Failures int64         `json:"failures"`
	Units    int64         `json:"units"`
	Total    time.Duration `json:"total_ns"`
}

// StoreStats summarises store traffic.
type StoreStats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	Puts         int64 `json:"puts"`
	Deletes      int64 `json:"deletes"`
	BytesRead    int64 `json:"bytes_read"`
	BytesWritten int64 `json:"bytes_written"`
}

// Snapshot is a point-in-time copy of [Counters].
type Snapshot struct {
	Uptime    string               `json:"uptime"`
	Stages    map[Stage]StageStats `json:"stages"`
	Store     StoreStats           `json:"store"`
	Responses map[int]int64        `json:"responses"`
}

// NewCounters creates zeroed counters.
func NewCounters() *Counters {
	return &Counters{
		stages:  make(map[Stage]*StageStats),
		http:    make(map[int]int64),
		started: time.Now(),
	}
}

func (c *Counters) OnStageStart(context.Context, Stage, int) {}

func (c *Counters) OnStageComplete(_ context.Context, stage Stage, size int, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.stages[stage]
	if !ok {
		st = &StageStats{}
		c.stages[stage] = st
	}
	st.Runs++
	st.Total += d
	if err != nil {
		st.Failures++
		return
	}
	st.Units += int64(size)
}

func (c *Counters) OnStoreHit(_ context.Context, _ string, size int) {
	c.mu.Lock()
	c.store.Hits++
	c.store.BytesRead += int64(size)
	c.mu.Unlock()
}

func (c *Counters) OnStoreMiss(context.Context, string) {
	c.mu.Lock()
	c.store.Misses++
	c.mu.Unlock()
}

func (c *Counters) OnStorePut(_ context.Context, _ string, size int) {
	c.mu.Lock()
	c.store.Puts++
	c.store.BytesWritten += int64(size)
	c.mu.Unlock()
}

func (c *Counters) OnStoreDelete(context.Context, string) {
	c.mu.Lock()
	c.store.Deletes++
	c.mu.Unlock()
}

func (c *Counters) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	c.mu.Lock()
	c.http[status]++
	c.mu.Unlock()
}

// Snapshot copies the current totals.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Stages:    make(map[Stage]StageStats, len(c.stages)),
		Store:     c.store,
		Responses: make(map[int]int64, len(c.http)),
	}
	for k, v := range c.stages {
		s.Stages[k] = *v
	}
	for k, v := range c.http {
		s.Responses[k] = v
	}
	return s
}

var (
	_ PipelineHooks = (*Counters)(nil)
	_ StoreHooks    = (*Counters)(nil)
	_ HTTPHooks     = (*Counters)(nil)
)
