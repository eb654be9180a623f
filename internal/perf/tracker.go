// Package perf records wall-clock timings for registry operations so the CLI
// and the diagnostics server can report how long discovery, creation and cache
// maintenance took in the current process.
package perf

import (
	"runtime/metrics"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/modkit/modkit/internal/logging"
)

// Metric 是一次已完成操作的记录。
type Metric struct {
	Operation   string         `json:"operation"`
	Duration    time.Duration  `json:"duration"`
	MemoryDelta int64          `json:"memory_delta"`
	Context     map[string]any `json:"context,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Summary 汇总所有已记录的操作。
type Summary struct {
	TotalOperations int           `json:"total_operations"`
	TotalDuration   time.Duration `json:"total_duration"`
	AverageDuration time.Duration `json:"average_duration"`
	TotalMemory     int64         `json:"total_memory"`
	Operations      []string      `json:"operations"`
}

type timer struct {
	start time.Time
	heap  uint64
}

// Tracker 线程安全，同名操作的新记录会覆盖旧记录。
type Tracker struct {
	mu      sync.Mutex
	timers  map[string]timer
	metrics map[string]Metric
	now     func() time.Time
	logger  logrus.FieldLogger
}

// NewTracker 创建 Tracker；logger 为 nil 时丢弃日志。
func NewTracker(logger logrus.FieldLogger) *Tracker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Tracker{
		timers:  make(map[string]timer),
		metrics: make(map[string]Metric),
		now:     time.Now,
		logger:  logger,
	}
}

// Start 开始计时，重复调用会重置起点。
func (t *Tracker) Start(operation string) {
	if t == nil {
		return
	}
	heap := heapAlloc()
	t.mu.Lock()
	t.timers[operation] = timer{start: t.now(), heap: heap}
	t.mu.Unlock()
}

// Stop 结束计时并记录指标；未 Start 的操作会被忽略。
func (t *Tracker) Stop(operation string, ctx map[string]any) {
	if t == nil {
		return
	}
	heap := heapAlloc()
	t.mu.Lock()
	tm, ok := t.timers[operation]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.timers, operation)
	now := t.now()
	metric := Metric{
		Operation:   operation,
		Duration:    now.Sub(tm.start),
		MemoryDelta: int64(heap) - int64(tm.heap),
		Context:     ctx,
		Timestamp:   now,
	}
	t.metrics[operation] = metric
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"operation":   operation,
		"duration_ms": float64(metric.Duration.Microseconds()) / 1000,
		"context":     ctx,
	}).Debug("perf_metric_recorded")
}

// Track 是 Start/Stop 的简写：返回的函数负责 Stop。
func (t *Tracker) Track(operation string) func(ctx map[string]any) {
	t.Start(operation)
	return func(ctx map[string]any) {
		t.Stop(operation, ctx)
	}
}

// Metric 返回单个操作的记录。
func (t *Tracker) Metric(operation string) (Metric, bool) {
	if t == nil {
		return Metric{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.metrics[operation]
	return m, ok
}

// Metrics 返回所有记录，按操作名排序。
func (t *Tracker) Metrics() []Metric {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Metric, 0, len(t.metrics))
	for _, m := range t.metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Summary 汇总当前记录。
func (t *Tracker) Summary() Summary {
	metrics := t.Metrics()
	summary := Summary{Operations: []string{}}
	for _, m := range metrics {
		summary.TotalOperations++
		summary.TotalDuration += m.Duration
		summary.TotalMemory += m.MemoryDelta
		summary.Operations = append(summary.Operations, m.Operation)
	}
	if summary.TotalOperations > 0 {
		summary.AverageDuration = summary.TotalDuration / time.Duration(summary.TotalOperations)
	}
	return summary
}

// Reset 清空计时器与记录。
func (t *Tracker) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.timers = make(map[string]timer)
	t.metrics = make(map[string]Metric)
	t.mu.Unlock()
}

// heapObjectsMetric 对应存活堆对象占用的字节数，读取时不会暂停程序。
const heapObjectsMetric = "/memory/classes/heap/objects:bytes"

func heapAlloc() uint64 {
	sample := []metrics.Sample{{Name: heapObjectsMetric}}
	metrics.Read(sample)
	if sample[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return sample[0].Value.Uint64()
}
