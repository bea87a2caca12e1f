package observability

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	published, received, errors atomic.Int64
}

func (f *fakeSource) Stats() (int64, int64, int64) {
	return f.published.Load(), f.received.Load(), f.errors.Load()
}

func TestMetricsExporterAddsDeltas(t *testing.T) {
	src := &fakeSource{}
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(reg, src, 5*time.Millisecond)
	me.Start()

	src.published.Store(3)
	src.received.Store(2)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(me.published) == 3 && testutil.ToFloat64(me.received) == 2
	}, time.Second, 5*time.Millisecond)

	src.published.Store(5)
	src.errors.Store(1)
	me.Stop()

	assert.Equal(t, 5.0, testutil.ToFloat64(me.published))
	assert.Equal(t, 2.0, testutil.ToFloat64(me.received))
	assert.Equal(t, 1.0, testutil.ToFloat64(me.failed))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42с", formatDuration(42*time.Second))
	assert.Equal(t, "3м 5с", formatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2ч 0м 1с", formatDuration(2*time.Hour+time.Second))
	assert.Equal(t, "1д 1ч 0м 0с", formatDuration(25*time.Hour))
}

func TestProcessReport(t *testing.T) {
	ps := NewProcessStats()
	report := ps.Report()
	assert.Contains(t, report, "uptime")
	assert.Contains(t, report, "goroutines")
	assert.Greater(t, ps.RSSMegabytes(), 0.0)
}

func TestTelemetryResourceAttributes(t *testing.T) {
	attrs := TelemetryConfig{ServiceName: "worldgen", InstanceID: "run-1", Seed: 42}.resourceAttributes()
	got := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "worldgen", got["service.name"])
	assert.Equal(t, "run-1", got["service.instance.id"])
	assert.Equal(t, "42", got["world.seed"])

	attrs = TelemetryConfig{ServiceName: "worldgen"}.resourceAttributes()
	assert.Len(t, attrs, 2, "без идентификатора запуска атрибут не добавляется")
}
