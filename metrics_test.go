package authcore

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricAuthenticateLatency, time.Millisecond)

	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics counted an increment")
	}

	snapshot := m.Snapshot()
	if len(snapshot.Counters) != 0 || len(snapshot.Histograms) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", snapshot)
	}
}

func TestMetricsCountersAccumulate(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	for i := 0; i < 7; i++ {
		m.Inc(MetricAuthenticateSuccess)
	}
	m.Inc(MetricTokenRevoked)

	if got := m.Value(MetricAuthenticateSuccess); got != 7 {
		t.Fatalf("AuthenticateSuccess = %d, want 7", got)
	}
	if got := m.Value(MetricTokenRevoked); got != 1 {
		t.Fatalf("TokenRevoked = %d, want 1", got)
	}
}

func TestLatencyHistogramBucketing(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	samples := map[time.Duration]int{
		2 * time.Millisecond:   0,
		8 * time.Millisecond:   1,
		20 * time.Millisecond:  2,
		40 * time.Millisecond:  3,
		90 * time.Millisecond:  4,
		200 * time.Millisecond: 5,
		400 * time.Millisecond: 6,
		2 * time.Second:        7,
	}

	for d := range samples {
		m.Observe(MetricAuthenticateLatency, d)
	}

	buckets := m.Snapshot().Histograms[MetricAuthenticateLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("got %d buckets, want %d", len(buckets), histBucketCount)
	}
	for d, want := range samples {
		if buckets[want] != 1 {
			t.Fatalf("sample %v: bucket %d = %d, want 1", d, want, buckets[want])
		}
	}
}

func TestHistogramOnlyTracksAuthenticateLatency(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricLoginSuccess, time.Millisecond)

	if buckets, ok := m.Snapshot().Histograms[MetricLoginSuccess]; ok {
		t.Fatalf("unexpected histogram for counter metric: %v", buckets)
	}
}

func TestMetricsConcurrentIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.Inc(MetricRateLimitHit)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricRateLimitHit); got != workers*perWorker {
		t.Fatalf("RateLimitHit = %d, want %d", got, workers*perWorker)
	}
}

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricAuthenticateSuccess)
		}
	})
}

func BenchmarkMetricsObserve(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricAuthenticateLatency, 3*time.Millisecond)
		}
	})
}
