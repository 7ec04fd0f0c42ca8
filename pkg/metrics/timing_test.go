package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestTimingMetric_Record(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 {
		t.Errorf("expected count 2, got %d", s.Count)
	}
	if s.MinMs != 2 || s.MaxMs != 4 || s.AvgMs != 3 {
		t.Errorf("unexpected stats %+v", s)
	}
	if m.Last() != 4*time.Millisecond {
		t.Errorf("expected last 4ms, got %v", m.Last())
	}

	m.Reset()
	if m.Count() != 0 || m.Stats().MaxMs != 0 {
		t.Errorf("expected reset metric, got %+v", m.Stats())
	}
}

func TestTimingMetric_Disabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Millisecond)
	if m.Count() != 0 {
		t.Errorf("expected no samples while disabled, got %d", m.Count())
	}
}

func TestTimingMetric_Concurrent(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Record(time.Microsecond)
			}
		}()
	}
	wg.Wait()
	if m.Count() != 800 {
		t.Errorf("expected 800 samples, got %d", m.Count())
	}
}

func TestAllTimingStats_OnlyRecorded(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	defer ResetAll()

	Filter.Record(time.Millisecond)
	Render.Record(3 * time.Millisecond)

	stats := AllTimingStats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}
	if stats[0].Name != "render" {
		t.Errorf("expected slowest first, got %s", stats[0].Name)
	}
}
