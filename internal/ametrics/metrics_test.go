package ametrics

import "testing"

func TestCounter(t *testing.T) {
	c := NewCounter("test.counter")
	c.Inc()
	c.Add(5)
	c.Add(-3) // ignored: counters never decrease
	if got := c.Value(); got != 6 {
		t.Errorf("Value: got %d, want 6", got)
	}
}

func TestGauge(t *testing.T) {
	g := NewGauge("test.gauge")
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if got := g.Value(); got != 9 {
		t.Errorf("Value: got %d, want 9", got)
	}
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("test.hist")
	if got := h.Mean(); got != 0 {
		t.Errorf("Mean on empty histogram: got %v, want 0", got)
	}
	h.Observe(10)
	h.Observe(20)
	h.Observe(30)
	if got := h.Count(); got != 3 {
		t.Errorf("Count: got %d, want 3", got)
	}
	if got := h.Mean(); got != 20 {
		t.Errorf("Mean: got %v, want 20", got)
	}
	if got := h.Min(); got != 10 {
		t.Errorf("Min: got %v, want 10", got)
	}
	if got := h.Max(); got != 30 {
		t.Errorf("Max: got %v, want 30", got)
	}
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry()
	c1 := r.Counter("x")
	c2 := r.Counter("x")
	if c1 != c2 {
		t.Error("Counter: expected same instance for same name")
	}
}

func TestMeter_Count(t *testing.T) {
	m := NewMeter()
	m.Mark(1)
	m.Mark(4)
	if got := m.Count(); got != 5 {
		t.Errorf("Count: got %d, want 5", got)
	}
}

func TestRegistry_Meter_GetOrCreate(t *testing.T) {
	r := NewRegistry()
	m1 := r.Meter("y")
	m2 := r.Meter("y")
	if m1 != m2 {
		t.Error("Meter: expected same instance for same name")
	}
	m1.Mark(3)
	if got := r.Meter("y").Count(); got != 3 {
		t.Errorf("Count after Mark via first handle: got %d, want 3", got)
	}
}
