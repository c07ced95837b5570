package gfx

import "testing"

func TestSlotMask(t *testing.T) {
	var m slotMask
	if !m.empty() || m.first() != -1 {
		t.Fatalf("zero mask: empty=%v first=%d, want true -1", m.empty(), m.first())
	}
	m.set(3)
	m.set(0)
	m.set(31)
	if got := m.count(); got != 3 {
		t.Errorf("count() = %d, want 3", got)
	}
	if got := m.first(); got != 0 {
		t.Errorf("first() = %d, want 0", got)
	}
	m.clear(0)
	if got := m.first(); got != 3 {
		t.Errorf("first() after clear = %d, want 3", got)
	}
	if m.has(0) || !m.has(31) {
		t.Errorf("has(0)=%v has(31)=%v, want false true", m.has(0), m.has(31))
	}
}

func TestFillMask(t *testing.T) {
	tests := []struct {
		n    int
		want slotMask
	}{
		{0, 0},
		{1, 1},
		{4, 0xf},
		{16, 0xffff},
		{32, 0xffffffff},
	}
	for _, tt := range tests {
		if got := fillMask(tt.n); got != tt.want {
			t.Errorf("fillMask(%d) = %#x, want %#x", tt.n, got, tt.want)
		}
	}
}
