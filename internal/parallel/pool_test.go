package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPoolWorkers(t *testing.T) {
	p := NewPool(3)
	defer p.Close()
	if p.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", p.Workers())
	}
	if !p.IsRunning() {
		t.Error("pool should be running after creation")
	}

	q := NewPool(0)
	defer q.Close()
	if q.Workers() != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers() = %d, want GOMAXPROCS", q.Workers())
	}
}

func TestPoolRowsCoversRangeOnce(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	tests := []struct {
		name   string
		y0, y1 int
	}{
		{"single row", 0, 1},
		{"one band", 3, 3 + MinBandRows},
		{"many bands", 0, 1000},
		{"offset", 17, 211},
		{"empty", 5, 5},
		{"reversed", 9, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := max(tt.y1-tt.y0, 0)
			hits := make([]atomic.Int32, n)
			p.Rows(tt.y0, tt.y1, func(lo, hi int) {
				if lo < tt.y0 || hi > tt.y1 || lo >= hi {
					t.Errorf("band [%d,%d) outside [%d,%d)", lo, hi, tt.y0, tt.y1)
					return
				}
				for y := lo; y < hi; y++ {
					hits[y-tt.y0].Add(1)
				}
			})
			for i := range hits {
				if got := hits[i].Load(); got != 1 {
					t.Fatalf("row %d visited %d times", tt.y0+i, got)
				}
			}
		})
	}
}

func TestPoolRowsBandSize(t *testing.T) {
	p := NewPool(8)
	defer p.Close()

	var mu sync.Mutex
	var bands [][2]int
	p.Rows(0, 40, func(lo, hi int) {
		mu.Lock()
		bands = append(bands, [2]int{lo, hi})
		mu.Unlock()
	})
	// 40 rows allow at most 3 bands of MinBandRows.
	if len(bands) != 3 {
		t.Errorf("got %d bands, want 3: %v", len(bands), bands)
	}
}

func TestPoolClose(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()
	if p.IsRunning() {
		t.Error("pool should not run after Close")
	}

	rows := 0
	p.Rows(0, 100, func(lo, hi int) { rows += hi - lo })
	if rows != 100 {
		t.Errorf("Rows after Close covered %d rows, want 100 on the caller", rows)
	}
}
