package buffer

import (
	"sync"
	"testing"
)

func TestRing_LatestInOrder(t *testing.T) {
	r := NewRing(4)

	dst := make([]float64, 3)
	if r.Latest(dst) {
		t.Fatal("Latest succeeded on empty ring")
	}

	r.PushBlock([]float64{1, 2, 3})

	if !r.Latest(dst) {
		t.Fatal("Latest failed with 3 samples buffered")
	}

	want := []float64{1, 2, 3}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestRing_DropsOldestWhenFull(t *testing.T) {
	r := NewRing(4)

	dropped := r.PushBlock([]float64{1, 2, 3, 4, 5, 6})
	if dropped != 2 || r.Dropped() != 2 {
		t.Fatalf("dropped = %d (counter %d), want 2", dropped, r.Dropped())
	}

	if r.Len() != 4 || r.Total() != 6 {
		t.Fatalf("len=%d total=%d, want 4 and 6", r.Len(), r.Total())
	}

	dst := make([]float64, 4)
	if !r.Latest(dst) {
		t.Fatal("Latest failed")
	}

	want := []float64{3, 4, 5, 6}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}

	if !r.Push(7) {
		t.Fatal("Push on full ring did not report a drop")
	}
}

func TestRing_OverwritingConsumedIsNotADrop(t *testing.T) {
	r := NewRing(4)
	r.PushBlock([]float64{1, 2, 3, 4})

	if got := r.Consume(3); got != 3 {
		t.Fatalf("Consume(3) = %d, want 3", got)
	}

	if dropped := r.PushBlock([]float64{5, 6, 7}); dropped != 0 {
		t.Fatalf("dropped = %d after overwriting consumed samples, want 0", dropped)
	}

	if r.Unread() != 4 {
		t.Fatalf("unread = %d, want 4", r.Unread())
	}

	// 4 is now the oldest and still unconsumed.
	if !r.Push(8) || r.Dropped() != 1 {
		t.Fatalf("dropped counter = %d, want 1", r.Dropped())
	}

	dst := make([]float64, 4)
	r.Latest(dst)

	want := []float64{5, 6, 7, 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}

	if got := r.Consume(10); got != 4 || r.Unread() != 0 {
		t.Fatalf("Consume(10) = %d, unread %d; want 4 and 0", got, r.Unread())
	}

	if got := r.Consume(-1); got != 0 {
		t.Fatalf("Consume(-1) = %d, want 0", got)
	}
}

func TestRing_Reset(t *testing.T) {
	r := NewRing(2)
	r.PushBlock([]float64{1, 2})
	r.Reset()

	if r.Len() != 0 || r.Unread() != 0 || r.Total() != 2 {
		t.Fatalf("after reset len=%d total=%d", r.Len(), r.Total())
	}

	if NewRing(0).Cap() != 1 {
		t.Fatal("zero capacity not clamped to 1")
	}
}

func TestRing_ConcurrentProducerConsumer(t *testing.T) {
	r := NewRing(64)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := range 10000 {
			r.Push(float64(i))
		}
	}()

	go func() {
		defer wg.Done()
		dst := make([]float64, 16)
		for range 1000 {
			if r.Latest(dst) {
				for i := 1; i < len(dst); i++ {
					if dst[i] != dst[i-1]+1 {
						t.Errorf("non-contiguous window: %v", dst)
						return
					}
				}
			}
		}
	}()

	wg.Wait()

	if r.Total() != 10000 {
		t.Fatalf("total = %d, want 10000", r.Total())
	}
}
