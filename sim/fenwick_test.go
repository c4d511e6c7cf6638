package sim

import "testing"

func TestFenwick_FindWalksCumulativeWeights(t *testing.T) {
	f := newFenwick(5)
	for i, w := range []int64{0, 3, 0, 5, 2} {
		f.add(i, w)
	}
	if f.total != 10 {
		t.Fatalf("total = %d, want 10", f.total)
	}
	if got := f.prefix(4); got != 8 {
		t.Errorf("prefix(4) = %d, want 8", got)
	}

	tests := []struct {
		u          int64
		wantIdx    int
		wantOffset int64
	}{
		{0, 1, 0},
		{2, 1, 2},
		{3, 3, 0},
		{7, 3, 4},
		{8, 4, 0},
		{9, 4, 1},
	}
	for _, tt := range tests {
		idx, off := f.find(tt.u)
		if idx != tt.wantIdx || off != tt.wantOffset {
			t.Errorf("find(%d) = (%d, %d), want (%d, %d)", tt.u, idx, off, tt.wantIdx, tt.wantOffset)
		}
	}
}

func TestFenwick_NegativeDeltaRemovesWeight(t *testing.T) {
	f := newFenwick(3)
	f.add(0, 4)
	f.add(2, 6)
	f.add(0, -4)

	if f.total != 6 {
		t.Errorf("total = %d, want 6", f.total)
	}
	if idx, off := f.find(0); idx != 2 || off != 0 {
		t.Errorf("find(0) = (%d, %d), want (2, 0)", idx, off)
	}
}

func TestFenwick_NonPowerOfTwoSizes(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 120, 257} {
		f := newFenwick(n)
		for i := 0; i < n; i++ {
			f.add(i, 1)
		}
		for u := int64(0); u < int64(n); u++ {
			idx, off := f.find(u)
			if idx != int(u) || off != 0 {
				t.Fatalf("n=%d: find(%d) = (%d, %d), want (%d, 0)", n, u, idx, off, u)
			}
		}
	}
}
