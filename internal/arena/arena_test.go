// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package arena

import "testing"

func TestPoolGetCarvesDistinctSubSlices(t *testing.T) {
	var p Pool[int]
	a := p.Get(3)
	b := p.Get(2)
	if len(a) != 3 || len(b) != 2 {
		t.Fatalf("expected lengths 3 and 2, got %d and %d", len(a), len(b))
	}
	a[0] = 1
	b[0] = 2
	if a[0] == b[0] {
		t.Fatalf("expected independent backing for sequential Get calls")
	}
}

func TestPoolResetReusesCapacityWithoutGrowing(t *testing.T) {
	var p Pool[int]
	first := p.Get(8)
	cap1 := cap(p.buf)
	_ = first

	p.Reset()
	if len(p.buf) != 0 {
		t.Fatalf("expected Reset to zero the length, got %d", len(p.buf))
	}

	second := p.Get(8)
	if cap(p.buf) != cap1 {
		t.Fatalf("expected Reset to preserve capacity across steps, got %d want %d", cap(p.buf), cap1)
	}
	if second[0] != 0 {
		t.Fatalf("expected a freshly carved slice to be zeroed, got %v", second[0])
	}
}

func TestArenaResetRewindsEveryRegisteredPool(t *testing.T) {
	a := New()
	ints := Register(a, &Pool[int]{})
	strs := Register(a, &Pool[string]{})

	ints.Get(4)
	strs.Get(2)

	a.Reset()
	if len(ints.buf) != 0 || len(strs.buf) != 0 {
		t.Fatalf("expected Arena.Reset to rewind every registered pool")
	}
}
