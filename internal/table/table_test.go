package table

import (
	"fmt"
	"testing"

	"github.com/xirelogy/azura/internal/value"
)

func key(chars string, hash uint64) *value.ObjString {
	return value.NewObjString(chars, hash)
}

func mustNumber(t *testing.T, v value.Value) float64 {
	t.Helper()
	n, ok := v.AsNumber()
	if !ok {
		t.Fatalf("expected number, got %v", v)
	}
	return n
}

func checkLoad(t *testing.T, tbl *Table) {
	t.Helper()
	if float64(tbl.count+tbl.tombstones) > float64(tbl.Capacity())*maxLoad {
		t.Fatalf("load exceeded: count=%d tombstones=%d capacity=%d", tbl.count, tbl.tombstones, tbl.Capacity())
	}
}

func TestSetGetOverwrite(t *testing.T) {
	var tbl Table
	a := key("a", 11)

	if _, ok := tbl.Get(a); ok {
		t.Fatalf("empty table should miss")
	}
	if replaced := tbl.Set(a, value.Number(1)); replaced {
		t.Fatalf("fresh key should not report replaced")
	}
	if replaced := tbl.Set(a, value.Number(2)); !replaced {
		t.Fatalf("second set should report replaced")
	}
	if tbl.Count() != 1 {
		t.Fatalf("expected count 1, got %d", tbl.Count())
	}
	v, ok := tbl.Get(a)
	if !ok || mustNumber(t, v) != 2 {
		t.Fatalf("expected 2, got %v (ok=%v)", v, ok)
	}
	if tbl.Set(nil, value.Nil()) {
		t.Fatalf("nil key must be ignored")
	}
}

func TestGetComparesIdentity(t *testing.T) {
	var tbl Table
	tbl.Set(key("name", 5), value.Number(1))
	if _, ok := tbl.Get(key("name", 5)); ok {
		t.Fatalf("a different pointer with equal content must miss")
	}
}

func TestCapacityGrowth(t *testing.T) {
	var tbl Table
	for i := 0; i < 6; i++ {
		tbl.Set(key(fmt.Sprint(i), uint64(i)), value.Number(float64(i)))
	}
	if tbl.Capacity() != 8 {
		t.Fatalf("expected capacity 8 after 6 inserts, got %d", tbl.Capacity())
	}
	tbl.Set(key("6", 6), value.Number(6))
	if tbl.Capacity() != 16 {
		t.Fatalf("expected capacity 16 after 7 inserts, got %d", tbl.Capacity())
	}
}

func TestTombstoneKeepsProbeChain(t *testing.T) {
	var tbl Table
	a, b, c := key("a", 1), key("b", 1), key("c", 1)
	tbl.Set(a, value.Number(1))
	tbl.Set(b, value.Number(2))
	tbl.Set(c, value.Number(3))

	if !tbl.Delete(b) {
		t.Fatalf("delete b should succeed")
	}
	if tbl.Delete(b) {
		t.Fatalf("second delete of b should fail")
	}
	if _, ok := tbl.Get(b); ok {
		t.Fatalf("deleted key must miss")
	}
	v, ok := tbl.Get(c)
	if !ok || mustNumber(t, v) != 3 {
		t.Fatalf("key past the tombstone must still hit, got %v (ok=%v)", v, ok)
	}
	if tbl.Count() != 2 || tbl.tombstones != 1 {
		t.Fatalf("expected count 2 tombstones 1, got %d/%d", tbl.Count(), tbl.tombstones)
	}

	d := key("d", 1)
	tbl.Set(d, value.Number(4))
	if tbl.tombstones != 0 {
		t.Fatalf("insert should reuse the tombstone, tombstones=%d", tbl.tombstones)
	}
	if tbl.entries[2].Key != d {
		t.Fatalf("expected d in the reused slot 2")
	}
	if tbl.Count() != 3 {
		t.Fatalf("expected count 3, got %d", tbl.Count())
	}
}

func TestResizeDropsTombstones(t *testing.T) {
	var tbl Table
	keys := make([]*value.ObjString, 6)
	for i := range keys {
		keys[i] = key(fmt.Sprint(i), uint64(i))
		tbl.Set(keys[i], value.Number(float64(i)))
	}
	tbl.Delete(keys[0])
	tbl.Delete(keys[1])
	tbl.Set(key("x", 100), value.Nil())
	if tbl.Capacity() != 16 {
		t.Fatalf("expected resize to 16, got %d", tbl.Capacity())
	}
	if tbl.tombstones != 0 {
		t.Fatalf("resize must drop tombstones, got %d", tbl.tombstones)
	}
	if tbl.Count() != 5 {
		t.Fatalf("expected 5 live entries, got %d", tbl.Count())
	}
}

func TestDeleteInsertAcrossResize(t *testing.T) {
	hashes := map[string]func(i int) uint64{
		"spread":    func(i int) uint64 { return uint64(i) * 2654435761 },
		"clustered": func(i int) uint64 { return uint64(i % 5) },
	}
	for name, hash := range hashes {
		t.Run(name, func(t *testing.T) {
			const n = 200
			var tbl Table
			first := make([]*value.ObjString, n)
			for i := range first {
				first[i] = key(fmt.Sprintf("k%d", i), hash(i))
				tbl.Set(first[i], value.Number(float64(i)))
				checkLoad(t, &tbl)
			}

			deleted := map[int]bool{}
			for i := 0; i < n; i += 3 {
				if !tbl.Delete(first[i]) {
					t.Fatalf("delete k%d failed", i)
				}
				deleted[i] = true
			}

			second := make([]*value.ObjString, n)
			for i := range second {
				second[i] = key(fmt.Sprintf("m%d", i), hash(n+i))
				tbl.Set(second[i], value.Number(float64(n+i)))
				checkLoad(t, &tbl)
				for j := 0; j < n; j += 3 {
					if _, ok := tbl.Get(first[j]); ok {
						t.Fatalf("stale hit for deleted k%d after inserting m%d", j, i)
					}
				}
			}

			for i, k := range first {
				v, ok := tbl.Get(k)
				if deleted[i] {
					if ok {
						t.Fatalf("deleted k%d returned %v", i, v)
					}
					continue
				}
				if !ok || mustNumber(t, v) != float64(i) {
					t.Fatalf("k%d: expected %d, got %v (ok=%v)", i, i, v, ok)
				}
			}
			for i, k := range second {
				v, ok := tbl.Get(k)
				if !ok || mustNumber(t, v) != float64(n+i) {
					t.Fatalf("m%d: expected %d, got %v (ok=%v)", i, n+i, v, ok)
				}
			}
			if want := n - len(deleted) + n; tbl.Count() != want {
				t.Fatalf("expected count %d, got %d", want, tbl.Count())
			}
		})
	}
}

func TestFindString(t *testing.T) {
	var tbl Table
	hello := key("hello", 42)
	other := key("hellp", 42)
	tbl.Set(hello, value.Nil())
	tbl.Set(other, value.Nil())

	if got := tbl.FindString("hello", 42); got != hello {
		t.Fatalf("expected canonical hello pointer, got %v", got)
	}
	if got := tbl.FindString("hello", 43); got != nil {
		t.Fatalf("hash mismatch should miss, got %v", got)
	}
	if got := tbl.FindString("hell", 42); got != nil {
		t.Fatalf("length mismatch should miss, got %v", got)
	}

	tbl.Delete(hello)
	if got := tbl.FindString("hello", 42); got != nil {
		t.Fatalf("deleted string should miss, got %v", got)
	}
	if got := tbl.FindString("hellp", 42); got != other {
		t.Fatalf("probe must skip the tombstone, got %v", got)
	}
}

func TestEachSkipsTombstones(t *testing.T) {
	var tbl Table
	a, b, c := key("a", 1), key("b", 2), key("c", 3)
	tbl.Set(a, value.Number(1))
	tbl.Set(b, value.Number(2))
	tbl.Set(c, value.Number(3))
	tbl.Delete(b)

	seen := 0
	tbl.Each(func(k *value.ObjString, v value.Value) bool {
		seen++
		return true
	})
	if seen != 2 {
		t.Fatalf("Each visited %d entries, expected 2", seen)
	}

	seen = 0
	tbl.Each(func(k *value.ObjString, v value.Value) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Fatalf("Each should stop early, visited %d", seen)
	}

	tbl.Free()
	if tbl.Count() != 0 || tbl.Capacity() != 0 {
		t.Fatalf("Free should empty the table")
	}
}
