package loader

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// countingFetch records every batch it services.
type countingFetch struct {
	batches [][]string
	records map[string]string
	err     error
}

func (f *countingFetch) fn(_ context.Context, keys []string) (map[string]string, error) {
	f.batches = append(f.batches, append([]string(nil), keys...))
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := f.records[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func TestLoadCoalescesIntoOneBatch(t *testing.T) {
	ctx := context.Background()
	f := &countingFetch{records: map[string]string{"a": "A", "b": "B", "c": "C"}}
	l := New(f.fn)

	ta := l.Load(ctx, "a")
	tb := l.Load(ctx, "b")
	tc := l.Load(ctx, "c")

	if got := ta().Value; got != "A" {
		t.Fatalf("a = %q", got)
	}
	if got := tb().Value; got != "B" {
		t.Fatalf("b = %q", got)
	}
	if got := tc().Value; got != "C" {
		t.Fatalf("c = %q", got)
	}
	if len(f.batches) != 1 {
		t.Fatalf("expected 1 batch, got %d: %v", len(f.batches), f.batches)
	}
	sort.Strings(f.batches[0])
	if diff := cmp.Diff([]string{"a", "b", "c"}, f.batches[0]); diff != "" {
		t.Fatalf("batch keys mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadManyPreservesKeyOrder(t *testing.T) {
	ctx := context.Background()
	f := &countingFetch{records: map[string]string{"a": "A", "b": "B", "c": "C"}}
	l := New(f.fn)

	// The store is free to return records in any order; results must still
	// line up with the requested keys.
	results := l.LoadMany(ctx, []string{"c", "a", "b"})()

	var got []string
	for _, r := range results {
		got = append(got, r.Value)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadManyMarksMissingKeys(t *testing.T) {
	ctx := context.Background()
	f := &countingFetch{records: map[string]string{"a": "A"}}
	l := New(f.fn)

	results := l.LoadMany(ctx, []string{"a", "ghost"})()
	if !results[0].OK || results[0].Value != "A" {
		t.Fatalf("a = %+v", results[0])
	}
	if results[1].OK || results[1].Err != nil {
		t.Fatalf("missing key should be absent without error, got %+v", results[1])
	}
}

func TestPrimeSkipsFetch(t *testing.T) {
	ctx := context.Background()
	f := &countingFetch{records: map[string]string{}}
	l := New(f.fn)

	l.Prime("a", "primed")
	res := l.Load(ctx, "a")()
	if res.Value != "primed" || !res.OK {
		t.Fatalf("res = %+v", res)
	}
	if len(f.batches) != 0 {
		t.Fatalf("prime must not trigger a fetch, got %v", f.batches)
	}
}

func TestClearForcesRefetch(t *testing.T) {
	ctx := context.Background()
	f := &countingFetch{records: map[string]string{"a": "A"}}
	l := New(f.fn)

	if res := l.Load(ctx, "a")(); !res.OK {
		t.Fatalf("first load: %+v", res)
	}
	delete(f.records, "a") // simulate a delete in the store
	l.Clear("a")

	res := l.Load(ctx, "a")()
	if res.OK {
		t.Fatalf("expected not-found after clear, got %+v", res)
	}
	if len(f.batches) != 2 {
		t.Fatalf("expected refetch after clear, batches: %v", f.batches)
	}
}

func TestRepeatedLoadUsesMemo(t *testing.T) {
	ctx := context.Background()
	f := &countingFetch{records: map[string]string{"a": "A"}}
	l := New(f.fn)

	first := l.Load(ctx, "a")()
	second := l.Load(ctx, "a")()
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
	if len(f.batches) != 1 {
		t.Fatalf("expected a single fetch, got %d", len(f.batches))
	}
}

func TestSeparateWindowsSeparateBatches(t *testing.T) {
	ctx := context.Background()
	f := &countingFetch{records: map[string]string{"a": "A", "b": "B"}}
	l := New(f.fn)

	l.Load(ctx, "a")()
	l.Load(ctx, "b")()

	want := [][]string{{"a"}, {"b"}}
	if diff := cmp.Diff(want, f.batches); diff != "" {
		t.Fatalf("batches mismatch (-want +got):\n%s", diff)
	}
}

func TestBatchErrorReachesEveryCaller(t *testing.T) {
	ctx := context.Background()
	f := &countingFetch{err: fmt.Errorf("store unavailable")}
	l := New(f.fn)

	ta := l.Load(ctx, "a")
	tb := l.Load(ctx, "b")
	if err := ta().Err; err == nil {
		t.Fatal("expected error for a")
	}
	if err := tb().Err; err == nil {
		t.Fatal("expected error for b")
	}
	if len(f.batches) != 1 {
		t.Fatalf("expected a single failing batch, got %d", len(f.batches))
	}
}
