package diffusioncache

import "testing"

type fakePipeline struct {
	released bool
}

func (f *fakePipeline) Release() { f.released = true }

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	cache, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := &fakePipeline{}
	key := Key{ModelID: "sd-xl", Variant: "fp16"}
	cache.Put(key, p)

	entry, ok := cache.Get(key)
	if !ok {
		t.Fatalf("expected entry to be present")
	}
	if entry.Container != Pipeline(p) {
		t.Fatalf("unexpected container returned")
	}
}

func TestCapacityEvictsAndReleases(t *testing.T) {
	t.Parallel()

	cache, err := New(Config{Capacity: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, b, c := &fakePipeline{}, &fakePipeline{}, &fakePipeline{}
	cache.Put(Key{ModelID: "a"}, a)
	cache.Put(Key{ModelID: "b"}, b)
	cache.Put(Key{ModelID: "c"}, c)

	if !a.released {
		t.Fatalf("least-recently-used pipeline a should have been released on eviction")
	}
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}
	if _, ok := cache.Get(Key{ModelID: "b"}); !ok {
		t.Fatalf("b should remain resident")
	}
	if _, ok := cache.Get(Key{ModelID: "c"}); !ok {
		t.Fatalf("c should remain resident")
	}
}

func TestRemoveReleasesPipeline(t *testing.T) {
	t.Parallel()

	cache, _ := New(Config{})
	p := &fakePipeline{}
	key := Key{ModelID: "m"}
	cache.Put(key, p)

	cache.Remove(key)

	if !p.released {
		t.Fatalf("Remove should release the pipeline")
	}
	if _, ok := cache.Get(key); ok {
		t.Fatalf("entry should no longer be present")
	}
}
