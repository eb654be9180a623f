package modcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/modkit/modkit/internal/cache"
	"github.com/modkit/modkit/internal/moderr"
)

type entry struct {
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

// failingStore 模拟底层存储故障。
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Put(context.Context, string, []byte, time.Duration) error {
	return f.err
}
func (f failingStore) Forget(context.Context, string) error { return f.err }

func TestPutThenGet(t *testing.T) {
	c := New[entry](cache.NewMemoryStore(), Options{Enabled: true}, nil)
	want := map[string]entry{"Blog": {Path: "/m/Blog", Enabled: true}}

	ok, err := c.Put(context.Background(), want)
	if err != nil || !ok {
		t.Fatalf("put failed: ok=%v err=%v", ok, err)
	}
	got, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cached snapshot mismatch (-want +got):\n%s", diff)
	}
	if !c.Cached(context.Background()) {
		t.Fatalf("Cached should report a snapshot")
	}
}

func TestDefaults(t *testing.T) {
	c := New[entry](cache.NewMemoryStore(), Options{Enabled: true}, nil)
	if c.Key() != DefaultKey || c.Lifetime() != DefaultLifetime {
		t.Fatalf("unexpected defaults key=%s lifetime=%s", c.Key(), c.Lifetime())
	}
}

func TestDisabledCacheNeverHits(t *testing.T) {
	store := cache.NewMemoryStore()
	c := New[entry](store, Options{Enabled: false}, nil)

	ok, err := c.Put(context.Background(), map[string]entry{"Blog": {}})
	if ok || err != nil {
		t.Fatalf("disabled put should report false, got ok=%v err=%v", ok, err)
	}
	if err := store.Put(context.Background(), DefaultKey, []byte(`{"Blog":{}}`), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := c.Get(context.Background())
	if got != nil || err != nil {
		t.Fatalf("disabled get should miss, got %v %v", got, err)
	}
}

func TestClearRemovesSnapshot(t *testing.T) {
	c := New[entry](cache.NewMemoryStore(), Options{Enabled: true}, nil)
	if _, err := c.Put(context.Background(), map[string]entry{"Blog": {}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := c.Clear(context.Background())
	if !ok || err != nil {
		t.Fatalf("clear failed: ok=%v err=%v", ok, err)
	}
	if got, _ := c.Get(context.Background()); got != nil {
		t.Fatalf("expected miss after clear, got %v", got)
	}
}

func TestCorruptPayloadIsMiss(t *testing.T) {
	store := cache.NewMemoryStore()
	if err := store.Put(context.Background(), DefaultKey, []byte("not json"), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := New[entry](store, Options{Enabled: true, Strict: true}, nil)
	got, err := c.Get(context.Background())
	if got != nil || err != nil {
		t.Fatalf("corrupt payload should be a plain miss, got %v %v", got, err)
	}
}

func TestStoreFaults(t *testing.T) {
	boom := errors.New("disk on fire")

	lenient := New[entry](failingStore{err: boom}, Options{Enabled: true}, nil)
	if got, err := lenient.Get(context.Background()); got != nil || err != nil {
		t.Fatalf("lenient get should miss, got %v %v", got, err)
	}
	if ok, err := lenient.Put(context.Background(), map[string]entry{}); ok || err != nil {
		t.Fatalf("lenient put should report false, got ok=%v err=%v", ok, err)
	}
	if ok, err := lenient.Clear(context.Background()); ok || err != nil {
		t.Fatalf("lenient clear should report false, got ok=%v err=%v", ok, err)
	}

	strict := New[entry](failingStore{err: boom}, Options{Enabled: true, Strict: true}, nil)
	if _, err := strict.Get(context.Background()); !errors.Is(err, moderr.ErrCacheFailed) || !errors.Is(err, boom) {
		t.Fatalf("strict get should wrap the fault, got %v", err)
	}
	if _, err := strict.Put(context.Background(), map[string]entry{}); !errors.Is(err, moderr.ErrCacheFailed) {
		t.Fatalf("strict put should fail, got %v", err)
	}
}

func TestLifetimeExpires(t *testing.T) {
	now := time.Now()
	store := cache.NewMemoryStore().WithClock(func() time.Time { return now })
	c := New[entry](store, Options{Enabled: true, Lifetime: time.Minute}, nil)
	if _, err := c.Put(context.Background(), map[string]entry{"Blog": {}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if got, _ := c.Get(context.Background()); got != nil {
		t.Fatalf("expired snapshot should miss")
	}
}
