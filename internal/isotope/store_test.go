package isotope

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/skygp_go/internal/errkind"
)

type fakeFetcher struct {
	mu      sync.Mutex
	content string
	calls   atomic.Int32
	err     error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, dest string) error {
	f.calls.Add(1)
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	body := f.content
	f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(body), 0o644)
}

func (f *fakeFetcher) set(content string) {
	f.mu.Lock()
	f.content = content
	f.mu.Unlock()
}

func newTestStore(t *testing.T, f Fetcher) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database", "mass16.txt")
	return NewStore(StoreConfig{LocalPath: path, Options: DefaultBuildOptions()}, f, nil), path
}

func TestStore_LazyLoadDownloadsOnce(t *testing.T) {
	f := &fakeFetcher{content: ameText(ameRows, "")}
	s, path := newTestStore(t, f)
	ctx := context.Background()

	var wg sync.WaitGroup
	tables := make([]*Table, 8)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := s.Table(ctx)
			assert.NoError(t, err)
			tables[i] = tbl
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	assert.FileExists(t, path)
	for _, tbl := range tables {
		assert.Same(t, tables[0], tbl)
	}
}

func TestStore_UsesExistingLocalCopy(t *testing.T) {
	f := &fakeFetcher{}
	s, path := newTestStore(t, f)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(ameText(ameRows, "")), 0o644))

	r, err := s.Resolver(context.Background())
	require.NoError(t, err)
	k, err := r.ParseNotation("ni64")
	require.NoError(t, err)
	assert.Equal(t, Key{A: 64, Z: 28}, k)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestStore_Refresh(t *testing.T) {
	f := &fakeFetcher{content: ameText(ameRows, "")}
	s, _ := newTestStore(t, f)
	ctx := context.Background()

	first, err := s.Table(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Refresh(ctx, false))
	assert.Equal(t, int32(1), f.calls.Load())
	same, err := s.Table(ctx)
	require.NoError(t, err)
	assert.Same(t, first, same)

	f.set(ameText(ameRows[:6], ""))
	require.NoError(t, s.Refresh(ctx, true))
	assert.Equal(t, int32(2), f.calls.Load())

	second, err := s.Table(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 6, second.Len())
	// Readers holding the old table still see all of it.
	assert.Equal(t, len(ameRows), first.Len())
}

func TestStore_RefreshRejectsChangedLayout(t *testing.T) {
	f := &fakeFetcher{content: ameText(ameRows, "")}
	s, _ := newTestStore(t, f)
	ctx := context.Background()

	first, err := s.Table(ctx)
	require.NoError(t, err)

	f.set(ameText(ameRows, "   X"))
	err = s.Refresh(ctx, true)
	assert.ErrorIs(t, err, errkind.ErrFormat)

	cur, err := s.Table(ctx)
	require.NoError(t, err)
	assert.Same(t, first, cur)
}

// gatedFetcher blocks its first call until release is closed. Each call
// writes the body that was current when the call started.
type gatedFetcher struct {
	fakeFetcher
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedFetcher(content string) *gatedFetcher {
	return &gatedFetcher{
		fakeFetcher: fakeFetcher{content: content},
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedFetcher) Fetch(ctx context.Context, url, dest string) error {
	g.mu.Lock()
	body := g.content
	g.mu.Unlock()
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	g.calls.Add(1)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(body), 0o644)
}

func TestStore_RefreshDuringFirstLoadWins(t *testing.T) {
	f := newGatedFetcher(ameText(ameRows[:6], ""))
	s, path := newTestStore(t, f)
	ctx := context.Background()

	loaded := make(chan *Table, 1)
	go func() {
		tbl, err := s.Table(ctx)
		assert.NoError(t, err)
		loaded <- tbl
	}()
	<-f.entered

	f.set(ameText(ameRows, ""))
	require.NoError(t, s.Refresh(ctx, true))
	refreshed, err := s.Table(ctx)
	require.NoError(t, err)
	require.Equal(t, len(ameRows), refreshed.Len())

	close(f.release)
	first := <-loaded
	assert.Same(t, refreshed, first)

	cur, err := s.Table(ctx)
	require.NoError(t, err)
	assert.Same(t, refreshed, cur)

	onDisk, err := LoadFile(path, DefaultBuildOptions())
	require.NoError(t, err)
	assert.Equal(t, len(ameRows), onDisk.Len())
	assert.NoFileExists(t, path+".download")
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestStore_WaiterCancelDoesNotAbortLoad(t *testing.T) {
	f := newGatedFetcher(ameText(ameRows, ""))
	s, _ := newTestStore(t, f)

	loaded := make(chan *Table, 1)
	go func() {
		tbl, err := s.Table(context.Background())
		assert.NoError(t, err)
		loaded <- tbl
	}()
	<-f.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Table(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(f.release)
	tbl := <-loaded
	require.NotNil(t, tbl)
	assert.Equal(t, len(ameRows), tbl.Len())
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestStore_FetchFailure(t *testing.T) {
	f := &fakeFetcher{err: errors.New("offline")}
	s, _ := newTestStore(t, f)

	_, err := s.Table(context.Background())
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"), DefaultBuildOptions())
	assert.ErrorIs(t, err, errkind.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTPFetcher(t *testing.T) {
	body := ameText(ameRows, "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		if r.URL.Path != "/mass16.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "")
	dest := filepath.Join(t.TempDir(), "db", "mass16.txt")
	require.NoError(t, f.Fetch(context.Background(), srv.URL+"/mass16.txt", dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
	st, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o444), st.Mode().Perm())

	err = f.Fetch(context.Background(), srv.URL+"/missing", dest)
	assert.ErrorIs(t, err, errkind.ErrIO)
}
