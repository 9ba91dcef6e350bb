package isotope

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/user/skygp_go/internal/errkind"
)

// LoadFile builds a Table from a local mass evaluation file.
func LoadFile(path string, opts BuildOptions) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read mass table: %w", errkind.ErrIO, err)
	}
	t, err := Build(strings.Split(string(data), "\n"), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// StoreConfig locates the remote and local copies of the table.
type StoreConfig struct {
	URL       string
	LocalPath string
	Options   BuildOptions
}

// Store holds the current Table. Readers get whatever table was current when
// they asked; a refresh builds a complete new table before swapping it in.
type Store struct {
	cfg     StoreConfig
	fetcher Fetcher
	logger  *slog.Logger

	current atomic.Pointer[Table]
	flight  singleflight.Group
	mu      sync.Mutex // serializes installs of current
}

func NewStore(cfg StoreConfig, fetcher Fetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	return &Store{cfg: cfg, fetcher: fetcher, logger: logger.With("comp", "isotope.store")}
}

// Table returns the current table, loading it on first use. Concurrent
// first callers share one load; each caller stops waiting when its own ctx
// is done, without cancelling the load for the others.
func (s *Store) Table(ctx context.Context) (*Table, error) {
	if t := s.current.Load(); t != nil {
		return t, nil
	}
	ch := s.flight.DoChan("load", func() (any, error) {
		return s.loadFirst(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

// loadFirst downloads into a side file so that a Refresh finishing while the
// download is in flight keeps both its table and its local copy. The side
// file is only moved into place if no table was installed in the meantime.
func (s *Store) loadFirst(ctx context.Context) (*Table, error) {
	if t := s.current.Load(); t != nil {
		return t, nil
	}
	path := s.cfg.LocalPath
	fetched := false
	if !s.haveLocalCopy() {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: mass table %s missing and no fetcher configured", errkind.ErrIO, s.cfg.LocalPath)
		}
		path = s.cfg.LocalPath + ".download"
		s.logger.Info("downloading mass table", "url", s.cfg.URL, "path", s.cfg.LocalPath)
		if err := s.fetcher.Fetch(ctx, s.cfg.URL, path); err != nil {
			return nil, err
		}
		fetched = true
	}
	t, err := LoadFile(path, s.cfg.Options)
	if fetched {
		defer os.Remove(path)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur := s.current.Load(); cur != nil {
		s.logger.Debug("mass table installed while loading; discarding load")
		return cur, nil
	}
	if fetched {
		if err := os.Rename(path, s.cfg.LocalPath); err != nil {
			return nil, fmt.Errorf("%w: %w", errkind.ErrIO, err)
		}
	}
	s.current.Store(t)
	s.logger.Debug("mass table loaded", "nuclides", t.Len(), "columns", t.FieldCount())
	return t, nil
}

// Resolver returns a resolver over the current table.
func (s *Store) Resolver(ctx context.Context) (*Resolver, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return NewResolver(t), nil
}

// Refresh rebuilds the table. Without force it does nothing when a local
// copy exists and a table is already loaded. A rebuilt table whose column
// count differs from the current one is rejected and the current table kept.
func (s *Store) Refresh(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	if !force && old != nil && s.haveLocalCopy() {
		s.logger.Debug("mass table already present", "path", s.cfg.LocalPath)
		return nil
	}
	t, err := s.load(ctx, force)
	if err != nil {
		return err
	}
	if old != nil && old.FieldCount() != 0 && old.FieldCount() != t.FieldCount() {
		return fmt.Errorf("%w: refreshed mass table split into %d columns, current table has %d",
			errkind.ErrFormat, t.FieldCount(), old.FieldCount())
	}
	s.current.Store(t)
	s.logger.Info("mass table refreshed", "path", s.cfg.LocalPath, "nuclides", t.Len())
	return nil
}

func (s *Store) load(ctx context.Context, force bool) (*Table, error) {
	if force || !s.haveLocalCopy() {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: mass table %s missing and no fetcher configured", errkind.ErrIO, s.cfg.LocalPath)
		}
		s.logger.Info("downloading mass table", "url", s.cfg.URL, "path", s.cfg.LocalPath)
		if err := s.fetcher.Fetch(ctx, s.cfg.URL, s.cfg.LocalPath); err != nil {
			return nil, err
		}
	}
	t, err := LoadFile(s.cfg.LocalPath, s.cfg.Options)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("mass table loaded", "nuclides", t.Len(), "columns", t.FieldCount())
	return t, nil
}

func (s *Store) haveLocalCopy() bool {
	st, err := os.Stat(s.cfg.LocalPath)
	if err != nil {
		return false
	}
	return st.Mode().IsRegular()
}
