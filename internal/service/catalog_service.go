package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/catalog"
	"github.com/GTDGit/gtd_catalog/internal/metrics"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// ProductSource supplies the full product list.
type ProductSource interface {
	Name() string
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// SnapshotStore persists the last good product list.
type SnapshotStore interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
	ReplaceAll(ctx context.Context, source string, products []models.Product) error
}

// CriteriaStore keeps per-session browse state.
type CriteriaStore interface {
	Save(ctx context.Context, s *cache.Session) error
	Load(ctx context.Context, id string) (*cache.Session, error)
	Delete(ctx context.Context, id string) error
}

// Options tune paging limits and the refresh deadline.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	RefreshTimeout  time.Duration
}

const defaultRefreshTimeout = 5 * time.Minute

// CatalogService serves browse requests from an in-memory snapshot that is
// swapped atomically on refresh.
type CatalogService struct {
	source      ProductSource
	store       SnapshotStore
	sessions    CriteriaStore
	notifier    sse.SnapshotNotifier
	pageSize    int
	maxPageSize int
	timeout     time.Duration

	snap    atomic.Pointer[catalog.Snapshot]
	version atomic.Int64
	group   singleflight.Group
	newID   func() string
}

// NewCatalogService constructs a CatalogService. store may be nil.
func NewCatalogService(source ProductSource, store SnapshotStore, sessions CriteriaStore, opts Options) *CatalogService {
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = catalog.MaxPageSize
	}
	if opts.DefaultPageSize < 1 || opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = min(catalog.DefaultPageSize, opts.MaxPageSize)
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = defaultRefreshTimeout
	}
	return &CatalogService{
		source:      source,
		store:       store,
		sessions:    sessions,
		notifier:    &sse.NopNotifier{},
		pageSize:    opts.DefaultPageSize,
		maxPageSize: opts.MaxPageSize,
		timeout:     opts.RefreshTimeout,
		newID:       uuid.NewString,
	}
}

// SetNotifier sets the listener told about every installed snapshot.
func (s *CatalogService) SetNotifier(n sse.SnapshotNotifier) {
	s.notifier = n
}

// Snapshot returns the live snapshot or utils.ErrCatalogNotLoaded.
func (s *CatalogService) Snapshot() (*catalog.Snapshot, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, utils.ErrCatalogNotLoaded
	}
	return snap, nil
}

// Bootstrap performs the first load. When the source fails it falls back
// to the last persisted product list.
func (s *CatalogService) Bootstrap(ctx context.Context) error {
	_, err := s.Refresh(ctx)
	if err == nil {
		return nil
	}
	if s.store == nil {
		return err
	}

	products, ferr := s.store.FetchProducts(ctx)
	if ferr != nil {
		return errors.Join(err, fmt.Errorf("fallback load: %w", ferr))
	}
	if len(products) == 0 {
		return err
	}
	snap := s.install(products)
	log.Warn().Err(err).
		Int("products", len(products)).
		Int64("version", snap.Version).
		Msg("catalog source unavailable, serving last persisted snapshot")
	return nil
}

// Refresh fetches the product list, installs a new snapshot and persists
// it. Concurrent calls share one fetch. The fetch is detached from ctx and
// bounded by the refresh timeout, so a caller that gives up returns
// ctx.Err() without failing the others. On failure the live snapshot is
// kept.
func (s *CatalogService) Refresh(ctx context.Context) (*catalog.Snapshot, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.refresh(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("catalog refresh joined in-flight fetch")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*catalog.Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CatalogService) refresh(ctx context.Context) (*catalog.Snapshot, error) {
	start := time.Now()
	defer func() { metrics.RefreshDuration.Observe(time.Since(start).Seconds()) }()

	products, err := s.source.FetchProducts(ctx)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues(s.source.Name(), "error").Inc()
		log.Warn().Err(err).Str("source", s.source.Name()).Msg("catalog refresh failed")
		return nil, fmt.Errorf("%w: %w", utils.ErrSourceUnavailable, err)
	}

	snap := s.install(products)
	metrics.RefreshTotal.WithLabelValues(s.source.Name(), "success").Inc()

	if s.store != nil {
		if err := s.store.ReplaceAll(ctx, s.source.Name(), products); err != nil {
			log.Warn().Err(err).Msg("failed to persist catalog snapshot")
		}
	}

	log.Info().
		Str("source", s.source.Name()).
		Int("products", len(snap.Products)).
		Int("categories", len(snap.Nodes)).
		Int64("version", snap.Version).
		Dur("took", time.Since(start)).
		Msg("catalog snapshot loaded")
	return snap, nil
}

func (s *CatalogService) install(products []models.Product) *catalog.Snapshot {
	snap := catalog.NewSnapshot(products, s.version.Add(1))
	s.snap.Store(snap)
	metrics.SnapshotProducts.Set(float64(len(snap.Products)))
	metrics.SnapshotCategories.Set(float64(len(snap.Nodes)))
	s.notifier.NotifySnapshot(snap)
	return snap
}

// Status describes the live snapshot for health checks.
type Status struct {
	Loaded   bool      `json:"loaded"`
	Version  int64     `json:"version"`
	Products int       `json:"products"`
	LoadedAt time.Time `json:"loadedAt,omitzero"`
}

// Status reports whether a snapshot is live.
func (s *CatalogService) Status() Status {
	snap := s.snap.Load()
	if snap == nil {
		return Status{}
	}
	return Status{Loaded: true, Version: snap.Version, Products: len(snap.Products), LoadedAt: snap.LoadedAt}
}

// Categories is the category forest plus the filter panel summary.
type Categories struct {
	Tree    []*catalog.CategoryNode `json:"tree"`
	Summary catalog.Summary         `json:"summary"`
	Version int64                   `json:"-"`
}

// Categories returns the category forest of the live snapshot.
func (s *CatalogService) Categories(_ context.Context) (*Categories, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return &Categories{Tree: snap.Tree, Summary: catalog.Summarize(snap), Version: snap.Version}, nil
}

// BrowseQuery is a stateless browse request. Nil price bounds default to
// the snapshot bounds.
type BrowseQuery struct {
	Search       string
	CategoryIDs  []catalog.NodeID
	MinPrice     *float64
	MaxPrice     *float64
	Availability catalog.Availability
	SortKey      catalog.SortKey
	Page         int
	PageSize     int
}

// BrowseResult is one page of products with the criteria that produced it.
type BrowseResult struct {
	catalog.Result
	Criteria catalog.FilterCriteria `json:"criteria"`
	Version  int64                  `json:"-"`
}

// Browse filters, sorts and paginates the live snapshot.
func (s *CatalogService) Browse(_ context.Context, q BrowseQuery) (*BrowseResult, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	start := time.Now()

	criteria := catalog.DefaultCriteria(snap.Bounds, s.pageSize)
	criteria.SearchQuery = q.Search
	if len(q.CategoryIDs) > 0 {
		criteria.SelectedCategoryIDs = dedupeIDs(q.CategoryIDs)
	}
	// A one-sided bound widens the other side instead of being swapped with it.
	switch {
	case q.MinPrice != nil && q.MaxPrice != nil:
		if *q.MinPrice > *q.MaxPrice {
			return nil, utils.ErrInvalidPriceRange
		}
		criteria.PriceRange = catalog.PriceRange{Min: *q.MinPrice, Max: *q.MaxPrice}
	case q.MinPrice != nil:
		criteria.PriceRange = catalog.PriceRange{Min: *q.MinPrice, Max: max(snap.Bounds.Max, *q.MinPrice)}
	case q.MaxPrice != nil:
		criteria.PriceRange = catalog.PriceRange{Min: min(snap.Bounds.Min, *q.MaxPrice), Max: *q.MaxPrice}
	}
	if q.Availability != "" {
		criteria.Availability = q.Availability
	}
	if q.SortKey != "" {
		criteria.SortKey = q.SortKey
	}
	criteria.Page = q.Page
	criteria.PageSize = q.PageSize

	ctrl := catalog.NewController(snap, s.pageSize, s.maxPageSize)
	ctrl.Restore(criteria)
	res := ctrl.Result()

	metrics.BrowseDuration.WithLabelValues("browse").Observe(time.Since(start).Seconds())
	metrics.BrowseResults.Observe(float64(res.TotalCount))
	return &BrowseResult{Result: res, Criteria: ctrl.Criteria(), Version: snap.Version}, nil
}

func dedupeIDs(ids []catalog.NodeID) []catalog.NodeID {
	seen := make(map[catalog.NodeID]struct{}, len(ids))
	out := make([]catalog.NodeID, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
