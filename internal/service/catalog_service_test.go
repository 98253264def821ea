package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/catalog"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

type fakeSource struct {
	mu       sync.Mutex
	products []models.Product
	err      error
	calls    atomic.Int32
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	f.calls.Add(1)
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeSource) set(products []models.Product, err error) {
	f.mu.Lock()
	f.products, f.err = products, err
	f.mu.Unlock()
}

type fakeStore struct {
	saved    []models.Product
	source   string
	fetchErr error
	saveErr  error
}

func (f *fakeStore) FetchProducts(ctx context.Context) ([]models.Product, error) {
	return f.saved, f.fetchErr
}

func (f *fakeStore) ReplaceAll(ctx context.Context, source string, products []models.Product) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.source = source
	f.saved = append([]models.Product(nil), products...)
	return nil
}

func scenarioProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Analog Dome", Category1: "CCTV", Category2: "Analog", Price: 100, Availability: 5},
		{ID: "2", Name: "IP Bullet", Category1: "CCTV", Category2: "IP", Price: 250, Availability: 0},
		{ID: "3", Name: "Keypad", Category1: "Access Control", Price: 80, Availability: 2},
	}
}

func itemIDs(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func newTestService(t *testing.T, src *fakeSource, store SnapshotStore) *CatalogService {
	t.Helper()
	svc := NewCatalogService(src, store, cache.NewMemoryStore(time.Hour), Options{DefaultPageSize: 12, MaxPageSize: 50})
	n := 0
	svc.newID = func() string {
		n++
		return "sess-" + string(rune('0'+n))
	}
	return svc
}

func loadedService(t *testing.T) (*CatalogService, *fakeSource) {
	t.Helper()
	src := &fakeSource{products: scenarioProducts()}
	svc := newTestService(t, src, nil)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	return svc, src
}

func TestCatalogService_NotLoaded(t *testing.T) {
	svc := newTestService(t, &fakeSource{}, nil)
	ctx := context.Background()

	_, err := svc.Snapshot()
	assert.ErrorIs(t, err, utils.ErrCatalogNotLoaded)
	_, err = svc.Browse(ctx, BrowseQuery{})
	assert.ErrorIs(t, err, utils.ErrCatalogNotLoaded)
	_, err = svc.Categories(ctx)
	assert.ErrorIs(t, err, utils.ErrCatalogNotLoaded)
	_, err = svc.CreateSession(ctx)
	assert.ErrorIs(t, err, utils.ErrCatalogNotLoaded)
	assert.False(t, svc.Status().Loaded)
}

func TestCatalogService_RefreshInstallsAndPersists(t *testing.T) {
	src := &fakeSource{products: scenarioProducts()}
	store := &fakeStore{}
	svc := newTestService(t, src, store)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, catalog.PriceRange{Min: 0, Max: 250}, snap.Bounds)
	assert.Len(t, store.saved, 3)
	assert.Equal(t, "fake", store.source)

	snap, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Version)

	st := svc.Status()
	assert.True(t, st.Loaded)
	assert.Equal(t, 3, st.Products)
}

func TestCatalogService_RefreshFailureKeepsSnapshot(t *testing.T) {
	svc, src := loadedService(t)
	src.set(nil, errors.New("connection refused"))

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, utils.ErrSourceUnavailable)

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	assert.Len(t, snap.Products, 3)
}

func TestCatalogService_PersistFailureDoesNotFailRefresh(t *testing.T) {
	src := &fakeSource{products: scenarioProducts()}
	svc := newTestService(t, src, &fakeStore{saveErr: errors.New("read-only")})

	_, err := svc.Refresh(context.Background())
	assert.NoError(t, err)
}

func TestCatalogService_BootstrapFallsBackToStore(t *testing.T) {
	src := &fakeSource{err: errors.New("down")}
	store := &fakeStore{saved: scenarioProducts()[:2]}
	svc := newTestService(t, src, store)

	require.NoError(t, svc.Bootstrap(context.Background()))
	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Products, 2)
}

func TestCatalogService_BootstrapFailsWithoutFallback(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, &fakeSource{err: errors.New("down")}, nil)
	assert.ErrorIs(t, svc.Bootstrap(ctx), utils.ErrSourceUnavailable)

	svc = newTestService(t, &fakeSource{err: errors.New("down")}, &fakeStore{})
	assert.ErrorIs(t, svc.Bootstrap(ctx), utils.ErrSourceUnavailable)
}

func TestCatalogService_ConcurrentRefreshSharesFetch(t *testing.T) {
	src := &fakeSource{
		products: scenarioProducts(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	svc := newTestService(t, src, nil)

	var wg sync.WaitGroup
	versions := make([]int64, 5)
	for i := range versions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i > 0 {
				<-src.started
			}
			snap, err := svc.Refresh(context.Background())
			if assert.NoError(t, err) {
				versions[i] = snap.Version
			}
		}(i)
	}

	<-src.started
	time.Sleep(100 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, []int64{1, 1, 1, 1, 1}, versions)
}

func TestCatalogService_Browse(t *testing.T) {
	svc, _ := loadedService(t)
	ctx := context.Background()
	cctv := catalog.MakeNodeID(catalog.LevelRoot, "CCTV", "", "")

	res, err := svc.Browse(ctx, BrowseQuery{CategoryIDs: []catalog.NodeID{cctv, cctv}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, itemIDs(res.Items))
	assert.Equal(t, []catalog.NodeID{cctv}, res.Criteria.SelectedCategoryIDs)
	assert.Equal(t, catalog.PriceRange{Min: 0, Max: 250}, res.Criteria.PriceRange)

	res, err = svc.Browse(ctx, BrowseQuery{CategoryIDs: []catalog.NodeID{cctv}, Availability: catalog.AvailabilityInStock})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, itemIDs(res.Items))
	assert.Len(t, res.Chips, 2)

	res, err = svc.Browse(ctx, BrowseQuery{SortKey: catalog.SortPriceHigh})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "3"}, itemIDs(res.Items))
}

func TestCatalogService_BrowsePriceAndPaging(t *testing.T) {
	svc, _ := loadedService(t)
	ctx := context.Background()
	lo, hi := 90.0, 300.0

	res, err := svc.Browse(ctx, BrowseQuery{MinPrice: &lo, MaxPrice: &hi, SortKey: catalog.SortPriceLow})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, itemIDs(res.Items))

	res, err = svc.Browse(ctx, BrowseQuery{Page: 2, PageSize: 2, SortKey: catalog.SortPriceLow})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, itemIDs(res.Items))
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)

	res, err = svc.Browse(ctx, BrowseQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 3, res.TotalCount)

	res, err = svc.Browse(ctx, BrowseQuery{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, res.PageSize)
}

func TestCatalogService_Categories(t *testing.T) {
	svc, _ := loadedService(t)

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats.Tree, 2)
	assert.Equal(t, "Access Control", cats.Tree[0].Name)
	assert.Equal(t, "CCTV", cats.Tree[1].Name)
	assert.Len(t, cats.Tree[1].Children, 2)
	assert.Equal(t, 2, cats.Summary.InStock)
	assert.Equal(t, 1, cats.Summary.OutOfStock)
	assert.Equal(t, 2, cats.Summary.NodeCounts[catalog.MakeNodeID(catalog.LevelRoot, "CCTV", "", "")])
}

func TestCatalogService_BrowseOneSidedPrice(t *testing.T) {
	svc, _ := loadedService(t)
	ctx := context.Background()
	price := func(v float64) *float64 { return &v }

	res, err := svc.Browse(ctx, BrowseQuery{MinPrice: price(1000)})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, catalog.PriceRange{Min: 1000, Max: 1000}, res.Criteria.PriceRange)

	res, err = svc.Browse(ctx, BrowseQuery{MinPrice: price(90), SortKey: catalog.SortPriceLow})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, itemIDs(res.Items))
	assert.Equal(t, catalog.PriceRange{Min: 90, Max: 250}, res.Criteria.PriceRange)

	res, err = svc.Browse(ctx, BrowseQuery{MaxPrice: price(90)})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, itemIDs(res.Items))
	assert.Equal(t, catalog.PriceRange{Min: 0, Max: 90}, res.Criteria.PriceRange)
}

func TestCatalogService_BrowseRejectsReversedPrice(t *testing.T) {
	svc, _ := loadedService(t)
	lo, hi := 200.0, 90.0

	_, err := svc.Browse(context.Background(), BrowseQuery{MinPrice: &lo, MaxPrice: &hi})
	assert.ErrorIs(t, err, utils.ErrInvalidPriceRange)
}

// ctxSource blocks in FetchProducts until released or its context ends.
type ctxSource struct {
	products []models.Product
	calls    atomic.Int32
	started  chan struct{}
	release  chan struct{}
}

func (c *ctxSource) Name() string { return "ctx" }

func (c *ctxSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	if c.calls.Add(1) == 1 {
		close(c.started)
	}
	select {
	case <-c.release:
		return c.products, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCatalogService_CancelledCallerDoesNotAbortSharedRefresh(t *testing.T) {
	src := &ctxSource{products: scenarioProducts(), started: make(chan struct{}), release: make(chan struct{})}
	svc := NewCatalogService(src, nil, cache.NewMemoryStore(time.Hour), Options{})

	reqCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(reqCtx)
		leaderErr <- err
	}()
	<-src.started

	type result struct {
		snap *catalog.Snapshot
		err  error
	}
	joined := make(chan result, 1)
	go func() {
		snap, err := svc.Refresh(context.Background())
		joined <- result{snap, err}
	}()

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	time.Sleep(50 * time.Millisecond)
	close(src.release)

	res := <-joined
	require.NoError(t, res.err)
	assert.Len(t, res.snap.Products, 3)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.True(t, svc.Status().Loaded)
}

func TestCatalogService_RefreshTimeout(t *testing.T) {
	src := &ctxSource{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewCatalogService(src, nil, cache.NewMemoryStore(time.Hour), Options{RefreshTimeout: 20 * time.Millisecond})

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, utils.ErrSourceUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, svc.Status().Loaded)
}
