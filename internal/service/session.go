package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/catalog"
	"github.com/GTDGit/gtd_catalog/internal/metrics"
)

// Mutation is one criteria change applied to a session.
type Mutation struct {
	Kind  string
	apply func(*catalog.Controller)
}

// SetSearch replaces the search query.
func SetSearch(q string) Mutation {
	return Mutation{Kind: "search", apply: func(c *catalog.Controller) { c.SetSearchQuery(q) }}
}

// ToggleCategory selects or deselects a category node.
func ToggleCategory(id catalog.NodeID) Mutation {
	return Mutation{Kind: "category", apply: func(c *catalog.Controller) { c.ToggleCategory(id) }}
}

// SetPriceRange replaces the price interval.
func SetPriceRange(r catalog.PriceRange) Mutation {
	return Mutation{Kind: "price_range", apply: func(c *catalog.Controller) { c.SetPriceRange(r) }}
}

// SetAvailability replaces the stock facet.
func SetAvailability(a catalog.Availability) Mutation {
	return Mutation{Kind: "availability", apply: func(c *catalog.Controller) { c.SetAvailability(a) }}
}

// SetSort replaces the sort policy.
func SetSort(k catalog.SortKey) Mutation {
	return Mutation{Kind: "sort", apply: func(c *catalog.Controller) { c.SetSortKey(k) }}
}

// SetPage moves to another page without touching the other criteria.
func SetPage(n int) Mutation {
	return Mutation{Kind: "page", apply: func(c *catalog.Controller) { c.SetPage(n) }}
}

// SetPageSize replaces the page size.
func SetPageSize(n int) Mutation {
	return Mutation{Kind: "page_size", apply: func(c *catalog.Controller) { c.SetPageSize(n) }}
}

// ClearFilters restores the default criteria.
func ClearFilters() Mutation {
	return Mutation{Kind: "clear", apply: func(c *catalog.Controller) { c.ClearAllFilters() }}
}

// SessionView is the rendered state of a session.
type SessionView struct {
	ID    string `json:"id"`
	State string `json:"state"`
	BrowseResult
}

// CreateSession starts a session with default criteria.
func (s *CatalogService) CreateSession(ctx context.Context) (*SessionView, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	ctrl := catalog.NewController(snap, s.pageSize, s.maxPageSize)
	now := time.Now()
	sess := &cache.Session{
		ID:        s.newID(),
		Criteria:  ctrl.Criteria(),
		Bounds:    snap.Bounds,
		Version:   snap.Version,
		CreatedAt: now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Debug().Str("session_id", sess.ID).Msg("catalog session created")
	return s.render(sess.ID, ctrl), nil
}

// GetSession renders the session against the live snapshot.
func (s *CatalogService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.render(id, s.controllerFor(snap, sess)), nil
}

// MutateSession applies m to the session, stores the new criteria and
// renders the result. Concurrent mutations of one session are last-writer-wins.
func (s *CatalogService) MutateSession(ctx context.Context, id string, m Mutation) (*SessionView, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	ctrl := s.controllerFor(snap, sess)
	m.apply(ctrl)

	sess.Criteria = ctrl.Criteria()
	sess.Bounds = snap.Bounds
	sess.Version = snap.Version
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	metrics.SessionMutations.WithLabelValues(m.Kind).Inc()
	log.Debug().Str("session_id", id).Str("mutation", m.Kind).Msg("catalog session updated")
	return s.render(id, ctrl), nil
}

// DeleteSession discards the session.
func (s *CatalogService) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.sessions.Load(ctx, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// controllerFor rebuilds the session controller on snap. A price range
// still at the bounds of the snapshot it was saved against follows the
// bounds of snap.
func (s *CatalogService) controllerFor(snap *catalog.Snapshot, sess *cache.Session) *catalog.Controller {
	criteria := sess.Criteria
	if sess.Version != snap.Version && criteria.PriceRange == sess.Bounds {
		criteria.PriceRange = snap.Bounds
	}
	ctrl := catalog.NewController(snap, s.pageSize, s.maxPageSize)
	ctrl.Restore(criteria)
	return ctrl
}

func (s *CatalogService) render(id string, ctrl *catalog.Controller) *SessionView {
	start := time.Now()
	res := ctrl.Result()
	metrics.BrowseDuration.WithLabelValues("session").Observe(time.Since(start).Seconds())

	return &SessionView{
		ID:    id,
		State: ctrl.State().String(),
		BrowseResult: BrowseResult{
			Result:   res,
			Criteria: ctrl.Criteria(),
			Version:  ctrl.Snapshot().Version,
		},
	}
}
