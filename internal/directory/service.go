package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkurov/campdir/internal/graphql"
	"github.com/dkurov/campdir/internal/logging"
)

// ErrNotFound is returned by Get when no listing has the given id.
var ErrNotFound = errors.New("business not found")

// Executor is the slice of the request client the service needs.
type Executor interface {
	Execute(ctx context.Context, req graphql.Request, out any) error
}

// Service exposes the directory operations. List results are cached in
// memory and considered fresh for cacheTTL; Create invalidates the cache.
type Service struct {
	api      Executor
	log      logging.Logger
	cacheTTL time.Duration

	mu       sync.Mutex
	cached   []Business
	cachedAt time.Time

	now func() time.Time
}

func NewService(api Executor, cacheTTL time.Duration, log logging.Logger) *Service {
	return &Service{api: api, cacheTTL: cacheTTL, log: log, now: time.Now}
}

// List returns all listings, from cache when fresh.
func (s *Service) List(ctx context.Context) ([]Business, error) {
	s.mu.Lock()
	if s.cached != nil && s.now().Sub(s.cachedAt) < s.cacheTTL {
		out := append([]Business(nil), s.cached...)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	var resp struct {
		ListBusinesses []apiBusiness `json:"listBusinesses"`
	}
	if err := s.api.Execute(ctx, graphql.Request{Query: listBusinessesQuery}, &resp); err != nil {
		return nil, fmt.Errorf("listing businesses: %w", err)
	}

	result := make([]Business, 0, len(resp.ListBusinesses))
	for _, b := range resp.ListBusinesses {
		result = append(result, b.toBusiness())
	}

	s.mu.Lock()
	s.cached = append([]Business(nil), result...)
	s.cachedAt = s.now()
	s.mu.Unlock()

	s.log.Debug(ctx, "listings refreshed", "count", len(result))
	return result, nil
}

// Get fetches a single listing by id.
func (s *Service) Get(ctx context.Context, id string) (Business, error) {
	var resp struct {
		GetBusiness *apiBusiness `json:"getBusiness"`
	}
	req := graphql.Request{
		Query:     getBusinessQuery,
		Variables: map[string]any{"businessId": id},
	}
	if err := s.api.Execute(ctx, req, &resp); err != nil {
		return Business{}, fmt.Errorf("fetching business %s: %w", id, err)
	}
	if resp.GetBusiness == nil {
		return Business{}, ErrNotFound
	}
	return resp.GetBusiness.toBusiness(), nil
}

// Create adds a listing, generating an id when the input has none, and
// invalidates the list cache so the next List reflects the new entry.
func (s *Service) Create(ctx context.Context, input CreateBusinessInput) (Business, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}

	var resp struct {
		CreateBusiness apiBusiness `json:"createBusiness"`
	}
	req := graphql.Request{
		Query:     createBusinessMutation,
		Variables: map[string]any{"input": input},
	}
	if err := s.api.Execute(ctx, req, &resp); err != nil {
		return Business{}, fmt.Errorf("creating business: %w", err)
	}

	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	s.log.Info(ctx, "business created", "id", resp.CreateBusiness.BusinessID, "name", resp.CreateBusiness.Name)
	return resp.CreateBusiness.toBusiness(), nil
}
