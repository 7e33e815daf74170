package backend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/okian/firmograph/internal/adapters/http/auth"
	"github.com/okian/firmograph/internal/domain/model"
	"github.com/okian/firmograph/pkg/metrics"
)

// Cached answers repeated identical queries from memory for a short TTL.
// Entries are keyed by operation, caller token and query, so one caller
// never sees another caller's results. Failures are not cached.
//
// Cached results are shared between callers of the same key and must be
// treated as read-only.
type Cached struct {
	next  Backend
	store *gocache.Cache
}

var _ Backend = (*Cached)(nil)

// NewCached wraps next with a cache whose entries live for ttl.
func NewCached(next Backend, ttl time.Duration) *Cached {
	if next == nil {
		panic("backend is nil")
	}
	return &Cached{next: next, store: gocache.New(ttl, 2*ttl)}
}

// Len returns the number of cached entries, expired ones included until the
// next cleanup.
func (c *Cached) Len() int { return c.store.ItemCount() }

// SearchCompanies implements Backend.
func (c *Cached) SearchCompanies(ctx context.Context, q model.SearchQuery) (model.CompaniesSearchResults, error) {
	return cached(ctx, c, OpSearchCompanies, q, c.next.SearchCompanies)
}

// GetCompany implements Backend.
func (c *Cached) GetCompany(ctx context.Context, id model.ObjectID) (model.Company, error) {
	return cached(ctx, c, OpGetCompany, id, c.next.GetCompany)
}

// ListPeers implements Backend.
func (c *Cached) ListPeers(ctx context.Context, q model.PeersQuery) (model.CompanyPeers, error) {
	return cached(ctx, c, OpListPeers, q, c.next.ListPeers)
}

// ListNews implements Backend.
func (c *Cached) ListNews(ctx context.Context, q model.FeedQuery) (model.NewsArticles, error) {
	return cached(ctx, c, OpListNews, q, c.next.ListNews)
}

// ListJobPostings implements Backend.
func (c *Cached) ListJobPostings(ctx context.Context, q model.FeedQuery) (model.JobPostings, error) {
	return cached(ctx, c, OpListJobPostings, q, c.next.ListJobPostings)
}

// ListFundingRounds implements Backend.
func (c *Cached) ListFundingRounds(ctx context.Context, q model.FeedQuery) (model.FundingRounds, error) {
	return cached(ctx, c, OpListFundingRounds, q, c.next.ListFundingRounds)
}

func cached[Q, R any](ctx context.Context, c *Cached, op string, q Q, fetch func(context.Context, Q) (R, error)) (R, error) {
	key, ok := cacheKey(ctx, op, q)
	if !ok {
		return fetch(ctx, q)
	}
	if v, found := c.store.Get(key); found {
		if r, isR := v.(R); isR {
			metrics.RecordCacheLookup(op, true)
			return r, nil
		}
	}
	metrics.RecordCacheLookup(op, false)

	r, err := fetch(ctx, q)
	if err != nil {
		return r, err
	}
	c.store.Set(key, r, gocache.DefaultExpiration)
	return r, nil
}

// cacheKey digests operation, token and query so tokens are not kept in
// memory as map keys. Maps in the query marshal with sorted keys, which
// makes equal queries produce equal keys.
func cacheKey(ctx context.Context, op string, q any) (string, bool) {
	body, err := json.Marshal(q)
	if err != nil {
		return "", false
	}
	token, _ := auth.TokenFromContext(ctx)

	h := sha256.New()
	h.Write([]byte(op))
	h.Write([]byte{0})
	h.Write([]byte(token))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), true
}
