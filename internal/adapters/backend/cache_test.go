package backend_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/firmograph/internal/adapters/backend"
	"github.com/okian/firmograph/internal/adapters/http/auth"
	"github.com/okian/firmograph/internal/domain/filter"
	"github.com/okian/firmograph/internal/domain/model"
)

// countingBackend answers every call and counts how often it was reached.
type countingBackend struct {
	backend.Unconfigured
	calls int
	err   error
}

func (b *countingBackend) GetCompany(_ context.Context, id model.ObjectID) (model.Company, error) {
	b.calls++
	if b.err != nil {
		return model.Company{}, b.err
	}
	return model.Company{ID: id, Name: "Acme"}, nil
}

func (b *countingBackend) ListNews(_ context.Context, q model.FeedQuery) (model.NewsArticles, error) {
	b.calls++
	return model.NewsArticles{Total: q.Limit}, b.err
}

const cachedID = model.ObjectID("5ecd2d2d0faf391eadb211a7")

func TestCached_ServesRepeatedQueriesFromMemory(t *testing.T) {
	next := &countingBackend{}
	c := backend.NewCached(next, time.Minute)
	ctx := auth.WithToken(context.Background(), "alice")

	first, err := c.GetCompany(ctx, cachedID)
	require.NoError(t, err)
	second, err := c.GetCompany(ctx, cachedID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, c.Len())
}

func TestCached_KeysByTokenAndQuery(t *testing.T) {
	next := &countingBackend{}
	c := backend.NewCached(next, time.Minute)
	alice := auth.WithToken(context.Background(), "alice")
	bob := auth.WithToken(context.Background(), "bob")

	q := model.FeedQuery{CompanyID: cachedID, Added: filter.Parsed[time.Time]{"gt": time.Unix(0, 0).UTC()}, Page: model.Page{Limit: 20}}
	_, _ = c.ListNews(alice, q)
	_, _ = c.ListNews(bob, q)
	assert.Equal(t, 2, next.calls, "different callers must not share entries")

	other := q
	other.Page.Limit = 5
	res, err := c.ListNews(alice, other)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, next.calls)

	_, _ = c.ListNews(alice, q)
	assert.Equal(t, 3, next.calls)
}

func TestCached_DoesNotCacheFailures(t *testing.T) {
	next := &countingBackend{err: backend.ErrUpstream}
	c := backend.NewCached(next, time.Minute)

	_, err := c.GetCompany(context.Background(), cachedID)
	require.ErrorIs(t, err, backend.ErrUpstream)
	_, err = c.GetCompany(context.Background(), cachedID)
	require.ErrorIs(t, err, backend.ErrUpstream)

	assert.Equal(t, 2, next.calls)
	assert.Zero(t, c.Len())
}

func TestCached_EntriesExpire(t *testing.T) {
	next := &countingBackend{}
	c := backend.NewCached(next, 20*time.Millisecond)

	_, _ = c.GetCompany(context.Background(), cachedID)
	time.Sleep(40 * time.Millisecond)
	_, _ = c.GetCompany(context.Background(), cachedID)

	assert.Equal(t, 2, next.calls)
}

func TestCached_PassesThroughUnavailable(t *testing.T) {
	c := backend.NewCached(backend.Unconfigured{}, time.Minute)
	_, err := c.ListFundingRounds(context.Background(), model.FeedQuery{CompanyID: cachedID})
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}
