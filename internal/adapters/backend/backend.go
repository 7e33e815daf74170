// Package backend forwards validated company queries to the external data
// service that owns retrieval and ranking.
package backend

import (
	"context"
	"errors"

	"github.com/okian/firmograph/internal/domain/model"
)

// Sentinel kinds for backend errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrUpstream    = errors.New("backend request failed")
	ErrUnavailable = errors.New("backend not configured")
)

// Backend executes company queries.
type Backend interface {
	SearchCompanies(ctx context.Context, q model.SearchQuery) (model.CompaniesSearchResults, error)
	GetCompany(ctx context.Context, id model.ObjectID) (model.Company, error)
	ListPeers(ctx context.Context, q model.PeersQuery) (model.CompanyPeers, error)
	ListNews(ctx context.Context, q model.FeedQuery) (model.NewsArticles, error)
	ListJobPostings(ctx context.Context, q model.FeedQuery) (model.JobPostings, error)
	ListFundingRounds(ctx context.Context, q model.FeedQuery) (model.FundingRounds, error)
}

// Unconfigured answers every call with ErrUnavailable. It stands in when no
// backend URL is configured so that the routes, validation and documentation
// can still be served.
type Unconfigured struct{}

var _ Backend = Unconfigured{}

func (Unconfigured) SearchCompanies(context.Context, model.SearchQuery) (model.CompaniesSearchResults, error) {
	return model.CompaniesSearchResults{}, ErrUnavailable
}

func (Unconfigured) GetCompany(context.Context, model.ObjectID) (model.Company, error) {
	return model.Company{}, ErrUnavailable
}

func (Unconfigured) ListPeers(context.Context, model.PeersQuery) (model.CompanyPeers, error) {
	return model.CompanyPeers{}, ErrUnavailable
}

func (Unconfigured) ListNews(context.Context, model.FeedQuery) (model.NewsArticles, error) {
	return model.NewsArticles{}, ErrUnavailable
}

func (Unconfigured) ListJobPostings(context.Context, model.FeedQuery) (model.JobPostings, error) {
	return model.JobPostings{}, ErrUnavailable
}

func (Unconfigured) ListFundingRounds(context.Context, model.FeedQuery) (model.FundingRounds, error) {
	return model.FundingRounds{}, ErrUnavailable
}
