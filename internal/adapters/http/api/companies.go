package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/firmograph/internal/adapters/backend"
	"github.com/okian/firmograph/internal/domain/filter"
	"github.com/okian/firmograph/internal/domain/model"
	"github.com/okian/firmograph/internal/domain/params"
	"github.com/okian/firmograph/internal/domain/validation"
	"github.com/okian/firmograph/pkg/logger"
)

// Path variable and query parameter names.
const (
	companyIDVar = "companyId"
	queryParam   = "query"
)

// Pagination of the companies routes.
var (
	searchPage = params.NewLimitOffset(params.DefaultLimit, params.MaxLimit)
	peersPage  = params.NewLimitOffset(5, 50)
	feedPage   = params.NewLimitOffset(params.DefaultLimit, params.MaxLimit)
)

// CompaniesHandler resolves and validates companies requests and forwards
// them to the backend.
type CompaniesHandler struct {
	backend backend.Backend
	logger  logger.Logger
}

// NewCompaniesHandler creates a new companies handler.
func NewCompaniesHandler(b backend.Backend, log logger.Logger) *CompaniesHandler {
	return &CompaniesHandler{backend: b, logger: log}
}

// HandleSearch handles GET /v1/companies.
func (h *CompaniesHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var c validation.Collector

	text, err := params.RequiredString(q, queryParam)
	c.Add(err)
	hq, err := filter.Headquarters.Resolve(q)
	c.Add(err)
	employees, err := filter.EmployeeCount.Resolve(q)
	c.Add(err)
	founded, err := filter.FoundingYear.Resolve(q)
	c.Add(err)
	page, err := searchPage.Resolve(q)
	c.Add(err)
	if err := c.Err(); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res, err := h.backend.SearchCompanies(r.Context(), model.SearchQuery{
		Query:         text,
		Headquarters:  hq,
		EmployeeCount: employees,
		FoundingYear:  founded,
		Page:          page,
	})
	h.reply(w, r, res, err)
}

// HandleGetCompany handles GET /v1/companies/{companyId}.
func (h *CompaniesHandler) HandleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathObjectID(companyIDVar, mux.Vars(r)[companyIDVar])
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	res, err := h.backend.GetCompany(r.Context(), id)
	h.reply(w, r, res, err)
}

// HandlePeers handles GET /v1/companies/{companyId}/peers.
func (h *CompaniesHandler) HandlePeers(w http.ResponseWriter, r *http.Request) {
	var c validation.Collector
	id, err := params.PathObjectID(companyIDVar, mux.Vars(r)[companyIDVar])
	c.Add(err)
	page, err := peersPage.Resolve(r.URL.Query())
	c.Add(err)
	if err := c.Err(); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	res, err := h.backend.ListPeers(r.Context(), model.PeersQuery{CompanyID: id, Page: page})
	h.reply(w, r, res, err)
}

// HandleNews handles GET /v1/companies/{companyId}/news.
func (h *CompaniesHandler) HandleNews(w http.ResponseWriter, r *http.Request) {
	q, err := feedQuery(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	res, err := h.backend.ListNews(r.Context(), q)
	h.reply(w, r, res, err)
}

// HandleJobPostings handles GET /v1/companies/{companyId}/job-posts.
func (h *CompaniesHandler) HandleJobPostings(w http.ResponseWriter, r *http.Request) {
	q, err := feedQuery(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	res, err := h.backend.ListJobPostings(r.Context(), q)
	h.reply(w, r, res, err)
}

// HandleFundingRounds handles GET /v1/companies/{companyId}/funding-rounds.
func (h *CompaniesHandler) HandleFundingRounds(w http.ResponseWriter, r *http.Request) {
	q, err := feedQuery(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	res, err := h.backend.ListFundingRounds(r.Context(), q)
	h.reply(w, r, res, err)
}

func (h *CompaniesHandler) reply(w http.ResponseWriter, r *http.Request, res any, err error) {
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// feedQuery resolves the company ID, the added filter and the page of the
// time-stamped listing routes, reporting all failures together.
func feedQuery(r *http.Request) (model.FeedQuery, error) {
	var c validation.Collector
	q := r.URL.Query()

	id, err := params.PathObjectID(companyIDVar, mux.Vars(r)[companyIDVar])
	c.Add(err)
	added, err := filter.Added.Resolve(q)
	c.Add(err)
	page, err := feedPage.Resolve(q)
	c.Add(err)
	if err := c.Err(); err != nil {
		return model.FeedQuery{}, err
	}
	return model.FeedQuery{CompanyID: id, Added: added, Page: page}, nil
}
