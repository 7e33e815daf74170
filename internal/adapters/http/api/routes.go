package api

import (
	"net/http"

	"github.com/okian/firmograph/internal/adapters/http/openapi"
	"github.com/okian/firmograph/internal/domain/filter"
	"github.com/okian/firmograph/internal/domain/model"
	"github.com/okian/firmograph/internal/domain/params"
)

// Tag groups the companies operations in the API reference.
const Tag = "Companies"

// Route is one companies operation: its handler plus everything the API
// reference needs to describe it.
type Route struct {
	Name        string
	Method      string
	Path        string // relative to CompaniesPrefix
	Summary     string
	Description string
	Params      []openapi.Parameter
	// Response is a zero value of the success body.
	Response any
	// Errors declares the route's own error responses by status code. An
	// empty description falls back to the status text.
	Errors  map[int]string
	Handler http.HandlerFunc
}

// Routes returns the companies routes served by h.
func (h *CompaniesHandler) Routes() []Route {
	companyNotFound := map[int]string{
		http.StatusNotFound:           "Company not found",
		http.StatusBadGateway:         "",
		http.StatusServiceUnavailable: "",
	}
	backendOnly := map[int]string{
		http.StatusBadGateway:         "",
		http.StatusServiceUnavailable: "",
	}

	return []Route{
		{
			Name:        "search_companies",
			Method:      http.MethodGet,
			Path:        "",
			Summary:     "Search companies",
			Description: "Full-text company search narrowed by headquarters, employee count and founding year.",
			Params: append([]openapi.Parameter{
				{
					Name:        queryParam,
					In:          openapi.InQuery,
					Description: "Search query",
					Required:    true,
					Schema:      &openapi.Schema{Type: "string"},
					Example:     "cloud security",
				},
				filterParam(filter.Headquarters.Doc()),
				filterParam(filter.EmployeeCount.Doc()),
				filterParam(filter.FoundingYear.Doc()),
			}, pageParams(searchPage)...),
			Response: model.CompaniesSearchResults{},
			Errors:   backendOnly,
			Handler:  h.HandleSearch,
		},
		{
			Name:     "get_company",
			Method:   http.MethodGet,
			Path:     "/{" + companyIDVar + "}",
			Summary:  "Get company profile",
			Params:   []openapi.Parameter{companyIDParam()},
			Response: model.Company{},
			Errors:   companyNotFound,
			Handler:  h.HandleGetCompany,
		},
		{
			Name:        "get_company_peers",
			Method:      http.MethodGet,
			Path:        "/{" + companyIDVar + "}/peers",
			Summary:     "Get company peers",
			Description: "Companies similar to the given one, ordered by score.",
			Params:      append([]openapi.Parameter{companyIDParam()}, pageParams(peersPage)...),
			Response:    model.CompanyPeers{},
			Errors:      companyNotFound,
			Handler:     h.HandlePeers,
		},
		{
			Name:     "get_company_news",
			Method:   http.MethodGet,
			Path:     "/{" + companyIDVar + "}/news",
			Summary:  "Get company news",
			Params:   feedParams(),
			Response: model.NewsArticles{},
			Errors:   companyNotFound,
			Handler:  h.HandleNews,
		},
		{
			Name:     "get_company_job_posts",
			Method:   http.MethodGet,
			Path:     "/{" + companyIDVar + "}/job-posts",
			Summary:  "Get company job postings",
			Params:   feedParams(),
			Response: model.JobPostings{},
			Errors:   companyNotFound,
			Handler:  h.HandleJobPostings,
		},
		{
			Name:     "get_company_funding_rounds",
			Method:   http.MethodGet,
			Path:     "/{" + companyIDVar + "}/funding-rounds",
			Summary:  "Get company funding rounds",
			Params:   feedParams(),
			Response: model.FundingRounds{},
			Errors:   companyNotFound,
			Handler:  h.HandleFundingRounds,
		},
	}
}

func companyIDParam() openapi.Parameter {
	return openapi.Parameter{
		Name:        companyIDVar,
		In:          openapi.InPath,
		Description: "Internal company ID",
		Required:    true,
		Schema:      objectIDSchema(),
		Example:     model.ObjectIDExample,
	}
}

func feedParams() []openapi.Parameter {
	return append([]openapi.Parameter{companyIDParam(), filterParam(filter.Added.Doc())}, pageParams(feedPage)...)
}

func pageParams(lo params.LimitOffset) []openapi.Parameter {
	zero, limitMax := 0.0, float64(lo.MaxLimit)
	return []openapi.Parameter{
		{
			Name:        "limit",
			In:          openapi.InQuery,
			Description: "Maximum number of results",
			Schema:      &openapi.Schema{Type: "integer", Default: lo.DefaultLimit, Minimum: &zero, Maximum: &limitMax},
		},
		{
			Name:        "offset",
			In:          openapi.InQuery,
			Description: "Number of results to skip",
			Schema:      &openapi.Schema{Type: "integer", Default: 0, Minimum: &zero},
		},
	}
}
