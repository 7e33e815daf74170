package model

import (
	"time"

	"github.com/okian/firmograph/internal/domain/filter"
)

// Page selects a window of results.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// SearchQuery is forwarded to the backend for company search.
type SearchQuery struct {
	Query         string                `json:"query"`
	Headquarters  filter.Parsed[string] `json:"headquarters,omitempty"`
	EmployeeCount filter.Parsed[int]    `json:"employeeCount,omitempty"`
	FoundingYear  filter.Parsed[int]    `json:"foundingYear,omitempty"`
	Page
}

// PeersQuery lists peers of one company.
type PeersQuery struct {
	CompanyID ObjectID `json:"companyId"`
	Page
}

// FeedQuery lists time-stamped entries (news, job postings, funding rounds)
// of one company.
type FeedQuery struct {
	CompanyID ObjectID                 `json:"companyId"`
	Added     filter.Parsed[time.Time] `json:"added,omitempty"`
	Page
}
