// Package model contains the request and response schemas of the companies API.
// JSON keys are camelCase; optional fields are omitted when unknown.
package model

// Label is a hierarchical classification assigned to an article.
type Label struct {
	Name     string  `json:"name" doc:"Assigned label"`
	Children []Label `json:"children" doc:"Sublabels"`
}

// Location is a postal address.
type Location struct {
	Country   *string  `json:"country,omitempty" doc:"Company address (country)" example:"Germany"`
	City      *string  `json:"city,omitempty" doc:"Company address (city)" example:"Berlin"`
	Continent *string  `json:"continent,omitempty" doc:"Company address (continent)" example:"Europe"`
	State     *string  `json:"state,omitempty" doc:"Company address (state/land)" example:"Berlin"`
	Latitude  *float64 `json:"latitude,omitempty" example:"52.5167"`
	Longitude *float64 `json:"longitude,omitempty" example:"13.3833"`
	ZipCode   *string  `json:"zipCode,omitempty" doc:"Company address (zip code)" example:"10999"`
}

// EmployeeCount describes company size.
type EmployeeCount struct {
	Min   *int    `json:"min,omitempty" doc:"Bottom range of the employee count interval" example:"11"`
	Max   *int    `json:"max,omitempty" doc:"Top range of the employee count interval" example:"50"`
	Exact *int    `json:"exact,omitempty" doc:"Exact number for employees" example:"30"`
	Range *string `json:"range,omitempty" doc:"Employee count interval" example:"11-50"`
}

// CompanyDescription holds a long and a truncated description.
type CompanyDescription struct {
	Long  *string `json:"long,omitempty" doc:"Company's default description"`
	Short *string `json:"short,omitempty" doc:"Truncated version of company's default description"`
}

// CompanyRevenue is the revenue of one fiscal year.
type CompanyRevenue struct {
	Currency *string `json:"currency,omitempty" doc:"Currency of revenue number" example:"EUR"`
	Annual   *int64  `json:"annual,omitempty" doc:"Annual revenue number for specified year" example:"5000000"`
}

// Company is a company profile.
type Company struct {
	ID               ObjectID                      `json:"id" required:"true" doc:"Internal company ID"`
	Name             string                        `json:"name" required:"true" doc:"Name of the company" example:"Acme"`
	URL              string                        `json:"url" required:"true" doc:"Webpage of the company" example:"acme.com"`
	Descriptions     map[string]CompanyDescription `json:"descriptions,omitempty"`
	FoundingYear     *int                          `json:"foundingYear,omitempty" doc:"Founding year" example:"2020"`
	Headquarters     *Location                     `json:"headquarters,omitempty" doc:"Company address"`
	EmployeeCount    *EmployeeCount                `json:"employeeCount,omitempty" doc:"Number of employees"`
	AdditionalURLs   map[string]string             `json:"additionalUrls,omitempty" doc:"Other web presences keyed by kind"`
	Revenue          map[string]CompanyRevenue     `json:"revenue,omitempty" doc:"Company revenue with currency, keyed by year"`
	Products         []string                      `json:"products,omitempty" doc:"List of company products"`
	CustomAttributes map[string]any                `json:"customAttributes,omitempty" doc:"Customer-defined attributes"`
}

// CompaniesSearchResult is one search hit.
type CompaniesSearchResult struct {
	Company  Company  `json:"company" required:"true"`
	Score    float64  `json:"score" doc:"Search score" example:"202.35745"`
	Snippets []string `json:"snippets" doc:"Snippets containing query keywords"`
}

// CompaniesSearchResults is a page of search hits.
type CompaniesSearchResults struct {
	Results []CompaniesSearchResult `json:"results" required:"true"`
	Total   int                     `json:"total" required:"true" doc:"Number of results" example:"1337"`
}

// CompanyPeer is a company similar to the requested one.
type CompanyPeer struct {
	Company Company `json:"company" required:"true"`
	Score   float64 `json:"score" doc:"Search score" example:"202.35745"`
}

// CompanyPeers is a page of peers.
type CompanyPeers struct {
	Results []CompanyPeer `json:"results" required:"true"`
	Total   int           `json:"total" required:"true" doc:"Number of results" example:"5"`
}
