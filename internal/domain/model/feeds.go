package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// NewsArticleType classifies a news article.
type NewsArticleType string

// Article types.
const (
	NewsArticleTypeNews         NewsArticleType = "news"
	NewsArticleTypePressRelease NewsArticleType = "press release"
)

// NewsArticleTypes lists every valid article type.
var NewsArticleTypes = []NewsArticleType{NewsArticleTypeNews, NewsArticleTypePressRelease}

// UnmarshalJSON rejects unknown article types.
func (t *NewsArticleType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, known := range NewsArticleTypes {
		if NewsArticleType(s) == known {
			*t = known
			return nil
		}
	}
	return fmt.Errorf("unknown news article type %q", s)
}

// NewsArticle mentions a company.
type NewsArticle struct {
	CompanyID ObjectID        `json:"companyId" required:"true" doc:"Internal company ID"`
	URL       string          `json:"url" required:"true" doc:"Article URL"`
	Type      NewsArticleType `json:"type" required:"true" doc:"Type of article"`
	Published time.Time       `json:"published" required:"true" doc:"When the article was published"`
	Snippet   string          `json:"snippet" required:"true" doc:"Snippet of the article mentioning the company"`
	Language  *string         `json:"language,omitempty" doc:"Original language of the article in ISO 639 code"`
	Labels    []Label         `json:"labels,omitempty"`
	Title     string          `json:"title" required:"true" doc:"Article title"`
	Added     time.Time       `json:"added" required:"true" doc:"When the article was added"`
}

// NewsArticles is a page of news articles.
type NewsArticles struct {
	Results []NewsArticle `json:"results" required:"true"`
	Total   int           `json:"total" required:"true" doc:"Number of results"`
}

// JobPosting is an open position published by a company.
type JobPosting struct {
	CompanyID      ObjectID  `json:"companyId" required:"true" doc:"Internal company ID"`
	URL            string    `json:"url" required:"true" doc:"Job posting URL"`
	Published      time.Time `json:"published" required:"true" doc:"When the job post was published"`
	Location       *string   `json:"location,omitempty" doc:"Location of the position"`
	JobDescription *string   `json:"jobDescription,omitempty" doc:"Description of the position"`
	Language       *string   `json:"language,omitempty" doc:"Original language of the job posting"`
	Title          string    `json:"title" required:"true" doc:"Position title"`
	Added          time.Time `json:"added" required:"true" doc:"When the job posting was added"`
}

// JobPostings is a page of job postings.
type JobPostings struct {
	Results []JobPosting `json:"results" required:"true"`
	Total   int          `json:"total" required:"true" doc:"Number of results"`
}

// FundingRound is a financing event of a company.
type FundingRound struct {
	CompanyID ObjectID  `json:"companyId" required:"true" doc:"Internal company ID"`
	Type      *string   `json:"type,omitempty" doc:"Round type" example:"Series A"`
	Amount    *int64    `json:"amount,omitempty" doc:"Amount raised" example:"12000000"`
	Currency  *string   `json:"currency,omitempty" doc:"Currency of the amount" example:"EUR"`
	Investors []string  `json:"investors,omitempty" doc:"Participating investors"`
	Published time.Time `json:"published" required:"true" doc:"When the round was announced"`
	URL       *string   `json:"url,omitempty" doc:"Source URL"`
	Added     time.Time `json:"added" required:"true" doc:"When the round was added"`
}

// FundingRounds is a page of funding rounds.
type FundingRounds struct {
	Results []FundingRound `json:"results" required:"true"`
	Total   int            `json:"total" required:"true" doc:"Number of results"`
}

// HTTPException is the body of every non-validation error response.
type HTTPException struct {
	Detail string `json:"detail" required:"true"`
}
