package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/firmograph/internal/adapters/backend"
	"github.com/okian/firmograph/internal/adapters/http/api"
	"github.com/okian/firmograph/internal/adapters/http/auth"
	"github.com/okian/firmograph/internal/adapters/http/openapi"
	"github.com/okian/firmograph/internal/domain/filter"
	"github.com/okian/firmograph/internal/domain/model"
	"github.com/okian/firmograph/pkg/metrics"
)

const companyID = "5ecd2d2d0faf391eadb211a7"

// mockBackend records the last query and answers with err when set.
type mockBackend struct {
	err   error
	panic bool
	calls int

	search model.SearchQuery
	id     model.ObjectID
	peers  model.PeersQuery
	feed   model.FeedQuery
}

func (m *mockBackend) SearchCompanies(_ context.Context, q model.SearchQuery) (model.CompaniesSearchResults, error) {
	m.calls++
	m.search = q
	if m.panic {
		panic("boom")
	}
	if m.err != nil {
		return model.CompaniesSearchResults{}, m.err
	}
	return model.CompaniesSearchResults{
		Results: []model.CompaniesSearchResult{{Company: model.Company{ID: companyID, Name: "Acme", URL: "acme.com"}, Score: 1.5}},
		Total:   1,
	}, nil
}

func (m *mockBackend) GetCompany(_ context.Context, id model.ObjectID) (model.Company, error) {
	m.calls++
	m.id = id
	if m.err != nil {
		return model.Company{}, m.err
	}
	return model.Company{ID: id, Name: "Acme", URL: "acme.com"}, nil
}

func (m *mockBackend) ListPeers(_ context.Context, q model.PeersQuery) (model.CompanyPeers, error) {
	m.calls++
	m.peers = q
	return model.CompanyPeers{Results: []model.CompanyPeer{}}, m.err
}

func (m *mockBackend) ListNews(_ context.Context, q model.FeedQuery) (model.NewsArticles, error) {
	m.calls++
	m.feed = q
	return model.NewsArticles{Results: []model.NewsArticle{}}, m.err
}

func (m *mockBackend) ListJobPostings(_ context.Context, q model.FeedQuery) (model.JobPostings, error) {
	m.calls++
	m.feed = q
	return model.JobPostings{Results: []model.JobPosting{}}, m.err
}

func (m *mockBackend) ListFundingRounds(_ context.Context, q model.FeedQuery) (model.FundingRounds, error) {
	m.calls++
	m.feed = q
	return model.FundingRounds{Results: []model.FundingRound{}}, m.err
}

type validationBody struct {
	Detail []struct {
		Loc  []string `json:"loc"`
		Msg  string   `json:"msg"`
		Type string   `json:"type"`
	} `json:"detail"`
}

func (b validationBody) locs() []string {
	out := make([]string, len(b.Detail))
	for i, d := range b.Detail {
		out[i] = fmt.Sprint(d.Loc)
	}
	return out
}

func newRouter(b backend.Backend) *mux.Router {
	r := mux.NewRouter()
	api.NewServer(b).Register(context.Background(), r)
	return r
}

func do(r http.Handler, method, target string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	if authed {
		req.Header.Set("Authorization", "Bearer test-token")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detail(w *httptest.ResponseRecorder) string {
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Detail
}

func invalid(w *httptest.ResponseRecorder) validationBody {
	var body validationBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestInfrastructureRoutes(t *testing.T) {
	Convey("Given a registered server", t, func() {
		r := newRouter(&mockBackend{})

		Convey("Health is public", func() {
			w := do(r, http.MethodGet, "/healthz", false)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Metrics are exposed", func() {
			do(r, http.MethodGet, "/healthz", false)
			w := do(r, http.MethodGet, "/metrics", false)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "firmograph_api_http_requests_total")
		})

		Convey("A request ID is generated when absent", func() {
			w := do(r, http.MethodGet, "/healthz", false)
			So(w.Header().Get(api.RequestIDHeader), ShouldHaveLength, 36)
		})

		Convey("A caller's request ID is echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("Unknown paths answer with a JSON 404", func() {
			w := do(r, http.MethodGet, "/v2/nothing", true)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(detail(w), ShouldEqual, "Not Found")
		})

		Convey("Unsupported methods answer with 405", func() {
			w := do(r, http.MethodPost, "/v1/companies?query=x", true)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestAuthentication(t *testing.T) {
	Convey("Given a request without a bearer token", t, func() {
		mb := &mockBackend{}
		r := newRouter(mb)

		for _, target := range []string{
			"/v1/companies?query=acme",
			"/v1/companies/" + companyID,
			"/v1/companies/not-an-id/news?added[foo]=x",
		} {
			w := do(r, http.MethodGet, target, false)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get("WWW-Authenticate"), ShouldEqual, "Bearer")
			So(detail(w), ShouldEqual, auth.ErrNotAuthenticated.Error())
		}

		Convey("The backend is never reached", func() {
			So(mb.calls, ShouldEqual, 0)
		})
	})
}

func TestSearchCompanies(t *testing.T) {
	Convey("Given the search route", t, func() {
		mb := &mockBackend{}
		r := newRouter(mb)

		Convey("Valid parameters are resolved and forwarded", func() {
			w := do(r, http.MethodGet,
				"/v1/companies?query=acme&employeeCount[gte]=10&employeeCount[lt]=500&headquarters[country]=Germany&foundingYear=2015&limit=5", true)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(mb.search.Query, ShouldEqual, "acme")
			So(mb.search.EmployeeCount, ShouldResemble, filter.Parsed[int]{"gte": 10, "lt": 500})
			So(mb.search.Headquarters, ShouldResemble, filter.Parsed[string]{"country": "Germany"})
			So(mb.search.FoundingYear, ShouldResemble, filter.Parsed[int]{filter.Root: 2015})
			So(mb.search.Limit, ShouldEqual, 5)
			So(mb.search.Offset, ShouldEqual, 0)

			var res model.CompaniesSearchResults
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Total, ShouldEqual, 1)
			So(res.Results[0].Company.Name, ShouldEqual, "Acme")
		})

		Convey("Absent filters are empty and pagination uses defaults", func() {
			w := do(r, http.MethodGet, "/v1/companies?query=acme", true)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(mb.search.EmployeeCount, ShouldBeEmpty)
			So(mb.search.Headquarters, ShouldBeEmpty)
			So(mb.search.Limit, ShouldEqual, 20)
		})

		Convey("Every invalid parameter is reported in one 422", func() {
			w := do(r, http.MethodGet,
				"/v1/companies?employeeCount[gt]=abc&headquarters[zip]=10999&limit=301&offset=-1", true)

			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			body := invalid(w)
			So(body.locs(), ShouldResemble, []string{
				"[query query]",
				"[query headquarters[zip]]",
				"[query employeeCount[gt]]",
				"[query limit]",
				"[query offset]",
			})
			So(body.Detail[0].Type, ShouldEqual, "value_error.missing")
			So(body.Detail[1].Type, ShouldEqual, filter.ErrTypeOperator)
			So(body.Detail[2].Type, ShouldEqual, "type_error.integer")
			So(body.Detail[3].Type, ShouldEqual, "value_error.number.not_le")
			So(body.Detail[4].Type, ShouldEqual, "value_error.number.not_ge")
			So(mb.calls, ShouldEqual, 0)
		})

		Convey("A panicking backend yields a 500", func() {
			mb.panic = true
			w := do(r, http.MethodGet, "/v1/companies?query=acme", true)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(detail(w), ShouldEqual, "Internal Server Error")
		})
	})
}

func TestCompanyRoutes(t *testing.T) {
	Convey("Given the company routes", t, func() {
		mb := &mockBackend{}
		r := newRouter(mb)

		Convey("The company ID is normalized to lower case", func() {
			w := do(r, http.MethodGet, "/v1/companies/5ECD2D2D0FAF391EADB211A7", true)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(mb.id, ShouldEqual, model.ObjectID(companyID))
		})

		Convey("A malformed company ID is a path validation error", func() {
			w := do(r, http.MethodGet, "/v1/companies/xyz", true)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			body := invalid(w)
			So(body.locs(), ShouldResemble, []string{"[path companyId]"})
			So(body.Detail[0].Type, ShouldEqual, "value_error.objectid")
		})

		Convey("Peers use their own pagination bounds", func() {
			w := do(r, http.MethodGet, "/v1/companies/"+companyID+"/peers", true)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(mb.peers.Limit, ShouldEqual, 5)

			w = do(r, http.MethodGet, "/v1/companies/"+companyID+"/peers?limit=51", true)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(invalid(w).Detail[0].Msg, ShouldEqual, "ensure this value is less than or equal to 50")
		})

		Convey("Feeds resolve the added filter", func() {
			for _, feed := range []string{"news", "job-posts", "funding-rounds"} {
				w := do(r, http.MethodGet,
					"/v1/companies/"+companyID+"/"+feed+"?added[gt]=2022-09-15T15:53:00Z&added[lte]=1663257180", true)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(mb.feed.CompanyID, ShouldEqual, model.ObjectID(companyID))
				So(mb.feed.Added["gt"].Equal(time.Date(2022, 9, 15, 15, 53, 0, 0, time.UTC)), ShouldBeTrue)
				So(mb.feed.Added["lte"].Equal(time.Unix(1663257180, 0)), ShouldBeTrue)
			}
		})

		Convey("A bad ID and a bad filter are reported together", func() {
			w := do(r, http.MethodGet, "/v1/companies/nope/news?added[foo]=x&added[gt]=yesterday", true)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(invalid(w).locs(), ShouldResemble, []string{
				"[path companyId]",
				"[query added[foo]]",
				"[query added[gt]]",
			})
			So(invalid(w).Detail[2].Type, ShouldEqual, "value_error.datetime")
		})
	})
}

// validationSeries returns the label sets of the validation-failure counter
// for endpoint.
func validationSeries(endpoint string) []map[string]string {
	families, _ := metrics.GetRegistry().Gather()
	var out []map[string]string
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), "validation_failures_total") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["endpoint"] == endpoint {
				out = append(out, labels)
			}
		}
	}
	return out
}

func TestValidationMetricLabels(t *testing.T) {
	Convey("Given requests with client-chosen filter subscripts", t, func() {
		r := newRouter(&mockBackend{})

		for i := 0; i < 50; i++ {
			w := do(r, http.MethodGet, fmt.Sprintf("/v1/companies/%s/job-posts?added[junk%d]=x", companyID, i), true)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		}
		before := len(validationSeries("get_company_job_posts"))

		for _, key := range []string{"added[other1]", "added[gt", "added[]"} {
			w := do(r, http.MethodGet, "/v1/companies/"+companyID+"/job-posts?"+key+"=x", true)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		}

		Convey("The param label is the declared field, so no series is added", func() {
			series := validationSeries("get_company_job_posts")
			So(before, ShouldEqual, 1)
			So(series, ShouldHaveLength, before)
			So(series[0]["param"], ShouldEqual, "added")
		})

		Convey("Ordinary parameters keep their own label", func() {
			w := do(r, http.MethodGet, "/v1/companies/"+companyID+"/job-posts?limit=abc", true)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			params := map[string]bool{}
			for _, l := range validationSeries("get_company_job_posts") {
				params[l["param"]] = true
			}
			So(params["limit"], ShouldBeTrue)
			So(params, ShouldHaveLength, 2)
		})
	})
}

func TestBackendErrors(t *testing.T) {
	Convey("Given a failing backend", t, func() {
		cases := []struct {
			err    error
			status int
			detail string
		}{
			{fmt.Errorf("%w: companies/get", backend.ErrNotFound), http.StatusNotFound, "Not Found"},
			{fmt.Errorf("%w: status 500", backend.ErrUpstream), http.StatusBadGateway, "Bad Gateway"},
			{backend.ErrUnavailable, http.StatusServiceUnavailable, "Service Unavailable"},
			{errors.New("surprise"), http.StatusInternalServerError, "Internal Server Error"},
		}
		for _, tc := range cases {
			r := newRouter(&mockBackend{err: tc.err})
			w := do(r, http.MethodGet, "/v1/companies/"+companyID, true)

			So(w.Code, ShouldEqual, tc.status)
			So(detail(w), ShouldEqual, tc.detail)
		}

		Convey("The unconfigured backend answers 503", func() {
			r := newRouter(backend.Unconfigured{})
			w := do(r, http.MethodGet, "/v1/companies/"+companyID+"/funding-rounds", true)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestDocument(t *testing.T) {
	Convey("Given the generated API reference", t, func() {
		s := api.NewServer(&mockBackend{}, api.WithAuthFlow(auth.Flow{
			AuthorizationURL: "https://auth.example.com/authorize",
			TokenURL:         "https://auth.example.com/token",
			ClientID:         "docs-client",
		}))
		doc := s.Document(openapi.Info{Title: "Firmograph API", Version: "1.0.0"})

		Convey("Every route is documented", func() {
			So(doc.Paths, ShouldHaveLength, len(s.Routes()))
			for _, rt := range s.Routes() {
				item := doc.Paths[api.CompaniesPrefix+rt.Path]
				So(item, ShouldNotBeNil)
				So(item.Get.OperationID, ShouldEqual, rt.Name)
				So(item.Get.Security, ShouldHaveLength, 1)
			}
		})

		Convey("Shared and route-level error responses are merged", func() {
			get := doc.Paths["/v1/companies/{companyId}"].Get
			So(get.Responses, ShouldContainKey, "200")
			So(get.Responses, ShouldContainKey, "401")
			So(get.Responses, ShouldContainKey, "422")
			So(get.Responses, ShouldContainKey, "502")
			So(get.Responses, ShouldContainKey, "503")
			So(get.Responses["404"].Description, ShouldEqual, "Company not found")

			search := doc.Paths["/v1/companies"].Get
			So(search.Responses, ShouldNotContainKey, "404")
			So(search.Responses["422"].Content["application/json"].Schema.Ref, ShouldEqual, "#/components/schemas/HTTPValidationError")
		})

		Convey("Filters are documented once under their root name", func() {
			var names []string
			for _, p := range doc.Paths["/v1/companies/{companyId}/news"].Get.Parameters {
				names = append(names, p.Name)
			}
			So(names, ShouldResemble, []string{"companyId", "added", "limit", "offset"})
			added := doc.Paths["/v1/companies/{companyId}/news"].Get.Parameters[1]
			So(added.Description, ShouldContainSubstring, "added[gte]")
			So(added.Schema.Format, ShouldEqual, "date-time")
		})

		Convey("The oauth2 scheme and component schemas are present", func() {
			So(doc.Components.SecuritySchemes, ShouldContainKey, auth.SchemeName)
			So(doc.Components.SecuritySchemes[auth.SchemeName].Description, ShouldContainSubstring, "docs-client")
			So(doc.Components.Schemas, ShouldContainKey, "Company")
			So(doc.Components.Schemas, ShouldContainKey, "HTTPException")
			So(doc.Components.Schemas["NewsArticle"].Properties["type"].Enum, ShouldResemble, []any{"news", "press release"})
		})
	})
}
