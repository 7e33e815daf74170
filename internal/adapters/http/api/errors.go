package api

import (
	"errors"
	"net/http"

	"github.com/okian/firmograph/internal/adapters/backend"
	"github.com/okian/firmograph/internal/adapters/http/auth"
	"github.com/okian/firmograph/internal/domain/filter"
	"github.com/okian/firmograph/internal/domain/validation"
	"github.com/okian/firmograph/pkg/logger"
	"github.com/okian/firmograph/pkg/metrics"
)

// Sentinel kinds for API errors.
var (
	ErrPanic = errors.New("handler panicked")
)

// otherParam labels validation failures on parameters no route declares.
const otherParam = "other"

// declaredParams bounds the param label of the validation metric. Query keys
// come from the client and must never become label values unchecked.
var declaredParams = map[string]struct{}{
	companyIDVar:                 {},
	queryParam:                   {},
	"limit":                      {},
	"offset":                     {},
	filter.Added.Field():         {},
	filter.EmployeeCount.Field(): {},
	filter.FoundingYear.Field():  {},
	filter.Headquarters.Field():  {},
}

func paramLabel(f validation.FieldError) string {
	if p := f.Param(); p != "" {
		if _, ok := declaredParams[p]; ok {
			return p
		}
	}
	return otherParam
}

// validationErrorResponse is the 422 body: every failing parameter of the request.
type validationErrorResponse struct {
	Detail []validation.FieldError `json:"detail" required:"true"`
}

// respondError translates err into its HTTP response. It is the only place
// where domain and backend errors meet status codes.
func respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	ctx := r.Context()
	endpoint := routeName(r)

	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			metrics.RecordValidationFailure(endpoint, paramLabel(f), f.Type)
		}
		log.Debug(ctx, "request rejected", fields(r, endpoint, err)...)
		writeJSON(w, http.StatusUnprocessableEntity, validationErrorResponse{Detail: verr.Fields})

	case errors.Is(err, auth.ErrNotAuthenticated):
		metrics.RecordAuthFailure()
		writeDetail(w, http.StatusUnauthorized, auth.ErrNotAuthenticated.Error())

	case errors.Is(err, backend.ErrNotFound):
		writeDetail(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))

	case errors.Is(err, backend.ErrUnavailable):
		log.Warn(ctx, "backend unavailable", fields(r, endpoint, err)...)
		writeDetail(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))

	case errors.Is(err, backend.ErrUpstream):
		if ctx.Err() != nil {
			log.Debug(ctx, "client went away", fields(r, endpoint, err)...)
		} else {
			log.Error(ctx, "backend request failed", fields(r, endpoint, err)...)
		}
		writeDetail(w, http.StatusBadGateway, http.StatusText(http.StatusBadGateway))

	default:
		log.Error(ctx, "request failed", fields(r, endpoint, err)...)
		writeDetail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// fields are the log fields shared by every failure record.
func fields(r *http.Request, endpoint string, err error) []logger.Field {
	out := []logger.Field{logger.String("endpoint", endpoint), logger.Error(err)}
	if sub := auth.SubjectFromContext(r.Context()); sub != "" {
		out = append(out, logger.String("subject", sub))
	}
	return out
}
