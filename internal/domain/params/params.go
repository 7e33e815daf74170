// Package params resolves the ordinary (non-bracket) request parameters of the
// companies API into typed values, reporting failures as validation errors.
package params

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/firmograph/internal/domain/model"
	"github.com/okian/firmograph/internal/domain/validation"
)

// Validation error types.
const (
	ErrTypeMissing  = "value_error.missing"
	ErrTypeInteger  = "type_error.integer"
	ErrTypeNotGE    = "value_error.number.not_ge"
	ErrTypeNotLE    = "value_error.number.not_le"
	ErrTypeObjectID = "value_error.objectid"
)

// Default pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 300
)

// LimitOffset declares the limit/offset pair of a listing route.
type LimitOffset struct {
	DefaultLimit int
	MaxLimit     int
}

// NewLimitOffset declares pagination with the given default and maximum limit.
func NewLimitOffset(defaultLimit, maxLimit int) LimitOffset {
	if defaultLimit < 0 || maxLimit < defaultLimit {
		panic(fmt.Sprintf("params: invalid limit bounds %d/%d", defaultLimit, maxLimit))
	}
	return LimitOffset{DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// Resolve reads limit and offset from q. Both are checked before returning so
// that two bad values yield two field errors.
func (lo LimitOffset) Resolve(q url.Values) (model.Page, error) {
	var errs []validation.FieldError
	page := model.Page{Limit: lo.DefaultLimit}

	if raw, ok := last(q, "limit"); ok {
		n, ferr := boundedInt("limit", raw, 0, lo.MaxLimit)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			page.Limit = n
		}
	}
	if raw, ok := last(q, "offset"); ok {
		n, ferr := boundedInt("offset", raw, 0, -1)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			page.Offset = n
		}
	}
	if len(errs) > 0 {
		return model.Page{}, validation.New(errs...)
	}
	return page, nil
}

// boundedInt parses raw and checks min <= n and, when max >= 0, n <= max.
func boundedInt(key, raw string, min, max int) (int, *validation.FieldError) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		ferr := validation.Query(key, "value is not a valid integer", ErrTypeInteger)
		return 0, &ferr
	}
	if n < min {
		ferr := validation.Query(key, fmt.Sprintf("ensure this value is greater than or equal to %d", min), ErrTypeNotGE)
		return 0, &ferr
	}
	if max >= 0 && n > max {
		ferr := validation.Query(key, fmt.Sprintf("ensure this value is less than or equal to %d", max), ErrTypeNotLE)
		return 0, &ferr
	}
	return n, nil
}

// RequiredString returns the query parameter name, failing when it is absent.
func RequiredString(q url.Values, name string) (string, error) {
	v, ok := last(q, name)
	if !ok {
		return "", validation.New(validation.Query(name, "field required", ErrTypeMissing))
	}
	return v, nil
}

// PathObjectID validates the path variable name.
func PathObjectID(name, raw string) (model.ObjectID, error) {
	id, err := model.ParseObjectID(raw)
	if err != nil {
		return "", validation.New(validation.Path(name, err.Error(), ErrTypeObjectID))
	}
	return id, nil
}

// last returns the final value of key, matching the filter resolver.
func last(q url.Values, key string) (string, bool) {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}
