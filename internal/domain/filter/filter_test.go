package filter_test

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/okian/firmograph/internal/domain/filter"
	"github.com/okian/firmograph/internal/domain/validation"
	. "github.com/smartystreets/goconvey/convey"
)

func mustQuery(raw string) url.Values {
	q, err := url.ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	return q
}

func fieldErrors(err error) []validation.FieldError {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func TestSpec_Resolve(t *testing.T) {
	Convey("Given the added date-time filter", t, func() {
		spec := filter.Added
		ts := time.Date(2022, 9, 15, 15, 53, 0, 0, time.UTC)

		Convey("When each declared operator is supplied alone", func() {
			for _, op := range filter.ComparisonOps {
				got, err := spec.Resolve(mustQuery("added[" + op + "]=2022-09-15T15:53:00Z"))

				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(got[op].Equal(ts), ShouldBeTrue)
			}
		})

		Convey("When only the bare field is supplied", func() {
			got, err := spec.Resolve(mustQuery("added=2022-09-15T15:53:00Z"))

			Convey("Then it is stored under the root key", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(got.Has(filter.Root), ShouldBeTrue)
				So(got[filter.Root].Equal(ts), ShouldBeTrue)
			})
		})

		Convey("When bare and bracketed forms are combined", func() {
			got, err := spec.Resolve(mustQuery("added=2022-09-15T15:53:00Z&added[gt]=2022-01-01T00:00:00Z&added[lte]=2022-12-01T00:00:00Z"))

			Convey("Then every key is kept independently", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got.Has(""), ShouldBeTrue)
				So(got.Has("gt"), ShouldBeTrue)
				So(got.Has("lte"), ShouldBeTrue)
				So(got.Has("gte"), ShouldBeFalse)
			})
		})

		Convey("When the field is absent", func() {
			got, err := spec.Resolve(mustQuery("limit=10&query=ai"))

			Convey("Then the result is empty and other keys are ignored", func() {
				So(err, ShouldBeNil)
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When a key only shares a prefix with the field", func() {
			got, err := spec.Resolve(mustQuery("addedBy=someone&added_at=x"))

			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("When an undeclared operator is supplied", func() {
			got, err := spec.Resolve(mustQuery("added[eq]=2022-09-15T15:53:00Z"))

			Convey("Then it is rejected, not dropped", func() {
				So(got, ShouldBeNil)
				So(errors.Is(err, validation.ErrInvalidRequest), ShouldBeTrue)
				fields := fieldErrors(err)
				So(fields, ShouldHaveLength, 1)
				So(fields[0].Loc, ShouldResemble, []string{"query", "added[eq]"})
				So(fields[0].Type, ShouldEqual, filter.ErrTypeOperator)
			})
		})

		Convey("When the brackets are empty or unbalanced", func() {
			_, err := spec.Resolve(mustQuery("added[]=2022-09-15&added[gt=2022-09-15"))

			So(fieldErrors(err), ShouldHaveLength, 2)
		})

		Convey("When a value fails coercion", func() {
			got, err := spec.Resolve(mustQuery("added[gt]=not-a-date&added[lt]=2022-09-15T15:53:00Z"))

			Convey("Then the whole filter fails naming the key", func() {
				So(got, ShouldBeNil)
				fields := fieldErrors(err)
				So(fields, ShouldHaveLength, 1)
				So(fields[0].Key(), ShouldEqual, "added[gt]")
				So(fields[0].Msg, ShouldEqual, "invalid datetime format")
				So(fields[0].Type, ShouldEqual, "value_error.datetime")
			})
		})

		Convey("When several keys are invalid", func() {
			_, err := spec.Resolve(mustQuery("added[gt]=x&added[lt]=y&added[eq]=z"))

			Convey("Then all of them are reported", func() {
				fields := fieldErrors(err)
				So(fields, ShouldHaveLength, 3)
				So(fields[0].Key(), ShouldEqual, "added[eq]")
				So(fields[1].Key(), ShouldEqual, "added[gt]")
				So(fields[2].Key(), ShouldEqual, "added[lt]")
			})
		})

		Convey("When a key is repeated", func() {
			got, err := spec.Resolve(mustQuery("added[gt]=2020-01-01&added[gt]=2022-09-15T15:53:00Z"))

			Convey("Then the last value wins", func() {
				So(err, ShouldBeNil)
				So(got["gt"].Equal(ts), ShouldBeTrue)
			})
		})

		Convey("When the same query is parsed twice", func() {
			q := mustQuery("added=2022-09-15&added[gte]=1663257180")
			first, err1 := spec.Resolve(q)
			second, err2 := spec.Resolve(q)

			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(second, ShouldResemble, first)
		})
	})

	Convey("Given the integer and string filters", t, func() {
		Convey("employeeCount[gte]=500 resolves to an integer", func() {
			got, err := filter.EmployeeCount.Resolve(mustQuery("employeeCount[gte]=500"))

			So(err, ShouldBeNil)
			So(got, ShouldResemble, filter.Parsed[int]{"gte": 500})
		})

		Convey("employeeCount[lt]=many is rejected", func() {
			_, err := filter.EmployeeCount.Resolve(mustQuery("employeeCount[lt]=many"))

			fields := fieldErrors(err)
			So(fields, ShouldHaveLength, 1)
			So(fields[0].Key(), ShouldEqual, "employeeCount[lt]")
			So(fields[0].Type, ShouldEqual, "type_error.integer")
		})

		Convey("headquarters[country]=Germany resolves to a string", func() {
			got, err := filter.Headquarters.Resolve(mustQuery("headquarters[country]=Germany"))

			So(err, ShouldBeNil)
			So(got, ShouldResemble, filter.Parsed[string]{"country": "Germany"})
		})

		Convey("headquarters[gt] is not a location operator", func() {
			_, err := filter.Headquarters.Resolve(mustQuery("headquarters[gt]=Berlin"))

			So(fieldErrors(err), ShouldHaveLength, 1)
		})
	})
}

func TestSpec_Doc(t *testing.T) {
	Convey("Given a declared filter", t, func() {
		doc := filter.Added.Doc()

		Convey("Then its documentation lists the root and bracket keys", func() {
			So(doc.Field, ShouldEqual, "added")
			So(doc.Format, ShouldEqual, "date-time")
			So(doc.Example, ShouldEqual, "2022-09-15T15:53:00Z")
			So(doc.Keys(), ShouldResemble, []string{"added", "added[gt]", "added[gte]", "added[lt]", "added[lte]"})
		})

		Convey("And mutating the copy does not affect the spec", func() {
			doc.Operators[0] = "eq"
			So(filter.Added.Doc().Operators[0], ShouldEqual, "gt")
		})
	})

	Convey("Given an invalid declaration", t, func() {
		So(func() { filter.Int("", filter.ComparisonOps) }, ShouldPanic)
		So(func() { filter.New("x", filter.Value[int]{}, nil) }, ShouldPanic)
	})
}
