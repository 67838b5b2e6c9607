// Package web holds what every resource handler shares: the dependency
// set and request decoding helpers.
package web

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/config"
	"pos-backend/internal/media"
	"pos-backend/internal/policy"
	"pos-backend/internal/store"
	"pos-backend/internal/validation"
)

type Env struct {
	Config    *config.Config
	Log       *slog.Logger
	Store     *store.Store
	Guard     *access.Guard
	Validator *validation.Validator
	Media     *media.Storage
}

// Partial reports whether the request is a PATCH, where omitted fields keep
// their stored value.
func Partial(c *fiber.Ctx) bool {
	return c.Method() == fiber.MethodPatch
}

// BindJSON decodes the JSON body into dst.
func BindJSON(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return apperr.BadRequest("parse_error", "Malformed request body: "+err.Error())
	}
	return nil
}

// IsMultipart reports whether the body is multipart/form-data.
func IsMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// Form gives typed access to the values of a multipart body.
type Form struct {
	values map[string][]string
	errs   []apperr.FieldError
}

func ParseForm(c *fiber.Ctx) (*Form, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.BadRequest("parse_error", "Malformed multipart body.")
	}
	return &Form{values: mf.Value}, nil
}

func (f *Form) String(key string) *string {
	v, ok := f.values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	return &v[0]
}

func (f *Form) Uint(key string) *uint {
	s := f.String(key)
	if s == nil {
		return nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		f.errs = append(f.errs, apperr.FieldError{Field: key, Code: "invalid", Message: "A valid integer is required."})
		return nil
	}
	u := uint(n)
	return &u
}

// Uints reads a repeated field; a single comma separated value is split.
func (f *Form) Uints(key string) *[]uint {
	raw, ok := f.values[key]
	if !ok {
		return nil
	}
	if len(raw) == 1 && strings.Contains(raw[0], ",") {
		raw = strings.Split(raw[0], ",")
	}
	out := make([]uint, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			f.errs = append(f.errs, apperr.FieldError{Field: key, Code: "invalid", Message: "A valid integer is required."})
			return nil
		}
		out = append(out, uint(n))
	}
	return &out
}

// Err reports values that failed to parse.
func (f *Form) Err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return apperr.Validation(f.errs...)
}

// Missing collects "required" errors for the named fields whose value is
// absent. On PATCH nothing is required.
type Missing struct {
	partial bool
	errs    []apperr.FieldError
}

func Require(c *fiber.Ctx) *Missing {
	return &Missing{partial: Partial(c)}
}

func (m *Missing) Check(field string, present bool) *Missing {
	if !m.partial && !present {
		m.errs = append(m.errs, apperr.FieldError{Field: field, Code: "required", Message: "This field is required."})
	}
	return m
}

func (m *Missing) Err() error {
	if len(m.errs) == 0 {
		return nil
	}
	return apperr.Validation(m.errs...)
}

// Immutable rejects a change of a record's restaurant.
func Immutable(current uint, requested *uint) error {
	if requested != nil && *requested != current {
		return apperr.Validation(apperr.FieldError{
			Field:   "restaurant",
			Code:    "immutable",
			Message: "The restaurant of an existing record cannot be changed.",
		})
	}
	return nil
}

// RestaurantIDs is the restaurant set named by a create payload; 0 counts
// as absent.
func RestaurantIDs(id *uint) []uint {
	if id == nil || *id == 0 {
		return nil
	}
	return []uint{*id}
}

// Count stores a decoded integer field. Negative input becomes 0, which the
// validator rejects as min_value.
func Count(v int) uint {
	if v < 0 {
		return 0
	}
	return uint(v)
}

// RestaurantRequired answers missing_restaurant for a create without a
// restaurant. The policy lets superusers through, the row still needs one.
func RestaurantRequired(id *uint) error {
	if id == nil || *id == 0 {
		return policy.Decision{Reason: policy.ReasonMissingRestaurant}.Err()
	}
	return nil
}
