// Package pagination implements page/page_size list pagination with the
// {count, next, previous, results} envelope.
package pagination

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/apperr"
)

type Params struct {
	Page     int
	PageSize int
}

func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

// Parse reads page and page_size from the query. page_size is clamped to
// max; non-numeric or non-positive values fall back to the defaults.
func Parse(c *fiber.Ctx, defaultSize, maxSize int) (Params, error) {
	p := Params{Page: 1, PageSize: defaultSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperr.NotFound("Invalid page.")
		}
		p.Page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PageSize = min(n, maxSize)
		}
	}
	return p, nil
}

// Check rejects pages past the last one. The first page always exists.
func (p Params) Check(count int64) error {
	if p.Page > 1 && int64(p.Offset()) >= count {
		return apperr.NotFound("Invalid page.")
	}
	return nil
}

type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// New builds the envelope, with next/previous links carrying the rest of
// the request's query unchanged.
func New[T any](c *fiber.Ctx, p Params, count int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}
	if int64(p.Page*p.PageSize) < count {
		page.Next = link(c, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = link(c, p.Page-1)
	}
	return page
}

func link(c *fiber.Ctx, page int) *string {
	q := url.Values{}
	for k, v := range c.Queries() {
		q.Set(k, v)
	}
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	s := c.BaseURL() + c.Path()
	if enc := q.Encode(); enc != "" {
		s += "?" + enc
	}
	return &s
}
