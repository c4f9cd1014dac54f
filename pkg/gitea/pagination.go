package gitea

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/gritea/pkg/errors"
)

// Default page settings used by list endpoints.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Pagination selects one page of a list endpoint. Zero fields fall back to
// [DefaultPage] and [DefaultLimit].
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultPagination returns page 1 with 20 items.
func DefaultPagination() Pagination {
	return Pagination{Page: DefaultPage, Limit: DefaultLimit}
}

// Validate rejects negative values.
func (p Pagination) Validate() error {
	if p.Page < 0 || p.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "page and limit must be positive, got page=%d limit=%d", p.Page, p.Limit)
	}
	return nil
}

// Values renders the page and limit query parameters.
func (p Pagination) Values() url.Values {
	page, limit := p.Page, p.Limit
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}
