package lifecycle

import "fmt"

// Pagination bounds
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var ErrInvalidPage = fmt.Errorf("%w: page must be >= 1 and limit between 1 and %d", ErrValidation, MaxPageLimit)

// PageRequest is a 1-based page of a listing. Zero values select the defaults.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize applies defaults and rejects out-of-range values
func (p PageRequest) Normalize() (PageRequest, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Page < 1 || p.Limit < 1 || p.Limit > MaxPageLimit {
		return PageRequest{}, ErrInvalidPage
	}
	return p, nil
}

// Offset is the number of rows to skip. Only valid on a normalized request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
