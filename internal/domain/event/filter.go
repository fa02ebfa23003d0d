package event

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultCity is the city filter restored by a criteria reset.
const DefaultCity = "Sydney"

const dateLayout = "2006-01-02"

// FilterCriteria is the operator-editable filter for the events query.
// Dates are calendar dates in YYYY-MM-DD form; empty means unbounded.
type FilterCriteria struct {
	City     string `json:"city"`
	Q        string `json:"q"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

// DefaultCriteria returns the criteria a fresh console starts with.
func DefaultCriteria(city string) FilterCriteria {
	if strings.TrimSpace(city) == "" {
		city = DefaultCity
	}
	return FilterCriteria{City: city}
}

// Query is a composed events query, ready to be encoded.
type Query struct {
	Page     int
	PageSize int
	City     string
	Q        string
	From     *time.Time
	To       *time.Time
}

// BuildQuery composes a page-1 query from criteria. Text fields are trimmed
// and dropped when empty; date bounds are widened to whole UTC days.
func BuildQuery(c FilterCriteria, pageSize int) (Query, error) {
	q := Query{
		Page:     1,
		PageSize: pageSize,
		City:     strings.TrimSpace(c.City),
		Q:        strings.TrimSpace(c.Q),
	}
	if c.FromDate != "" {
		day, err := time.Parse(dateLayout, c.FromDate)
		if err != nil {
			return Query{}, fmt.Errorf("invalid from date %q: %w", c.FromDate, err)
		}
		from := day.UTC()
		q.From = &from
	}
	if c.ToDate != "" {
		day, err := time.Parse(dateLayout, c.ToDate)
		if err != nil {
			return Query{}, fmt.Errorf("invalid to date %q: %w", c.ToDate, err)
		}
		to := day.UTC().Add(24*time.Hour - time.Second)
		q.To = &to
	}
	return q, nil
}

// Values encodes the query the way the events endpoint expects it.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if q.City != "" {
		v.Set("city", q.City)
	}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.From != nil {
		v.Set("from", q.From.Format(time.RFC3339))
	}
	if q.To != nil {
		v.Set("to", q.To.Format(time.RFC3339))
	}
	return v
}
