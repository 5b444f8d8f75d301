package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/xelth-com/mfgtrack/internal/models"
)

// ListOptions filters and pages a list call. Zero values mean "no filter".
// Status holds a frontend status and is translated per collection.
type ListOptions struct {
	Page         int
	Limit        int
	Status       string
	Search       string
	JobOrderID   string
	TechnicianID string
	DeviceID     string
}

// normalized fills defaults: page 1, limit 0 (everything)
func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 0 {
		o.Limit = 0
	}
	o.Search = strings.TrimSpace(o.Search)
	return o
}

// values encodes the options as backend query parameters.
// statusToBackend translates the status for the target collection; nil passes it through.
func (o ListOptions) values(statusToBackend func(string) string) url.Values {
	o = o.normalized()
	v := url.Values{}
	if o.Limit > 0 {
		v.Set("page", strconv.Itoa(o.Page))
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Status != "" {
		status := o.Status
		if statusToBackend != nil {
			status = statusToBackend(status)
		}
		v.Set("status", status)
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if o.JobOrderID != "" {
		v.Set("job_order_id", o.JobOrderID)
	}
	if o.TechnicianID != "" {
		v.Set("technician_id", o.TechnicianID)
	}
	if o.DeviceID != "" {
		v.Set("device_id", o.DeviceID)
	}
	return v
}

// paginate cuts one page out of an already filtered slice
func paginate[T any](items []T, o ListOptions) models.Page[T] {
	o = o.normalized()
	total := len(items)
	if o.Limit == 0 {
		return models.Page[T]{Items: items, Total: total, Page: 1, Limit: 0}
	}
	start, end := pageBounds(o.Page, o.Limit, total)
	return models.Page[T]{Items: items[start:end], Total: total, Page: o.Page, Limit: o.Limit}
}

// pageBounds returns the slice bounds of page within total items. Pages past
// the end are empty; the multiplication is skipped for them so it cannot overflow.
func pageBounds(page, limit, total int) (start, end int) {
	if page < 1 || limit <= 0 {
		return 0, total
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	if page > pages {
		return total, total
	}
	start = (page - 1) * limit
	if limit > total-start {
		return start, total
	}
	return start, start + limit
}

// filter keeps the items accepted by keep
func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// pageFromRows builds a page from a live list answer. Backend pagination
// metadata wins; without it the whole answer is one page.
func pageFromRows[T any](items []T, p *Pagination, o ListOptions) models.Page[T] {
	o = o.normalized()
	if p != nil {
		return models.Page[T]{Items: items, Total: p.Total, Page: p.Page, Limit: p.Limit}
	}
	if o.Limit > 0 && len(items) > o.Limit {
		// backend ignored paging: cut the page here
		return paginate(items, o)
	}
	return models.Page[T]{Items: items, Total: len(items), Page: o.Page, Limit: o.Limit}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
