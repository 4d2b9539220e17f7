package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// DefaultExportLimit caps unpaginated exports. Exceeding it fails the
	// request outright instead of silently truncating.
	DefaultExportLimit = 50000
)

const defaultSortField = "created_at"

// sortFields is the allow-list of sortable booking columns. Unknown fields
// silently fall back to the default instead of erroring.
var sortFields = map[string]struct{}{
	"arrival_date":   {},
	"leaving_date":   {},
	"status":         {},
	"user_type":      {},
	"created_at":     {},
	"apartment_name": {},
	"user_name":      {},
}

type ListOptions struct {
	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
}

type ListResult struct {
	Bookings   []*domainbooking.Booking
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ExportArchiver receives a snapshot of each export for audit/archival.
// Optional and best-effort.
type ExportArchiver interface {
	Archive(ctx context.Context, key string, payload []byte) error
}

// List returns one page of bookings plus the total of the full filtered set.
func (s *Service) List(ctx context.Context, filter domainbooking.Filter, opts ListOptions) (*ListResult, error) {
	page := opts.Page
	if page == 0 {
		page = DefaultPage
	}
	if page < 1 {
		return nil, domainbooking.ErrInvalidPage
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, domainbooking.ErrInvalidLimit
	}

	q := domainbooking.ListQuery{
		Filter:   normalizeFilter(filter),
		SortBy:   normalizeSort(opts.SortBy),
		SortDesc: opts.SortDesc,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}
	items, total, err := s.Bookings.List(ctx, q)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResult{
		Bookings:   items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Export returns the full filtered set, unpaginated, up to the export
// ceiling. The row count is checked with the same predicates before the
// unbounded read.
func (s *Service) Export(ctx context.Context, filter domainbooking.Filter, sortBy string, sortDesc bool) ([]*domainbooking.Booking, error) {
	ceiling := s.ExportLimit
	if ceiling <= 0 {
		ceiling = DefaultExportLimit
	}

	q := domainbooking.ListQuery{
		Filter:   normalizeFilter(filter),
		SortBy:   normalizeSort(sortBy),
		SortDesc: sortDesc,
		Limit:    1,
	}
	_, total, err := s.Bookings.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if total > int64(ceiling) {
		return nil, fmt.Errorf("%w: %d rows, ceiling %d", domainbooking.ErrExportLimit, total, ceiling)
	}

	q.Limit = 0
	items, _, err := s.Bookings.List(ctx, q)
	if err != nil {
		return nil, err
	}
	s.archiveExport(ctx, items)
	return items, nil
}

func (s *Service) archiveExport(ctx context.Context, items []*domainbooking.Booking) {
	if s.Archiver == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		s.log().Warn("export snapshot marshal failed", "error", err)
		return
	}
	key := fmt.Sprintf("bookings/export-%s.json", s.now().UTC().Format("20060102T150405Z"))
	if err := s.Archiver.Archive(ctx, key, payload); err != nil {
		s.log().Warn("export snapshot archive failed", "key", key, "error", err)
	}
}

func normalizeFilter(f domainbooking.Filter) domainbooking.Filter {
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	// Phase scoping is meaningless without a village.
	if f.VillageID == 0 {
		f.Phase = 0
	}
	return f
}

func normalizeSort(field string) string {
	field = strings.ToLower(strings.TrimSpace(field))
	if _, ok := sortFields[field]; !ok {
		return defaultSortField
	}
	return field
}
