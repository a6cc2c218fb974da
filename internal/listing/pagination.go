package listing

import (
	"strconv"
	"strings"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
)

// TotalPages returns ceil(count/size). A non-positive size yields one page.
func TotalPages(count, size int) int {
	if count <= 0 {
		return 0
	}
	if size <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// ClampPage keeps page within [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns the requested page of items together with its metadata.
// The page number is clamped first.
func Paginate[T any](items []T, page, size int) ([]T, models.Pagination) {
	total := len(items)
	if size <= 0 {
		size = total
	}
	pages := TotalPages(total, size)
	page = ClampPage(page, pages)

	meta := models.Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: pages}
	if total == 0 {
		return []T{}, meta
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}

// Signature fingerprints the inputs that shape a view: the active filters,
// the sort order and the result count.
func Signature(filter EnrollmentFilter, order SortOrder, count int) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(filter.Student)),
		strings.ToLower(strings.TrimSpace(filter.Course)),
		string(filter.Status),
		string(order),
		strconv.Itoa(count),
	}
	return strings.Join(parts, "|")
}

// CountSignature fingerprints an unfiltered view by its size.
func CountSignature(count int) string {
	return strconv.Itoa(count)
}

// ResolvePage returns requested unless the view changed since the client
// last rendered it, in which case navigation restarts at page 1. An empty
// previous signature means the client has no prior view.
func ResolvePage(requested int, previous, current string) int {
	if previous != "" && previous != current {
		return 1
	}
	if requested < 1 {
		return 1
	}
	return requested
}
