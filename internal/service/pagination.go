package service

import "github.com/noah-isme/course-registry-api/internal/models"

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// paginate slices items for the requested page. Out of range pages yield an
// empty, non-nil slice.
func paginate[T any](items []T, page, size int) ([]T, *models.Pagination) {
	page, size = normalizePage(page, size)
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: len(items)}

	start := (page - 1) * size
	if start >= len(items) {
		return []T{}, pagination
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], pagination
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
