package handlers

import (
	"strconv"
	"strings"

	"diningroom/internal/apperror"
)

const maxPageLimit = 200

// parsePaginationParams reads page and limit. Both are optional; a missing
// limit means the whole list.
func parsePaginationParams(pageStr, limitStr string) (int, int, error) {
	page := 1
	limit := 0

	if v := strings.TrimSpace(pageStr); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			return 0, 0, apperror.Validation("page must be a positive integer")
		}
		page = p
	}

	if v := strings.TrimSpace(limitStr); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > maxPageLimit {
			return 0, 0, apperror.Validation("limit must be between 1 and %d", maxPageLimit)
		}
		limit = l
	}

	return page, limit, nil
}

// paginate returns the requested window of items, clamped to its bounds.
func paginate[T any](items []T, page, limit int) []T {
	if limit == 0 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
