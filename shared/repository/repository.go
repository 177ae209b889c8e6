package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors the handlers translate to HTTP statuses. Out-of-scope
// access is reported as ErrNotFound on purpose: a caller must not be able
// to distinguish a row outside their scope from a row that does not exist.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("capability not granted")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// translate maps gorm errors to the repository sentinels. Unique-constraint
// races are caught here, at the database layer, never by advisory
// existence checks alone.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// Pagination carries list paging state back to the caller.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func buildPagination(page, limit int, total int64) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// normalizePage clamps paging inputs to sane defaults.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
