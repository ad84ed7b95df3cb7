// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"blogicum/internal/cache"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// translate maps store errors onto application errors. Absent rows become
// NOT_FOUND and unique violations become VALIDATION_ERROR.
func translate(err error, resource string, id interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &models.AppError{Code: models.CodeValidation, Message: resource + " already exists", Err: err}
	}
	return err
}

// findByUniqueCached loads the T whose unique column equals value. Only the
// value-to-id mapping is cached under key; the row itself is always read
// from the database, so publication flags and deletions made outside this
// service take effect on the next request. A cached id that no longer
// matches is evicted and the lookup retried uncached.
func findByUniqueCached[T any](ctx context.Context, db *gorm.DB, kind, key string, ttl time.Duration, column, value string) (*T, error) {
	db = db.WithContext(ctx)

	var id uint
	err := cache.Aside(ctx, kind, key, &id, ttl, func() error {
		var ids []uint
		if err := db.Model(new(T)).Where(column+" = ?", value).Limit(1).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return gorm.ErrRecordNotFound
		}
		id = ids[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	var row T
	err = db.Where(column+" = ?", value).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cache.Invalidate(ctx, key)
		err = db.Where(column+" = ?", value).First(&row).Error
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
