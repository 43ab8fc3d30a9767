// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"offer-browser/internal/domain"
)

// ErrConfigMissing возвращается, когда параметры подключения не заданы. Запрос при этом не выполняется.
var ErrConfigMissing = errors.New("database connection is not configured")

// FetchError — ошибка чтения из хранилища. Error() отдаёт сообщение самого хранилища.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return "unknown fetch error"
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type OfferStorage interface {
	// ListOffers returns every offer, newest first.
	ListOffers(ctx context.Context) ([]domain.Offer, error)
}

// Unconfigured is used when DATABASE_URL is not set.
type Unconfigured struct{}

func (Unconfigured) ListOffers(context.Context) ([]domain.Offer, error) {
	return nil, ErrConfigMissing
}
