// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"offer-browser/internal/domain"
	"offer-browser/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listOffersQuery = `
	SELECT
		id,
		COALESCE(bank_name, ''),
		COALESCE(card_name, ''),
		COALESCE(merchant_name, ''),
		COALESCE(offer_details, ''),
		COALESCE(source_url, ''),
		COALESCE(disclaimer, ''),
		created_at
	FROM offer
	ORDER BY created_at DESC
`

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// Open создаёт пул по DSN. Пустой DSN — это storage.ErrConfigMissing, подключение не выполняется.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, storage.ErrConfigMissing
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return NewStorage(pool), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Storage) Close() {
	s.db.Close()
}

// === OfferStorage ===

// ListOffers выполняет один запрос без повторов и кэша.
func (s *Storage) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	rows, err := s.db.Query(ctx, listOffersQuery)
	if err != nil {
		return nil, &storage.FetchError{Err: err}
	}

	offers, err := pgx.CollectRows(rows, scanOffer)
	if err != nil {
		return nil, &storage.FetchError{Err: err}
	}

	slog.Debug("ListOffers completed", "count", len(offers))
	return offers, nil
}

func scanOffer(row pgx.CollectableRow) (domain.Offer, error) {
	var o domain.Offer
	err := row.Scan(
		&o.ID,
		&o.BankName,
		&o.CardName,
		&o.MerchantName,
		&o.OfferDetails,
		&o.SourceURL,
		&o.Disclaimer,
		&o.CreatedAt,
	)
	return o, err
}
