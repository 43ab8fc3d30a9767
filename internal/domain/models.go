// internal/domain/models.go
package domain

import "time"

// Offer — одна запись из таблицы offer. Пустые строки означают NULL или пустое значение.
type Offer struct {
	ID           int64     `json:"id"`
	BankName     string    `json:"bank_name"`
	CardName     string    `json:"card_name"`
	MerchantName string    `json:"merchant_name"`
	OfferDetails string    `json:"offer_details"`
	SourceURL    string    `json:"source_url"`
	Disclaimer   string    `json:"disclaimer,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
