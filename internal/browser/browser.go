// internal/browser/browser.go
package browser

import (
	"net/url"
	"strings"
	"time"

	"offer-browser/internal/domain"

	"github.com/dustin/go-humanize"
)

const (
	// AllTab — синтетическая вкладка, показывает весь список.
	AllTab = "All"
	// OtherBank — ключ группировки для оффера без банка.
	OtherBank = "Other"

	// Подстановки при отображении. Для банка здесь НЕ "Other": это разные значения.
	NoBankLabel     = "Not specified"
	NoCardLabel     = "All Cards"
	NoMerchantLabel = "General Offer"

	EmptyTabMessage   = "No offers found for this bank."
	EmptyStoreMessage = "No offers found in the database yet."
	NeverSynced       = "N/A"
)

// Card is the display form of one offer.
type Card struct {
	ID         int64  `json:"id"`
	Merchant   string `json:"merchant"`
	Details    string `json:"details"`
	Bank       string `json:"bank"`
	Card       string `json:"card"`
	SourceURL  string `json:"source_url"`
	Linkable   bool   `json:"linkable"`
	Disclaimer string `json:"disclaimer,omitempty"`
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// BankKey returns the value an offer is grouped and filtered by.
func BankKey(o domain.Offer) string {
	return coalesce(o.BankName, OtherBank)
}

// ComputeBankTabs returns "All" followed by the distinct bank keys in order of first appearance.
func ComputeBankTabs(offers []domain.Offer) []string {
	tabs := []string{AllTab}
	seen := make(map[string]struct{}, len(offers))
	for _, o := range offers {
		key := BankKey(o)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tabs = append(tabs, key)
	}
	return tabs
}

// Filter keeps the relative order of offers. For "All" the input slice itself is returned.
func Filter(offers []domain.Offer, selection string) []domain.Offer {
	if selection == AllTab {
		return offers
	}
	filtered := make([]domain.Offer, 0)
	for _, o := range offers {
		if BankKey(o) == selection {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

func Render(o domain.Offer) Card {
	return Card{
		ID:         o.ID,
		Merchant:   coalesce(o.MerchantName, NoMerchantLabel),
		Details:    o.OfferDetails,
		Bank:       coalesce(o.BankName, NoBankLabel),
		Card:       coalesce(o.CardName, NoCardLabel),
		SourceURL:  o.SourceURL,
		Linkable:   IsLinkable(o.SourceURL),
		Disclaimer: o.Disclaimer,
	}
}

// IsLinkable reports whether a scraped URL may be rendered as a link. Only absolute http(s) URLs qualify.
func IsLinkable(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SourceURLs returns the distinct non-empty source URLs, first occurrence first.
func SourceURLs(offers []domain.Offer) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, o := range offers {
		if o.SourceURL == "" {
			continue
		}
		if _, ok := seen[o.SourceURL]; ok {
			continue
		}
		seen[o.SourceURL] = struct{}{}
		urls = append(urls, o.SourceURL)
	}
	return urls
}

// LastSynced returns the newest creation time in the list.
func LastSynced(offers []domain.Offer) (time.Time, bool) {
	var newest time.Time
	for i, o := range offers {
		if i == 0 || o.CreatedAt.After(newest) {
			newest = o.CreatedAt
		}
	}
	return newest, len(offers) > 0
}

func LastSyncedLabel(offers []domain.Offer, now time.Time) string {
	t, ok := LastSynced(offers)
	if !ok {
		return NeverSynced
	}
	return t.UTC().Format("Jan 2, 2006 15:04 UTC") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

// Browser holds one fetched list and the active tab for a single page view.
type Browser struct {
	offers []domain.Offer
	tabs   []string
	active string
}

func New(offers []domain.Offer) *Browser {
	return &Browser{
		offers: offers,
		tabs:   ComputeBankTabs(offers),
		active: AllTab,
	}
}

// SelectTab does not check name against the tab set; an unknown name just yields no offers.
func (b *Browser) SelectTab(name string) {
	b.active = name
}

func (b *Browser) Active() string {
	return b.active
}

func (b *Browser) Tabs() []string {
	return b.tabs
}

func (b *Browser) Offers() []domain.Offer {
	return b.offers
}

func (b *Browser) Visible() []domain.Offer {
	return Filter(b.offers, b.active)
}

func (b *Browser) Cards() []Card {
	visible := b.Visible()
	cards := make([]Card, len(visible))
	for i, o := range visible {
		cards[i] = Render(o)
	}
	return cards
}

// Empty reports whether the active tab shows nothing.
func (b *Browser) Empty() bool {
	return len(b.Visible()) == 0
}
