package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"offer-browser/internal/domain"
	"offer-browser/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

var synced = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	offers []domain.Offer
	err    error
}

func (f *fakeStore) ListOffers(context.Context) ([]domain.Offer, error) {
	return f.offers, f.err
}

func newCommands(store storage.OfferStorage) *Commands {
	c := NewCommands(store)
	c.now = func() time.Time { return synced.Add(time.Hour) }
	return c
}

func sampleOffers() []domain.Offer {
	return []domain.Offer{
		{ID: 1, BankName: "Chase", MerchantName: "Amazon", OfferDetails: "5% back", SourceURL: "https://chase.example", CreatedAt: synced},
		{ID: 2, BankName: "Amex", MerchantName: "Target", OfferDetails: "3% back", SourceURL: "https://amex.example", CreatedAt: synced.Add(-time.Hour)},
		{ID: 3, OfferDetails: "Free lounge", CreatedAt: synced.Add(-2 * time.Hour)},
	}
}

func TestReply_Help(t *testing.T) {
	c := newCommands(&fakeStore{})
	assert.Contains(t, c.Reply(context.Background(), "/start"), "/offers")
	assert.Equal(t, c.Reply(context.Background(), "/start"), c.Reply(context.Background(), "/help@OfferBot"))
	assert.Contains(t, c.Reply(context.Background(), "hello"), "Unknown command")
}

func TestReply_Banks(t *testing.T) {
	reply := newCommands(&fakeStore{offers: sampleOffers()}).Reply(context.Background(), "/banks")
	assert.Equal(t, "🏦 *Banks*\n- All\n- Chase\n- Amex\n- Other", reply)
}

func TestReply_OffersAll(t *testing.T) {
	reply := newCommands(&fakeStore{offers: sampleOffers()}).Reply(context.Background(), "/offers")

	assert.Contains(t, reply, "*Offers: All*")
	assert.Contains(t, reply, "*Amazon*")
	assert.Contains(t, reply, "*Target*")
	assert.Contains(t, reply, "*General Offer*")
	assert.Contains(t, reply, "Bank: Not specified | Card: All Cards")
	assert.Contains(t, reply, "1 hour ago")
	assert.Less(t, strings.Index(reply, "Amazon"), strings.Index(reply, "Target"))
}

func TestReply_OffersOneBank(t *testing.T) {
	c := newCommands(&fakeStore{offers: sampleOffers()})

	reply := c.Reply(context.Background(), "/offers Amex")
	assert.Contains(t, reply, "*Offers: Amex*")
	assert.Contains(t, reply, "Target")
	assert.NotContains(t, reply, "Amazon")

	reply = c.Reply(context.Background(), "/offers Other")
	assert.Contains(t, reply, "Free lounge")
	assert.NotContains(t, reply, "Target")
}

func TestReply_OffersEmpty(t *testing.T) {
	reply := newCommands(&fakeStore{offers: sampleOffers()}).Reply(context.Background(), "/offers Nope")
	assert.Equal(t, "📭 No offers found for this bank.", reply)

	reply = newCommands(&fakeStore{}).Reply(context.Background(), "/offers")
	assert.Equal(t, "📭 No offers found in the database yet.", reply)
}

func TestReply_OffersTruncated(t *testing.T) {
	var offers []domain.Offer
	for i := 0; i < MaxOffersPerReply+3; i++ {
		offers = append(offers, domain.Offer{ID: int64(i), BankName: "Chase", MerchantName: fmt.Sprintf("Shop %d", i), CreatedAt: synced})
	}
	reply := newCommands(&fakeStore{offers: offers}).Reply(context.Background(), "/offers")

	assert.Contains(t, reply, "Shop 9")
	assert.NotContains(t, reply, "Shop 10")
	assert.Contains(t, reply, "…and 3 more")
}

func TestReply_Sources(t *testing.T) {
	reply := newCommands(&fakeStore{offers: sampleOffers()}).Reply(context.Background(), "/sources")
	assert.Equal(t, "🔗 *Sources*\n- https://chase.example\n- https://amex.example", reply)
}

func TestReply_SourcesMissing(t *testing.T) {
	store := &fakeStore{offers: []domain.Offer{{ID: 1, BankName: "Chase", MerchantName: "Shop", CreatedAt: synced}}}
	reply := newCommands(store).Reply(context.Background(), "/sources")
	assert.Equal(t, NoSourcesMessage, reply)

	reply = newCommands(&fakeStore{}).Reply(context.Background(), "/sources")
	assert.Equal(t, "📭 No offers found in the database yet.", reply)
}

func TestReply_Errors(t *testing.T) {
	reply := newCommands(storage.Unconfigured{}).Reply(context.Background(), "/offers")
	assert.Equal(t, ConfigMissingMessage, reply)

	store := &fakeStore{err: &storage.FetchError{Err: errors.New("timeout")}}
	for _, cmd := range []string{"/banks", "/offers", "/sources"} {
		assert.Equal(t, "❌ Error fetching data: timeout", newCommands(store).Reply(context.Background(), cmd), cmd)
	}
}

func TestReply_EscapesMarkdown(t *testing.T) {
	store := &fakeStore{offers: []domain.Offer{{ID: 1, BankName: "Bank_*One*", MerchantName: "Shop", CreatedAt: synced}}}
	reply := newCommands(store).Reply(context.Background(), "/banks")
	assert.Contains(t, reply, `Bank\_\*One\*`)
}

func TestFixEncoding(t *testing.T) {
	assert.Equal(t, "/offers Сбер", FixEncoding("/offers Сбер"))

	encoded, err := charmap.Windows1251.NewEncoder().String("Сбер")
	require.NoError(t, err)
	assert.Equal(t, "Сбер", FixEncoding(encoded))
}
