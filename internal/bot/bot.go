// internal/bot/bot.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"offer-browser/internal/browser"
	"offer-browser/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/encoding/charmap"
)

// MaxOffersPerReply ограничивает размер ответа (лимит Telegram — 4096 символов).
const MaxOffersPerReply = 10

const (
	ConfigMissingMessage = "⚠️ Database environment variables are not set."
	FetchErrorPrefix     = "❌ Error fetching data: "
	NoSourcesMessage     = "📭 None of the offers has a source URL."
)

const helpText = "💳 *Credit Card Offers*\n\n" +
	"Commands:\n" +
	"/banks — list bank tabs\n" +
	"/offers — all offers\n" +
	"/offers Chase — offers of one bank\n" +
	"/sources — pages the offers were scraped from"

type Commands struct {
	store storage.OfferStorage
	now   func() time.Time
}

func NewCommands(store storage.OfferStorage) *Commands {
	return &Commands{store: store, now: time.Now}
}

// Reply returns the Markdown answer for one incoming message.
func (c *Commands) Reply(ctx context.Context, text string) string {
	text = strings.TrimSpace(FixEncoding(text))
	cmd, arg := splitCommand(text)

	switch cmd {
	case "/start", "/help":
		return helpText
	case "/banks":
		return c.handleBanks(ctx)
	case "/offers":
		return c.handleOffers(ctx, arg)
	case "/sources":
		return c.handleSources(ctx)
	default:
		return "Unknown command. Send /help"
	}
}

// splitCommand отделяет команду от аргумента и убирает суффикс @botname.
func splitCommand(text string) (string, string) {
	cmd, arg, _ := strings.Cut(text, " ")
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func (c *Commands) load(ctx context.Context) (*browser.Browser, string) {
	offers, err := c.store.ListOffers(ctx)
	if err != nil {
		slog.Error("Bot failed to load offers", "error", err)
		if errors.Is(err, storage.ErrConfigMissing) {
			return nil, ConfigMissingMessage
		}
		return nil, FetchErrorPrefix + escape(err.Error())
	}
	return browser.New(offers), ""
}

func (c *Commands) handleBanks(ctx context.Context) string {
	b, msg := c.load(ctx)
	if b == nil {
		return msg
	}
	lines := []string{"🏦 *Banks*"}
	for _, tab := range b.Tabs() {
		lines = append(lines, "- "+escape(tab))
	}
	return strings.Join(lines, "\n")
}

func (c *Commands) handleOffers(ctx context.Context, bank string) string {
	b, msg := c.load(ctx)
	if b == nil {
		return msg
	}
	if len(b.Offers()) == 0 {
		return "📭 " + browser.EmptyStoreMessage
	}
	if bank != "" {
		b.SelectTab(bank)
	}

	cards := b.Cards()
	if len(cards) == 0 {
		return "📭 " + browser.EmptyTabMessage
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("💳 *Offers: %s* (synced %s)", escape(b.Active()), escape(browser.LastSyncedLabel(b.Offers(), c.now()))))
	for i, card := range cards {
		if i == MaxOffersPerReply {
			lines = append(lines, fmt.Sprintf("\n…and %d more", len(cards)-MaxOffersPerReply))
			break
		}
		lines = append(lines, formatCard(card))
	}
	return strings.Join(lines, "\n")
}

func formatCard(card browser.Card) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n*%s*\n", escape(card.Merchant))
	fmt.Fprintf(&sb, "%s\n", escape(card.Details))
	fmt.Fprintf(&sb, "Bank: %s | Card: %s", escape(card.Bank), escape(card.Card))
	if card.Linkable {
		fmt.Fprintf(&sb, "\n%s", escape(card.SourceURL))
	}
	return sb.String()
}

func (c *Commands) handleSources(ctx context.Context) string {
	b, msg := c.load(ctx)
	if b == nil {
		return msg
	}
	if len(b.Offers()) == 0 {
		return "📭 " + browser.EmptyStoreMessage
	}
	urls := browser.SourceURLs(b.Offers())
	if len(urls) == 0 {
		return NoSourcesMessage
	}
	lines := []string{"🔗 *Sources*"}
	for _, u := range urls {
		lines = append(lines, "- "+escape(u))
	}
	return strings.Join(lines, "\n")
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// FixEncoding чинит текст, пришедший не в UTF-8 (обычно windows-1251).
func FixEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	decoder := charmap.Windows1251.NewDecoder()
	fixed, err := decoder.String(s)
	if err == nil && utf8.ValidString(fixed) {
		return fixed
	}

	return strings.ToValidUTF8(s, "")
}
