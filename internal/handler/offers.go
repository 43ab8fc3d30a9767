// internal/handler/offers.go
package handler

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"offer-browser/internal/browser"
	"offer-browser/internal/domain"
	"offer-browser/internal/storage"
	val "offer-browser/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/go-playground/validator/v10"
)

const (
	ConfigMissingMessage = "Database environment variables are not set."
	FetchErrorPrefix     = "Error fetching data: "
	Subtitle             = "Live data gathered by our AI Agent. This is unverified data scraped from the source URL. Use at your own risk."
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type OfferHandler struct {
	store storage.OfferStorage
	now   func() time.Time
}

func NewOfferHandler(store storage.OfferStorage) *OfferHandler {
	return &OfferHandler{store: store, now: time.Now}
}

// MaxBankQueryLen ограничивает только запрос: имена вкладок из базы проходят всегда.
const MaxBankQueryLen = 256

// BrowseQuery — параметры страницы и API.
type BrowseQuery struct {
	Bank string `form:"bank" validate:"max=256"`
}

type tabView struct {
	Name   string
	Active bool
}

type sourceView struct {
	URL      string
	Linkable bool
}

type pageView struct {
	Subtitle     string
	LastSynced   string
	Notice       string
	Tabs         []tabView
	Cards        []browser.Card
	EmptyMessage string
	Sources      []sourceView
}

// OffersResponse is the JSON form of one page view.
type OffersResponse struct {
	Tabs       []string       `json:"tabs"`
	Active     string         `json:"active"`
	Offers     []browser.Card `json:"offers"`
	Sources    []string       `json:"sources"`
	LastSynced string         `json:"last_synced"`
	Message    string         `json:"message,omitempty"`
}

// loadError переводит ошибку хранилища в статус и текст для пользователя.
func loadError(err error) (int, string) {
	var fe *storage.FetchError
	switch {
	case errors.Is(err, storage.ErrConfigMissing):
		return http.StatusServiceUnavailable, ConfigMissingMessage
	case errors.As(err, &fe):
		return http.StatusBadGateway, FetchErrorPrefix + fe.Error()
	default:
		return http.StatusBadGateway, FetchErrorPrefix + err.Error()
	}
}

func (h *OfferHandler) bindQuery(c *gin.Context) (BrowseQuery, error) {
	var q BrowseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, fmt.Errorf("invalid query: %w", err)
	}
	if q.Bank == "" {
		q.Bank = browser.AllTab
	}
	return q, nil
}

// checkSelection пропускает любую существующую вкладку, остальные значения ограничены по длине.
func checkSelection(b *browser.Browser, q BrowseQuery) error {
	if slices.Contains(b.Tabs(), q.Bank) {
		return nil
	}
	return validateStruct(q)
}

// load делает ровно одну выборку на запрос и выставляет выбранную вкладку.
func (h *OfferHandler) load(ctx context.Context, selection string) (*browser.Browser, error) {
	offers, err := h.store.ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	b := browser.New(offers)
	b.SelectTab(selection)
	return b, nil
}

// Page godoc
// @Summary Offer browser page
// @Param bank query string false "Bank tab, All by default"
// @Produce html
// @Router / [get]
func (h *OfferHandler) Page(c *gin.Context) {
	view := pageView{Subtitle: Subtitle, LastSynced: browser.NeverSynced}

	q, err := h.bindQuery(c)
	if err != nil {
		view.Notice = err.Error()
		h.renderPage(c, http.StatusBadRequest, view)
		return
	}

	b, err := h.load(c.Request.Context(), q.Bank)
	if err != nil {
		status, msg := loadError(err)
		slog.Error("Failed to load offers", "error", err, "bank", q.Bank)
		view.Notice = msg
		h.renderPage(c, status, view)
		return
	}
	if err := checkSelection(b, q); err != nil {
		view.Notice = err.Error()
		h.renderPage(c, http.StatusBadRequest, view)
		return
	}

	view.LastSynced = browser.LastSyncedLabel(b.Offers(), h.now())
	for _, tab := range b.Tabs() {
		view.Tabs = append(view.Tabs, tabView{Name: tab, Active: tab == b.Active()})
	}
	view.Cards = b.Cards()
	view.EmptyMessage = emptyMessage(b)
	for _, u := range browser.SourceURLs(b.Offers()) {
		view.Sources = append(view.Sources, sourceView{URL: u, Linkable: browser.IsLinkable(u)})
	}

	h.renderPage(c, http.StatusOK, view)
}

func (h *OfferHandler) renderPage(c *gin.Context, status int, view pageView) {
	c.Render(status, render.HTML{Template: pageTemplate, Name: "offers", Data: view})
}

// ListOffers godoc
// @Summary Offers for one bank tab
// @Param bank query string false "Bank tab, All by default"
// @Success 200 {object} OffersResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/offers [get]
func (h *OfferHandler) ListOffers(c *gin.Context) {
	q, err := h.bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.load(c.Request.Context(), q.Bank)
	if err != nil {
		status, msg := loadError(err)
		slog.Error("ListOffers failed", "error", err, "bank", q.Bank)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	if err := checkSelection(b, q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := OffersResponse{
		Tabs:       b.Tabs(),
		Active:     b.Active(),
		Offers:     b.Cards(),
		Sources:    browser.SourceURLs(b.Offers()),
		LastSynced: lastSyncedRFC3339(b.Offers()),
	}
	if resp.Sources == nil {
		resp.Sources = []string{}
	}
	if b.Empty() {
		resp.Message = emptyMessage(b)
	}
	c.JSON(http.StatusOK, resp)
}

// ListBanks godoc
// @Summary Bank tabs
// @Success 200 {array} string
// @Router /api/v1/banks [get]
func (h *OfferHandler) ListBanks(c *gin.Context) {
	offers, err := h.store.ListOffers(c.Request.Context())
	if err != nil {
		status, msg := loadError(err)
		slog.Error("ListBanks failed", "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, browser.ComputeBankTabs(offers))
}

func emptyMessage(b *browser.Browser) string {
	if len(b.Offers()) == 0 {
		return browser.EmptyStoreMessage
	}
	return browser.EmptyTabMessage
}

func lastSyncedRFC3339(offers []domain.Offer) string {
	t, ok := browser.LastSynced(offers)
	if !ok {
		return browser.NeverSynced
	}
	return t.UTC().Format(time.RFC3339)
}

func validateStruct(v any) error {
	if err := val.Validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid input: %w", err)
		}
		var errs []string
		for _, e := range verrs {
			errs = append(errs, fieldErrorToString(e))
		}
		return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", strings.ToLower(e.Field()), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", strings.ToLower(e.Field()))
	}
}
