package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/catalog"
	"github.com/ecochain/token-catalog/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestPad(t *testing.T) {
	assert.Equal(t, "ECO  ", pad("ECO", 5))
	assert.Equal(t, "Ecoch…", pad("Ecochain Token", 6))
	assert.Equal(t, "anything", pad("anything", 0))
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "now", age(now, now.Add(-10*time.Second)))
	assert.Equal(t, "5m", age(now, now.Add(-5*time.Minute)))
	assert.Equal(t, "3h", age(now, now.Add(-3*time.Hour)))
	assert.Equal(t, "2d", age(now, now.Add(-50*time.Hour)))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$1.25", formatPrice(1.25))
	assert.Equal(t, "$0.000420", formatPrice(0.00042))
}

func TestRenderPage_Empty(t *testing.T) {
	out := renderPage(catalog.Page{}, model.DefaultFilter())
	assert.Contains(t, out, "No tokens found")
}

func TestRenderPage_ShowsMoreHint(t *testing.T) {
	page := catalog.Page{
		Items:   []model.Token{{ID: "1", Name: "Eco Token", Symbol: "ECO", Price: 0.5, MarketCap: "$1M", CreatedAt: time.Now()}},
		Total:   16,
		Visible: 1,
		HasMore: true,
	}
	out := renderPage(page, model.DefaultFilter())
	assert.Contains(t, out, "ECO")
	assert.Contains(t, out, "Showing 1 of 16")
	assert.Contains(t, out, "--more")
}

func TestRenderError_ListsFieldsInOrder(t *testing.T) {
	out := renderError(apperr.Validation(map[string]string{
		"symbol": "Symbol is required",
		"name":   "Name is required",
	}))
	assert.Contains(t, out, "Validation failed")
	assert.Less(t, strings.Index(out, "name:"), strings.Index(out, "symbol:"))
}

func TestRenderError_PlainMessage(t *testing.T) {
	assert.Contains(t, renderError(errors.New("boom")), "Error: boom")
	assert.Contains(t, renderError(apperr.NotFound("Token")), "Token not found")
}

