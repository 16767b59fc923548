package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/catalog"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/trade"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type column struct {
	title string
	width int
}

var tokenColumns = []column{
	{"SYMBOL", 8},
	{"NAME", 22},
	{"PRICE", 12},
	{"MARKET CAP", 14},
	{"HOLDERS", 8},
	{"AGE", 8},
	{"ID", 0},
}

func renderPage(page catalog.Page, filter model.CatalogFilter) string {
	var b strings.Builder

	title := fmt.Sprintf("Tokens  sort=%s %s", filter.SortBy, filter.SortOrder)
	if filter.Search != "" {
		title += fmt.Sprintf("  search=%q", filter.Search)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	if len(page.Items) == 0 {
		b.WriteString(dimStyle.Render("No tokens found"))
		return b.String()
	}

	header := make([]string, len(tokenColumns))
	for i, c := range tokenColumns {
		header[i] = pad(c.title, c.width)
	}
	b.WriteString(labelStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	now := time.Now()
	for _, t := range page.Items {
		cells := []string{
			pad(t.Symbol, tokenColumns[0].width),
			pad(t.Name, tokenColumns[1].width),
			pad(formatPrice(t.Price), tokenColumns[2].width),
			pad(t.MarketCap, tokenColumns[3].width),
			pad(fmt.Sprint(t.Holders), tokenColumns[4].width),
			pad(age(now, t.CreatedAt), tokenColumns[5].width),
			dimStyle.Render(t.ID),
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("Showing %d of %d", page.Visible, page.Total)
	if page.HasMore {
		footer += "  (use --more to show more)"
	}
	b.WriteString(dimStyle.Render(footer))
	return b.String()
}

func renderDetail(d *model.TokenDetail) string {
	rows := [][2]string{
		{"Price", formatPrice(d.Price)},
		{"Market cap", d.MarketCap},
		{"Volume", d.Volume},
		{"Holders", fmt.Sprint(d.Holders)},
		{"Blockchain", d.Blockchain},
		{"Raised", fmt.Sprintf("%s / %s (%s)", orDash(d.Raised), orDash(d.RaiseTarget), d.RaisePercentage)},
	}
	if d.ContractAddress != "" {
		rows = append(rows, [2]string{"Contract", d.ContractAddress})
	}
	if d.Creator != nil {
		rows = append(rows, [2]string{"Creator", fmt.Sprintf("%s (%s)", d.Creator.Username, d.Creator.Address)})
	}

	stats := make([]string, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, labelStyle.Render(pad(r[0], 12))+r[1])
	}

	about := d.FullDescription
	if about == "" {
		about = d.Description
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(strings.Join(stats, "\n")),
		boxStyle.Width(48).Render(about),
	)
	title := headerStyle.Render(fmt.Sprintf("%s (%s)", d.Name, d.Symbol))
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func renderSession(s *model.WalletSession) string {
	lines := []string{
		labelStyle.Render(pad("Address", 10)) + s.User.Address,
		labelStyle.Render(pad("Name", 10)) + s.User.Name,
		labelStyle.Render(pad("Balance", 10)) + s.User.Balance,
		labelStyle.Render(pad("Expires", 10)) + s.ExpiresAt.Local().Format(time.RFC1123),
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		upStyle.Render("Wallet connected"),
		boxStyle.Render(strings.Join(lines, "\n")),
	)
}

func renderReceipt(r *model.Receipt) string {
	lines := []string{
		labelStyle.Render(pad("Action", 10)) + string(r.Kind),
		labelStyle.Render(pad("Amount", 10)) + fmt.Sprint(r.Amount),
		labelStyle.Render(pad("Tx hash", 10)) + r.TransactionHash,
	}
	if r.TokenID != "" {
		lines = append(lines, labelStyle.Render(pad("Token", 10))+r.TokenID)
	}
	if r.ContractAddress != "" {
		lines = append(lines, labelStyle.Render(pad("Contract", 10))+r.ContractAddress)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		upStyle.Render("Transaction settled"),
		boxStyle.Render(strings.Join(lines, "\n")),
	)
}

func renderError(err error) string {
	var serr *trade.SettlementError
	if errors.As(err, &serr) {
		err = serr.Unwrap()
	}

	msg := apperr.MessageOf(err)
	fields := apperr.FieldsOf(err)
	if len(fields) == 0 {
		return downStyle.Render("Error: " + msg)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{downStyle.Render("Validation failed")}
	for _, name := range names {
		lines = append(lines, "  "+labelStyle.Render(name+":")+" "+fields[name])
	}
	return strings.Join(lines, "\n")
}

func formatPrice(p float64) string {
	if p < 0.01 {
		return fmt.Sprintf("$%.6f", p)
	}
	return fmt.Sprintf("$%.2f", p)
}

func age(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// pad truncates or right-pads s to width runes; width 0 leaves s unchanged
func pad(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) > width {
		if width == 1 {
			return string(r[:1])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
