package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/xtding233/gacha-curve/internal/calculator"
	"github.com/xtding233/gacha-curve/internal/catalog"
	"github.com/xtding233/gacha-curve/internal/gacha"
	"github.com/xtding233/gacha-curve/internal/pricing"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func percent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 2, 64) + "%"
}

func renderCurve(targets []gacha.TargetSlot, curve gacha.Curve) string {
	headers := []string{"pulls"}
	for k := range targets {
		headers = append(headers, fmt.Sprintf(">=%d", k+1))
	}
	t := newTable(headers...)
	for _, p := range curve {
		row := []string{strconv.Itoa(p.PullCount)}
		for _, v := range p.Probabilities {
			row = append(row, percent(v))
		}
		t.Row(row...)
	}

	names := make([]string, len(targets))
	for i, ts := range targets {
		names[i] = ts.Name
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("targets: "+strings.Join(names, ", ")),
		t.Render(),
	)
}

func renderPurchase(p *pricing.Plan) string {
	t := newTable("pack", "qty", "tokens", "subtotal")
	for _, line := range p.Purchases {
		t.Row(line.Name, strconv.Itoa(line.Qty), strconv.Itoa(line.UnitTokens*line.Qty), money(line.Subtotal, p.Currency))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		t.Render(),
		noteStyle.Render(fmt.Sprintf("total %s (tax %s), %d tokens",
			money(p.TotalCents, p.Currency), money(p.TaxCents, p.Currency), p.TotalTokens)),
	)
}

func money(cents int, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}

func renderPlan(resp *calculator.PlanResponse) string {
	var parts []string
	if g := resp.Goal; g != nil {
		parts = append(parts, titleStyle.Render(fmt.Sprintf("P(>=%d) >= %s", resp.AtLeast, percent(g.Probability))))
		if !g.Reached {
			parts = append(parts, noteStyle.Render("not reached within the simulated pulls"))
		} else {
			parts = append(parts, fmt.Sprintf("%d pulls, %d tokens", g.Pulls, g.Tokens))
			if g.Purchase != nil {
				parts = append(parts, renderPurchase(g.Purchase))
			}
		}
	}
	if b := resp.Budget; b != nil {
		line := fmt.Sprintf("%d pulls, P(>=%d) = %s", b.Pulls, resp.AtLeast, percent(b.Probability))
		if b.Capped {
			line += noteStyle.Render(" (at the last simulated pull)")
		}
		parts = append(parts, titleStyle.Render("budget"), line, renderPurchase(&b.Purchase))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderVerify(resp *calculator.VerifyResponse) string {
	t := newTable("pulls", "exact", "estimate", "diff")
	for i, p := range resp.Exact {
		if i >= len(resp.Estimate.Curve) || len(p.Probabilities) == 0 {
			break
		}
		n := len(p.Probabilities) - 1
		e := resp.Estimate.Curve[i].Probabilities[n]
		t.Row(strconv.Itoa(p.PullCount), percent(p.Probabilities[n]), percent(e), percent(p.Probabilities[n]-e))
	}
	c := resp.Estimate.Completion
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("P(all targets), %d trials", resp.Estimate.Trials)),
		t.Render(),
		noteStyle.Render(fmt.Sprintf("max deviation %s; completion mean %.1f p50 %.0f p90 %.0f p99 %.0f; %d incomplete",
			percent(resp.MaxDeviation), c.Mean, c.P50, c.P90, c.P99, resp.Estimate.Incomplete)),
	)
}

func renderPresets(presets []catalog.Preset) string {
	t := newTable("id", "name", "targets")
	for _, p := range presets {
		var targets []string
		for _, tg := range p.Targets {
			targets = append(targets, fmt.Sprintf("%s x%d", tg.Label, tg.Count))
		}
		t.Row(p.ID, p.Name, strings.Join(targets, ", "))
	}
	return t.Render()
}
