package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/atmx/auction-planner/internal/model"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func renderBudget(s model.BudgetSummary) {
	accent.Println("\n== BUDGET ==")
	fmt.Printf("%-10s %10s\n", "TOTAL", "$"+s.BudgetTotal.StringFixed(0))
	fmt.Printf("%-10s %10s\n", "SPENT", "$"+s.Spent.StringFixed(2))
	remaining := "$" + s.Remaining.StringFixed(2)
	if s.Remaining.IsZero() {
		fmt.Printf("%-10s %10s\n", "REMAINING", danger.Sprint(remaining))
	} else {
		fmt.Printf("%-10s %10s\n", "REMAINING", success.Sprint(remaining))
	}
	fmt.Println()
}

func renderRoster(players []model.RosterPlayer) {
	accent.Println("\n== ROSTER ==")
	if len(players) == 0 {
		printInfo("Roster is empty.")
		return
	}
	fmt.Printf("%-28s %-22s %-4s %-5s %-8s %8s %6s\n", "ID", "NAME", "TYPE", "TEAM", "POS", "CONTRACT", "PRICE")
	for _, p := range players {
		contract := "-"
		if p.UnderContract {
			contract = fmt.Sprintf("%d/%d", p.ContractYear, p.ContractTotal)
		}
		fmt.Printf("%-28s %-22s %-4s %-5s %-8s %8s %6s\n",
			truncate(p.ID, 28),
			truncate(p.Name, 22),
			p.Type,
			truncate(p.Team, 5),
			truncate(p.Pos, 8),
			contract,
			fmt.Sprintf("$%d", p.Price),
		)
	}
	fmt.Println()
}

func renderTargets(list []model.AuctionTarget) {
	accent.Println("\n== AUCTION BOARD ==")
	if len(list) == 0 {
		printInfo("No auction targets yet.")
		return
	}
	fmt.Printf("%-36s %-22s %-4s %-4s %7s %7s %7s\n", "ID", "NAME", "TYPE", "TIER", "PLAN", "MAX", "ENFORCE")
	for _, t := range list {
		fmt.Printf("%-36s %-22s %-4s %-4s %7s %7s %7s\n",
			t.ID,
			truncate(t.Name, 22),
			t.Type,
			t.Tier,
			money(t.Plan),
			money(t.Max),
			money(t.Enforce),
		)
	}
	fmt.Println()
}

func renderLivePrices(prices model.LivePrices) {
	accent.Println("\n== LIVE PRICES ==")
	if len(prices) == 0 {
		printInfo("No live prices entered.")
		return
	}
	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-32s %6s\n", truncate(k, 32), fmt.Sprintf("$%d", prices[k]))
	}
	fmt.Println()
}

func renderWeights(s model.Settings) {
	accent.Println("\n== CATEGORY WEIGHTS ==")
	row := func(label string, cats []string) {
		parts := make([]string, 0, len(cats))
		for _, c := range cats {
			parts = append(parts, fmt.Sprintf("%s=%g", c, s.CategoryWeights[c]))
		}
		fmt.Printf("%-9s %s\n", label, strings.Join(parts, "  "))
	}
	row("HITTING", model.HittingCategories)
	row("PITCHING", model.PitchingCategories)
	if s.CategoryWeightsUpdatedAt != nil {
		printInfo("updated " + s.CategoryWeightsUpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Println()
}

func money(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("$%g", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
