//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finflow/internal/bot"
	"gitlab.com/yelinaung/finflow/internal/finance"
)

func main() {
	rows := []finance.CategoryAmount{
		{Category: "Food", Amount: decimal.NewFromInt(1_250_000), Percentage: 42},
		{Category: "Transportation", Amount: decimal.NewFromInt(600_000), Percentage: 20},
		{Category: "Bills & Utilities", Amount: decimal.NewFromInt(550_000), Percentage: 18},
		{Category: "Entertainment", Amount: decimal.NewFromInt(350_000), Percentage: 12},
		{Category: "Other", Amount: decimal.NewFromInt(250_000), Percentage: 8},
	}

	chartData, err := bot.GenerateCategoryChart(rows, "Expenses 2026-10")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example category breakdown chart")
}
