package main

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"carscout/internal/models"
	"carscout/internal/validation"
)

// inputFromArgs maps the positional <brand> <model> <max-mileage> arguments.
func inputFromArgs(args []string) validation.Input {
	return validation.Input{Brand: args[0], Model: args[1], MaxMileage: args[2]}
}

func formatMileage(km int) string {
	return humanize.Comma(int64(km)) + " km"
}

func formatPrice(rm float64) string {
	return "RM " + humanize.CommafWithDigits(rm, 2)
}

func renderRows(w io.Writer, rows []models.ResultRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"No.", "Brand", "Model", "Year", "Mileage", "Price"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.No, r.Brand, r.Model, r.Year, formatMileage(r.Mileage), formatPrice(r.Price)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderEntries(w io.Writer, entries []models.CacheEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Brand", "Model", "Mileage", "Extracted", "File"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.Brand,
			e.Model,
			humanize.Comma(int64(e.MinMileage)) + "-" + formatMileage(e.MaxMileage),
			e.Timestamp,
			e.Filename,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
