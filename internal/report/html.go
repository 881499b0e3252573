package report

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
)

//go:generate templ generate -f report.templ

// DefaultTitle is the page title of exported reports.
const DefaultTitle = "Позиции продуктов"

// Row is one rendered table line; all numbers are pre-formatted.
type Row struct {
	Rank       int    `json:"rank"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Weight     string `json:"weight"`
	SourceFile string `json:"source_file"`
	PricePerKg string `json:"price_per_kg"`
}

// Rows converts records into ranked rows ordered by price-per-kilogram.
func Rows(records []catalog.Record) []Row {
	sorted := catalog.SortByPricePerKg(records)
	rows := make([]Row, len(sorted))
	for i, r := range sorted {
		rows[i] = Row{
			Rank:       i + 1,
			Name:       r.Name,
			Price:      r.Price.StringFixed(2),
			Weight:     r.Weight.StringFixed(1),
			SourceFile: r.SourceFile,
			PricePerKg: r.PricePerKg.StringFixed(2),
		}
	}
	return rows
}

// columnHeadings are the HTML table headings, in Row field order.
var columnHeadings = []string{"Номер", "Название", "Цена", "Фасовка", "Файл", "Цена за кг."}

// RenderHTML renders records as a standalone HTML document.
func RenderHTML(ctx context.Context, records []catalog.Record, title string) ([]byte, error) {
	if title == "" {
		title = DefaultTitle
	}
	var buf bytes.Buffer
	if err := Page(title, Rows(records)).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders records to path, replacing any existing file.
func WriteHTML(ctx context.Context, path string, records []catalog.Record, title string) error {
	data, err := RenderHTML(ctx, records, title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
