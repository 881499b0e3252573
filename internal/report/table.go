// Package report renders catalog records as a console table or an HTML page.
//
// Both renderers order records by price-per-kilogram ascending regardless of
// the order they are given in.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
)

// Name column limits for the console table.
const (
	MaxNameWidth = 30
	minNameWidth = 12 // width of the "Наименование" heading
)

// Console headings.
const (
	headRank   = "№"
	headName   = "Наименование"
	headPrice  = "цена"
	headWeight = "вес"
	headFile   = "файл"
	headPerKg  = "цена за кг."
)

// NameWidth picks the name column width for the longest name in the catalog.
func NameWidth(maxNameLength int) int {
	return min(max(maxNameLength, minNameWidth), MaxNameWidth)
}

// TableOptions controls console rendering.
type TableOptions struct {
	// NameWidth is the name column width; 0 means MaxNameWidth.
	NameWidth int
}

// WriteTable writes records as an aligned text table.
// Names longer than the name column are truncated.
func WriteTable(w io.Writer, records []catalog.Record, opts TableOptions) error {
	width := opts.NameWidth
	if width <= 0 || width > MaxNameWidth {
		width = MaxNameWidth
	}

	renderer := lipgloss.NewRenderer(w)
	headStyle := renderer.NewStyle().Bold(true)
	ruleStyle := renderer.NewStyle().Faint(true)

	head := fmt.Sprintf("%-4s %-*s %8s %6s %-12s %10s",
		headRank, width, headName, headPrice, headWeight, headFile, headPerKg)
	rule := strings.Repeat("-", len([]rune(head)))

	var b strings.Builder
	b.WriteString(headStyle.Render(head))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(rule))
	b.WriteString("\n")

	for i, r := range catalog.SortByPricePerKg(records) {
		fmt.Fprintf(&b, "%-4d %-*s %8s %6s %-12s %10s\n",
			i+1,
			width, truncate(r.Name, width),
			r.Price.StringFixed(2),
			r.Weight.StringFixed(1),
			r.SourceFile,
			r.PricePerKg.StringFixed(2),
		)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
