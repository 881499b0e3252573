package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
)

func record(name, price, weight, file string) catalog.Record {
	p := decimal.RequireFromString(price)
	w := decimal.RequireFromString(weight)
	return catalog.Record{
		Name:       name,
		Price:      p,
		Weight:     w,
		SourceFile: file,
		PricePerKg: catalog.PricePerKg(p, w),
	}
}

func fixture() []catalog.Record {
	return []catalog.Record{
		record("Гречка ядрица", "95", "0.9", "price_1.csv"),
		record("Рис круглый", "70", "1", "price_1.csv"),
		record("ГРЕЧКА продел", "50", "0.5", "price_2.csv"),
	}
}

var cellRe = regexp.MustCompile(`<td>([^<]*)</td>`)

// htmlRows extracts table body cells, six per row.
func htmlRows(t *testing.T, doc []byte) [][]string {
	t.Helper()
	matches := cellRe.FindAllSubmatch(doc, -1)
	if len(matches)%6 != 0 {
		t.Fatalf("cell count %d is not a multiple of 6", len(matches))
	}
	var rows [][]string
	for i := 0; i < len(matches); i += 6 {
		row := make([]string, 6)
		for j := range row {
			row[j] = string(matches[i+j][1])
		}
		rows = append(rows, row)
	}
	return rows
}

func TestRenderHTML_OrderAndFormatting(t *testing.T) {
	doc, err := RenderHTML(context.Background(), fixture(), "")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}

	rows := htmlRows(t, doc)
	want := [][]string{
		{"1", "Рис круглый", "70.00", "1.0", "price_1.csv", "70.00"},
		{"2", "ГРЕЧКА продел", "50.00", "0.5", "price_2.csv", "100.00"},
		{"3", "Гречка ядрица", "95.00", "0.9", "price_1.csv", "105.56"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}

	s := string(doc)
	if !strings.Contains(s, "<title>"+DefaultTitle+"</title>") {
		t.Error("missing default title")
	}
	for _, h := range columnHeadings {
		if !strings.Contains(s, "<th>"+h+"</th>") {
			t.Errorf("missing heading %q", h)
		}
	}
}

func TestRenderHTML_Escapes(t *testing.T) {
	recs := []catalog.Record{record(`<b>"Сок" & вода</b>`, "10", "1", "price.csv")}

	doc, err := RenderHTML(context.Background(), recs, "a<b")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	s := string(doc)

	if strings.Contains(s, "<b>") {
		t.Errorf("name was not escaped:\n%s", s)
	}
	if !strings.Contains(s, "&lt;b&gt;&#34;Сок&#34; &amp; вода&lt;/b&gt;") {
		t.Errorf("escaped name not found:\n%s", s)
	}
	if !strings.Contains(s, "<title>a&lt;b</title>") {
		t.Error("title was not escaped")
	}
}

func TestRenderHTML_Empty(t *testing.T) {
	doc, err := RenderHTML(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	if rows := htmlRows(t, doc); len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
	if !strings.Contains(string(doc), "<table>") {
		t.Error("empty report should still contain the table header")
	}
}

func TestWriteHTML_OverwritesDeterministically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.html")
	if err := os.WriteFile(path, []byte("stale content that is longer than nothing"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := WriteHTML(ctx, path, fixture(), ""); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(first, []byte("stale")) {
		t.Error("previous file content survived")
	}

	if err := WriteHTML(ctx, path, fixture(), ""); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("repeated export is not byte-identical")
	}
}

func TestWriteHTML_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "output.html")
	if err := WriteHTML(context.Background(), path, fixture(), ""); err == nil {
		t.Error("WriteHTML() expected error for missing directory")
	}
}

func TestWriteTable(t *testing.T) {
	recs := append(fixture(), record(strings.Repeat("Ж", 40), "1", "1", "price_3.csv"))

	var buf bytes.Buffer
	if err := WriteTable(&buf, recs, TableOptions{NameWidth: NameWidth(40)}); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	// heading, rule, four rows
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Наименование") || !strings.Contains(lines[0], "цена за кг.") {
		t.Errorf("heading = %q", lines[0])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("non-terminal writer should not receive escape sequences")
	}

	first := lines[2]
	if !strings.HasPrefix(first, "1    "+strings.Repeat("Ж", MaxNameWidth)+" ") {
		t.Errorf("long name not truncated: %q", first)
	}
	if strings.Contains(first, strings.Repeat("Ж", MaxNameWidth+1)) {
		t.Errorf("name exceeds column: %q", first)
	}
	if !strings.HasSuffix(first, "1.00") {
		t.Errorf("first row should be the cheapest: %q", first)
	}
	if !strings.Contains(lines[5], "Гречка ядрица") || !strings.HasSuffix(lines[5], "105.56") {
		t.Errorf("last row = %q", lines[5])
	}

	width := len([]rune(lines[2]))
	for _, l := range lines[3:] {
		if len([]rune(l)) != width {
			t.Errorf("row widths differ: %q", l)
		}
	}
}

func TestNameWidth(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 12},
		{5, 12},
		{20, 20},
		{30, 30},
		{45, 30},
	}
	for _, tt := range tests {
		if got := NameWidth(tt.in); got != tt.want {
			t.Errorf("NameWidth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTable_RendersFragment(t *testing.T) {
	var buf bytes.Buffer
	rows := Rows([]catalog.Record{record("Сок & вода", "120", "1", "price_1.csv")})
	if err := Table(rows).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	s := buf.String()
	if !strings.HasPrefix(s, "<table>") || !strings.HasSuffix(s, "</table>") {
		t.Errorf("Table() = %q, want a bare table element", s)
	}
	if strings.Contains(s, "<html>") || strings.Contains(s, "<title>") {
		t.Errorf("Table() rendered page chrome: %q", s)
	}
	if !strings.Contains(s, "<td>Сок &amp; вода</td>") {
		t.Errorf("Table() did not escape the name: %q", s)
	}
}

func TestRenderHTML_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RenderHTML(ctx, fixture(), ""); err == nil {
		t.Error("RenderHTML() expected error for a cancelled context")
	}
}
