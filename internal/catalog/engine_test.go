package catalog

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestEngine() *Engine {
	return NewEngine(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price_1.csv", "")
	writeFile(t, dir, "Price_2.csv", "")
	writeFile(t, dir, "MYPRICES.csv", "")
	writeFile(t, dir, "price_3.txt", "")
	writeFile(t, dir, "goods.csv", "")
	writeFile(t, dir, "price_4.CSV", "")
	if err := os.Mkdir(filepath.Join(dir, "price_dir.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{"MYPRICES.csv", "Price_2.csv", "price_1.csv"}
	if len(files) != len(want) {
		t.Fatalf("Discover() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("Discover() expected error for missing directory")
	}
	if !IsKind(err, KindFileSystem) {
		t.Errorf("error kind: got %v, want %s", err, KindFileSystem)
	}
	if !errors.Is(err, ErrDirectory) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap ErrDirectory and os.ErrNotExist: %v", err)
	}
}

func TestLoad_AppleBanana(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price_fruit.csv", "Товар,Цена,Вес\nApple,100,2\nBanana,60,0.5\n")

	e := newTestEngine()
	res, err := e.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if res.Records != 2 {
		t.Fatalf("Records = %d, want 2", res.Records)
	}
	if len(res.Files) != 1 || res.Files[0] != "price_fruit.csv" {
		t.Errorf("Files = %v, want [price_fruit.csv]", res.Files)
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}

	recs := e.Records()
	if recs[0].Name != "Apple" || recs[0].PricePerKg.StringFixed(2) != "50.00" {
		t.Errorf("first record = %s %s, want Apple 50.00", recs[0].Name, recs[0].PricePerKg.StringFixed(2))
	}
	if recs[1].Name != "Banana" || recs[1].PricePerKg.StringFixed(2) != "120.00" {
		t.Errorf("second record = %s %s, want Banana 120.00", recs[1].Name, recs[1].PricePerKg.StringFixed(2))
	}
	if recs[0].SourceFile != "price_fruit.csv" {
		t.Errorf("SourceFile = %q, want price_fruit.csv", recs[0].SourceFile)
	}

	found := e.Search("an")
	if len(found) != 1 || found[0].Name != "Banana" {
		t.Errorf("Search(%q) = %v, want only Banana", "an", names(found))
	}
}

func TestLoad_SkipsFileWithoutPriceColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price_a.csv", "товар,стоимость,вес\nХлеб,50,0.5\n")
	writeFile(t, dir, "price_b.csv", "товар,цена,вес\nМолоко,90,1\n")

	e := newTestEngine()
	res, err := e.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if res.Records != 1 || e.Len() != 1 {
		t.Fatalf("Records = %d (catalog %d), want 1", res.Records, e.Len())
	}
	if len(res.Skipped) != 1 || res.Skipped[0].File != "price_a.csv" {
		t.Fatalf("Skipped = %v, want price_a.csv", res.Skipped)
	}

	var fileDiag *Diagnostic
	for i := range res.Diagnostics {
		if res.Diagnostics[i].Kind == KindFileSkip {
			fileDiag = &res.Diagnostics[i]
		}
	}
	if fileDiag == nil {
		t.Fatal("expected a file skip diagnostic")
	}
	if !errors.Is(fileDiag.Err, ErrHeadersUnresolved) {
		t.Errorf("diagnostic error = %v, want ErrHeadersUnresolved", fileDiag.Err)
	}
	if MapDiagnostic(*fileDiag).Code != "VAL004" {
		t.Errorf("code = %q, want VAL004", MapDiagnostic(*fileDiag).Code)
	}
	if !strings.Contains(res.Skipped[0].Reason, "price (цена|розница)") {
		t.Errorf("Reason = %q, want accepted price headers listed", res.Skipped[0].Reason)
	}
}

func TestLoad_RejectsHugeExponents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price_exp.csv", "товар,цена,вес\n"+
		"Пыль,100,1e-50000000\n"+
		"Золото,1e50000000,1\n"+
		"Мёд,500,1e0\n")

	e := newTestEngine()
	res, err := e.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	recs := e.Records()
	if len(recs) != 1 || recs[0].Name != "Мёд" {
		t.Fatalf("records = %v, want [Мёд]", names(recs))
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v, want 2", res.Diagnostics)
	}
	for i, d := range res.Diagnostics {
		if !errors.Is(d.Err, ErrInvalidNumber) {
			t.Errorf("diag[%d] = %v, want ErrInvalidNumber", i, d)
		}
	}
}

func TestLoad_LogsReplacedBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price_latin.csv", "товар,цена,вес\nCaf\xe9,120,0.5\n")

	var buf bytes.Buffer
	e := NewEngine(WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	if _, err := e.Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if e.Len() != 1 || e.Records()[0].Name != "Caf\uFFFD" {
		t.Fatalf("records = %v", names(e.Records()))
	}
	out := buf.String()
	if !strings.Contains(out, `msg="invalid UTF-8 replaced"`) || !strings.Contains(out, "replaced=1") {
		t.Errorf("missing replacement warning:\n%s", out)
	}
	if !strings.Contains(out, "bytes=") {
		t.Errorf("missing byte count:\n%s", out)
	}
}

func TestLoad_RowFaultTolerance(t *testing.T) {
	dir := t.TempDir()
	content := "Наименование,Розница,Фасовка\n" +
		",,\n" + // empty name
		"Сахар,80,1\n" +
		"Соль\n" + // short row
		"Мука,abc,2\n" + // bad price
		"Крупа,40,zero\n" + // bad weight
		"Вода,30,0\n" + // zero weight
		"Лёд,-5,1\n" + // negative price
		"  Чай  , 300 , 0.25 \n"
	writeFile(t, dir, "prices.csv", content)

	e := newTestEngine()
	res, err := e.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	recs := e.Records()
	if len(recs) != 2 {
		t.Fatalf("records = %v, want [Сахар Чай]", names(recs))
	}
	if recs[0].Name != "Сахар" || recs[1].Name != "Чай" {
		t.Errorf("records = %v, want [Сахар Чай]", names(recs))
	}
	if recs[1].PricePerKg.StringFixed(2) != "1200.00" {
		t.Errorf("Чай price per kg = %s, want 1200.00", recs[1].PricePerKg.StringFixed(2))
	}
	if res.RowsSkipped != 6 {
		t.Errorf("RowsSkipped = %d, want 6", res.RowsSkipped)
	}

	wantErrs := []error{ErrInvalidNumber, ErrInvalidNumber, ErrNonPositiveWeight, ErrNegativePrice}
	wantLines := []int{5, 6, 7, 8}
	if len(res.Diagnostics) != len(wantErrs) {
		t.Fatalf("diagnostics = %v, want %d", res.Diagnostics, len(wantErrs))
	}
	for i, d := range res.Diagnostics {
		if d.Kind != KindRowSkip {
			t.Errorf("diag[%d].Kind = %s, want %s", i, d.Kind, KindRowSkip)
		}
		if !errors.Is(d.Err, wantErrs[i]) {
			t.Errorf("diag[%d] = %v, want %v", i, d, wantErrs[i])
		}
		if d.Line != wantLines[i] {
			t.Errorf("diag[%d].Line = %d, want %d", i, d.Line, wantLines[i])
		}
		if d.File != "prices.csv" {
			t.Errorf("diag[%d].File = %q, want prices.csv", i, d.File)
		}
	}

	for _, r := range recs {
		if !r.Weight.IsPositive() {
			t.Errorf("record %q has weight %s", r.Name, r.Weight)
		}
		if !r.PricePerKg.Equal(PricePerKg(r.Price, r.Weight)) {
			t.Errorf("record %q price per kg = %s, want %s", r.Name, r.PricePerKg, PricePerKg(r.Price, r.Weight))
		}
	}
}

func TestLoad_EmptyAndHeaderOnlyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price_empty.csv", "")
	writeFile(t, dir, "price_header.csv", "товар,цена,вес\n")

	e := newTestEngine()
	res, err := e.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(res.Skipped) != 1 || res.Skipped[0].File != "price_empty.csv" {
		t.Errorf("Skipped = %v, want price_empty.csv", res.Skipped)
	}
	if len(res.Files) != 1 || res.Files[0] != "price_header.csv" {
		t.Errorf("Files = %v, want price_header.csv", res.Files)
	}
	if e.Len() != 0 {
		t.Errorf("Len() = %d, want 0", e.Len())
	}
}

func TestLoad_BOMAndQuotedCells(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price_bom.csv", "\uFEFFНазвание,Цена,Масса\n\"Сыр, твёрдый\",\"450.50\",0.5\n")

	e := newTestEngine()
	if _, err := e.Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	recs := e.Records()
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Name != "Сыр, твёрдый" {
		t.Errorf("Name = %q, want %q", recs[0].Name, "Сыр, твёрдый")
	}
	if recs[0].PricePerKg.StringFixed(2) != "901.00" {
		t.Errorf("PricePerKg = %s, want 901.00", recs[0].PricePerKg.StringFixed(2))
	}
}

func TestLoad_InsertionOrderAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_price.csv", "товар,цена,вес\nB1,1,1\nB2,2,1\n")
	writeFile(t, dir, "a_price.csv", "вес,товар,цена\n1,A1,5\n")

	e := newTestEngine()
	if _, err := e.Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := names(e.Records())
	want := []string{"A1", "B1", "B2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("records = %v, want %v", got, want)
		}
	}
}

func TestLoad_MaxNameLength(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price.csv", "товар,цена,вес\nЯблоко,10,1\nАбрикос сушёный,20,1\n")

	e := newTestEngine()
	if _, err := e.Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := e.MaxNameLength(); got != 15 {
		t.Errorf("MaxNameLength() = %d, want 15", got)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	e := newTestEngine()
	_, err := e.Load(filepath.Join(t.TempDir(), "missing"))
	if !IsKind(err, KindFileSystem) {
		t.Fatalf("Load() error = %v, want filesystem error", err)
	}
	if MapError(err).Code != "FILE006" {
		t.Errorf("code = %q, want FILE006", MapError(err).Code)
	}
}

func TestLoad_Accumulates(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	writeFile(t, dir1, "price.csv", "товар,цена,вес\nA,1,1\n")
	writeFile(t, dir2, "price.csv", "товар,цена,вес\nB,2,1\n")
	writeFile(t, dir2, "price_bad.csv", "x,y,z\n")

	e := newTestEngine()
	if _, err := e.Load(dir1); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Load(dir2); err != nil {
		t.Fatal(err)
	}

	s := e.Summary()
	if s.Records != 2 || len(s.Files) != 2 || len(s.Skipped) != 1 {
		t.Errorf("Summary() = %+v, want 2 records, 2 files, 1 skipped", s)
	}
}

func names(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}
