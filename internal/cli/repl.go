package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
	"github.com/JonMunkholm/pricemachine/internal/metrics"
	"github.com/JonMunkholm/pricemachine/internal/report"
)

// Console texts.
const (
	promptSearch = "\nВведите текст для поиска (или 'exit' / 'выход' для выхода): "
	promptExport = "Хотите экспортировать данные в HTML файл? (да/нет): "
	promptFile   = "Введите имя выходного HTML файла (например, output.html): "
	msgNotFound  = "Ничего не найдено."
	msgBye       = "\nРабота программы завершена."
)

var (
	exitWords = map[string]bool{"exit": true, "выход": true}
	yesWords  = map[string]bool{"да": true, "д": true, "yes": true, "y": true}
)

// Session is one interactive search loop over a loaded engine.
type Session struct {
	Engine  *catalog.Engine
	Metrics *metrics.Metrics

	// ExportPath is used when the file prompt is answered with an empty line.
	ExportPath string
	Title      string

	in  *bufio.Scanner
	out io.Writer
}

// NewSession reads answers from in and writes prompts and tables to out.
func NewSession(engine *catalog.Engine, in io.Reader, out io.Writer) *Session {
	return &Session{
		Engine:     engine,
		ExportPath: "output.html",
		Title:      report.DefaultTitle,
		in:         bufio.NewScanner(in),
		out:        out,
	}
}

// Run loops until an exit keyword or end of input.
// Each query prints a ranked table and offers to export the whole catalog.
func (s *Session) Run(ctx context.Context) error {
	width := report.NameWidth(s.Engine.MaxNameLength())

	for {
		query, ok := s.prompt(promptSearch)
		if !ok || isExit(query) {
			fmt.Fprintln(s.out, msgBye)
			return s.in.Err()
		}

		results := s.Engine.Search(query)
		s.Metrics.ObserveSearch(len(results))

		if len(results) == 0 {
			fmt.Fprintln(s.out, msgNotFound)
		} else {
			fmt.Fprintln(s.out)
			if err := report.WriteTable(s.out, results, report.TableOptions{NameWidth: width}); err != nil {
				return err
			}
		}

		answer, ok := s.prompt(promptExport)
		if !ok {
			fmt.Fprintln(s.out, msgBye)
			return s.in.Err()
		}
		if !yesWords[strings.ToLower(answer)] {
			continue
		}

		path, ok := s.prompt(promptFile)
		if !ok {
			fmt.Fprintln(s.out, msgBye)
			return s.in.Err()
		}
		if path == "" {
			path = s.ExportPath
		}
		s.export(ctx, path)
	}
}

// export writes every loaded record and reports the outcome. Failures do
// not end the session.
func (s *Session) export(ctx context.Context, path string) {
	records := s.Engine.Records()
	err := report.WriteHTML(ctx, path, records, s.Title)
	s.Metrics.ObserveExport(err)
	if err != nil {
		fmt.Fprintf(s.out, "Не удалось сохранить отчёт: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Отчёт сохранён: %s (%d позиций)\n", path, len(records))
}

func (s *Session) prompt(text string) (string, bool) {
	fmt.Fprint(s.out, text)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func isExit(query string) bool {
	return exitWords[strings.ToLower(query)]
}

func (a *app) runInteractive(ctx context.Context) error {
	res, err := a.load()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Загружено позиций: %d (файлов: %d, пропущено: %d)\n",
		res.Records, len(res.Files), len(res.Skipped))

	s := NewSession(a.engine, a.in, a.out)
	s.Metrics = a.metrics
	s.ExportPath = a.cfg.Export.Path
	s.Title = a.cfg.Export.Title
	return s.Run(ctx)
}
