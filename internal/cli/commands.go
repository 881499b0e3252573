package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
	"github.com/JonMunkholm/pricemachine/internal/report"
	"github.com/JonMunkholm/pricemachine/internal/web"
)

func searchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search once, or start the interactive session when no query is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.runInteractive(cmd.Context())
			}
			if _, err := a.load(); err != nil {
				return err
			}

			results := a.engine.Search(strings.Join(args, " "))
			a.metrics.ObserveSearch(len(results))
			if len(results) == 0 {
				fmt.Fprintln(a.out, msgNotFound)
				return nil
			}
			return report.WriteTable(a.out, results, report.TableOptions{
				NameWidth: report.NameWidth(a.engine.MaxNameLength()),
			})
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var (
		query string
		out   string
		title string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog, or the records matching --query, to an HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.load(); err != nil {
				return err
			}
			if out == "" {
				out = a.cfg.Export.Path
			}
			if title == "" {
				title = a.cfg.Export.Title
			}

			results := a.engine.Search(query)
			err := report.WriteHTML(cmd.Context(), out, results, title)
			a.metrics.ObserveExport(err)
			if err != nil {
				return err
			}

			a.logger.Info("report written", "path", out, "records", len(results))
			fmt.Fprintf(a.out, "Отчёт сохранён: %s (%d позиций)\n", out, len(results))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "only export records whose name contains this text")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: export path from config)")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	return cmd
}

func filesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List discovered price files and any load problems",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			res, err := a.load()
			if err != nil {
				return err
			}
			printLoad(a, res)
			return nil
		},
	}
}

func printLoad(a *app, res *catalog.LoadResult) {
	r := lipgloss.NewRenderer(a.out)
	ok := r.NewStyle().Foreground(lipgloss.Color("2")).Render("OK  ")
	skip := r.NewStyle().Foreground(lipgloss.Color("1")).Render("SKIP")
	dim := r.NewStyle().Faint(true)

	fmt.Fprintf(a.out, "Каталог: %s\n", displayDir(res.Dir))
	for _, f := range res.Files {
		fmt.Fprintf(a.out, "%s %s\n", ok, f)
	}
	for _, f := range res.Skipped {
		fmt.Fprintf(a.out, "%s %s %s\n", skip, f.File, dim.Render("("+f.Reason+")"))
	}

	rowDiags := 0
	for _, d := range res.Diagnostics {
		if d.Kind == catalog.KindRowSkip {
			rowDiags++
		}
	}
	if rowDiags > 0 {
		fmt.Fprintln(a.out, "\nПропущенные строки:")
		for _, d := range res.Diagnostics {
			if d.Kind != catalog.KindRowSkip {
				continue
			}
			fmt.Fprintf(a.out, "  %s %s\n", d.Error(), dim.Render("["+catalog.MapDiagnostic(d).Code+"]"))
		}
	}

	fmt.Fprintf(a.out, "\nПозиций: %d, пропущено строк: %d\n", res.Records, res.RowsSkipped)
}

func displayDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func serveCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog as a read-only HTML report and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if _, err := a.load(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default: from config)")
	return cmd
}

// serve runs the HTTP view until ctx is cancelled or the listener fails.
func (a *app) serve(ctx context.Context) error {
	srv := web.NewServer(web.Deps{
		Engine:  a.engine,
		Metrics: a.metrics,
		Title:   a.cfg.Export.Title,
	}, a.cfg.Server)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
