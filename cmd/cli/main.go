package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"anilistapi/internal/apiclient"
	"anilistapi/pkg/models"
)

type options struct {
	api     string
	page    int
	perPage int
	csvOut  string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "anilistapi-cli",
		Short:        "Query a running AniList REST API from the terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.api, "api", apiclient.DefaultBaseURL, "API base URL")
	root.PersistentFlags().IntVar(&opts.page, "page", 0, "page number (server default when 0)")
	root.PersistentFlags().IntVar(&opts.perPage, "per-page", 0, "results per page (server default when 0)")
	root.PersistentFlags().StringVar(&opts.csvOut, "csv", "", "write listing results to this CSV file instead of stdout")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		kindCmd(opts, models.KindManga, models.OpTop100, models.OpTrending, models.OpTopManhwa),
		kindCmd(opts, models.KindAnime, models.OpTop100, models.OpTrending),
	)
	return root
}

// kindCmd builds "<kind> <listing...>|search <q>|get <id>".
func kindCmd(opts *options, kind models.Kind, listings ...models.Operation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Browse %s", kind),
	}

	for _, op := range listings {
		cmd.AddCommand(&cobra.Command{
			Use:   string(op),
			Short: fmt.Sprintf("List %s %s", op, kind),
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return runList(c.Context(), opts, kind, op, "")
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: fmt.Sprintf("Search %s by title", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runList(c.Context(), opts, kind, models.OpSearch, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s by AniList id", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			ctx, cancel := withTimeout(c.Context(), opts.timeout)
			defer cancel()

			rec, cached, err := apiclient.New(opts.api).Get(ctx, kind, id)
			if err != nil {
				return err
			}
			if cached {
				fmt.Fprintln(os.Stderr, "(cached)")
			}
			return apiclient.WriteJSON(os.Stdout, rec)
		},
	})

	return cmd
}

func runList(ctx context.Context, opts *options, kind models.Kind, op models.Operation, search string) error {
	ctx, cancel := withTimeout(ctx, opts.timeout)
	defer cancel()

	res, err := apiclient.New(opts.api).List(ctx, kind, op, search, opts.page, opts.perPage)
	if err != nil {
		return err
	}

	if opts.csvOut != "" {
		if err := writeCSVFile(opts.csvOut, res.Results); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("✅ exported %d titles to %s\n", len(res.Results), opts.csvOut)
		return nil
	}

	p := res.Pagination
	fmt.Printf("page %d/%d (%d total, cached=%t)\n", p.CurrentPage, p.LastPage, p.Total, res.Cached)
	for _, m := range res.Results {
		score := lo.TernaryF(m.AverageScore != nil, func() string { return strconv.Itoa(*m.AverageScore) }, func() string { return "-" })
		fmt.Printf("%8d  %-3s  %s\n", m.ID, score, m.DisplayTitle())
	}
	return nil
}

func writeCSVFile(path string, records []models.MediaRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return apiclient.WriteCSV(f, records)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
