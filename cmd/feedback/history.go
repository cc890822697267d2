package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/assignment-feedback/internal/common"
	"github.com/joseph-ayodele/assignment-feedback/internal/report"
	"github.com/joseph-ayodele/assignment-feedback/internal/repository"
)

func newHistoryCmd() *cobra.Command {
	var (
		sha   string
		since string
		limit int
		xlsx  string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or export past analyses recorded in DB_URL",
	}

	filter := func() (repository.ListFilter, error) {
		f := repository.ListFilter{DocumentSHA256: sha, Limit: limit}
		if since != "" {
			t, err := time.Parse("2006-01-02", since)
			if err != nil {
				return f, common.NewAppError("INVALID_INPUT", "--since must be YYYY-MM-DD", err)
			}
			f.Since = &t
		}
		return f, nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print recorded analyses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filter()
			if err != nil {
				return err
			}
			repo, closeFn, err := historyRepo(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := repo.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tANALYZED\tDOCUMENT\tSTRATEGY\tGRADE\tSCORE")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f\n", r.RunID, r.StartedAt.Format("2006-01-02 15:04"),
					r.DocumentName, r.Strategy, r.Assessment.Grade, r.Assessment.Score)
			}
			return w.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the report of one recorded analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return common.NewAppError("INVALID_INPUT", "invalid run id", err)
			}
			repo, closeFn, err := historyRepo(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := repo.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.Markdown(res))
			return err
		},
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write recorded analyses to an XLSX workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filter()
			if err != nil {
				return err
			}
			repo, closeFn, err := historyRepo(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := repo.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			b, err := report.XLSX(results)
			if err != nil {
				return err
			}
			if err := os.WriteFile(xlsx, b, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d analyses to %s\n", len(results), xlsx)
			return nil
		},
	}
	export.Flags().StringVarP(&xlsx, "out", "o", "feedback-history.xlsx", "workbook path")

	for _, c := range []*cobra.Command{list, export} {
		c.Flags().StringVar(&sha, "sha256", "", "only runs of the document with this SHA-256")
		c.Flags().StringVar(&since, "since", "", "only runs on or after this date (YYYY-MM-DD)")
		c.Flags().IntVar(&limit, "limit", 50, "maximum number of runs")
	}
	cmd.AddCommand(list, show, export)
	return cmd
}

func historyRepo(cmd *cobra.Command) (repository.AnalysisRepository, func(), error) {
	cfg := common.LoadConfig()
	if cfg.Store.DSN == "" {
		return nil, nil, common.NewAppError("CONFIG_ERROR", "DB_URL is required for history commands", common.ErrInvalidInput)
	}
	logger := slog.Default()
	db, err := openStore(cmd.Context(), cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewAnalysisRepository(db, logger), func() { repository.Close(db, logger) }, nil
}
