package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/guardian/internal/infra/storage/postgres"
)

var (
	incidentLimit int
	showSummary   bool
)

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "List recent incidents from the PostgreSQL journal",
	RunE:  runIncidents,
}

func init() {
	incidentsCmd.Flags().IntVar(&incidentLimit, "limit", 20, "number of incidents to show")
	incidentsCmd.Flags().BoolVar(&showSummary, "summary", false, "show counts per category instead")
	rootCmd.AddCommand(incidentsCmd)
}

func runIncidents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("database.url is not configured")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()
	repo := postgres.NewIncidentRepo(db)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', tabwriter.Debug)

	if showSummary {
		counts, err := repo.CountByCategory(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "CATEGORY\tCOUNT")
		for category, n := range counts {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", category, n)
		}
		return w.Flush()
	}

	incidents, err := repo.Recent(ctx, incidentLimit)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "OCCURRED\tFINGERPRINT\tSEVERITY\tSERVICE\tRECOVERY\tMESSAGE")
	for _, inc := range incidents {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			inc.OccurredAt.Format(time.RFC3339), inc.Fingerprint, inc.Severity,
			inc.Service, inc.RecoveryAction, inc.Message)
	}
	return w.Flush()
}
