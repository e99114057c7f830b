package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	redisclient "github.com/vietddude/guardian/internal/infra/redis"
)

var clearStats bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show error statistics mirrored to Redis",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&clearStats, "clear", false, "clear the mirrored statistics")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is not configured")
	}

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	store := redisclient.NewStatsStore(client)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	if clearStats {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Error statistics cleared")
		return nil
	}

	stats, err := store.Snapshot(ctx)
	if err != nil {
		return err
	}

	fingerprints := make([]string, 0, len(stats))
	for fp := range stats {
		fingerprints = append(fingerprints, fp)
	}
	sort.Slice(fingerprints, func(i, j int) bool {
		return stats[fingerprints[i]].Count > stats[fingerprints[j]].Count
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FINGERPRINT\tCOUNT\tLAST SEEN")
	for _, fp := range fingerprints {
		s := stats[fp]
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", fp, s.Count, s.LastSeen.Format(time.RFC3339))
	}
	return w.Flush()
}
