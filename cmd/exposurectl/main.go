// Command exposurectl runs one-shot maintenance against the exposure queues.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/config"
	"github.com/leasehub/exposure-rotation/internal/db"
	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/repository"
	"github.com/leasehub/exposure-rotation/internal/rotation"
	"github.com/leasehub/exposure-rotation/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	rootCmd := &cobra.Command{
		Use:           "exposurectl",
		Short:         "Exposure rotation maintenance CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
				return err
			}
			logger.Info("database migrations applied")
			return nil
		},
	}
	rootCmd.AddCommand(migrateCmd)

	compactCmd := &cobra.Command{
		Use:   "compact",
		Short: "Renumber exposure queues densely (all queues unless --queue is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, _ := cmd.Flags().GetString("queue")
			return runCompact(cmd, logger, domain.QueueType(q))
		},
	}
	compactCmd.Flags().String("queue", "", "Queue type: premium|recommended|general|boost")
	rootCmd.AddCommand(compactCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCompact(cmd *cobra.Command, logger *zap.Logger, q domain.QueueType) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CompactionTimeout)
	defer cancel()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := repository.NewPgItemRepository(pool, cfg.PremiumMaxRank)
	svc := service.NewCompactionService(rotation.NewCompactor(repo, logger, rotation.Hooks{}))

	results, err := svc.Compact(ctx, q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}
	for _, r := range results {
		if r.Error != "" {
			return fmt.Errorf("compaction failed for %s", r.Queue)
		}
	}
	return nil
}
