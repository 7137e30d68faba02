// Command woomigrate copies a WooCommerce catalog into the destination
// shop schema. It runs the import tasks once, in dependency order; the
// exit status reflects the success of the whole sequence.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"woomigrate/pkg/config"
	"woomigrate/pkg/logging"
	"woomigrate/pkg/migration"
	"woomigrate/pkg/migration/tasks"
	"woomigrate/pkg/repository"
	"woomigrate/pkg/wordpress"
)

var (
	configPath string
	dryRun     bool
	only       []string
)

func main() {
	root := &cobra.Command{
		Use:           "woomigrate",
		Short:         "One-time WooCommerce catalog import",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the import tasks in dependency order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd)
		},
	}
	run.Flags().StringVar(&configPath, "config", "", "path to the configuration file")
	run.Flags().BoolVar(&dryRun, "dry-run", false, "roll every task back instead of committing")
	run.Flags().StringSliceVar(&only, "tasks", nil, "restrict the run to the named tasks plus their dependencies")
	root.AddCommand(run)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Level(cfg.Logging.Level), cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	src, err := wordpress.Open(cfg.Source.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to legacy database: %w", err)
	}
	defer src.Close()

	db, err := gorm.Open(postgres.Open(cfg.Destination.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to destination database: %w", err)
	}

	reg := repository.NewRegistry(db)
	defer reg.Close()

	if err := reg.Migrate(); err != nil {
		return err
	}
	reg.SetDryRun(dryRun)

	ic := migration.ImportContext{
		LanguageID: cfg.Import.LanguageID,
		CurrencyID: cfg.Import.CurrencyID,
		SiteID:     cfg.Import.SiteID,
		RunID:      uuid.New(),
	}

	log.Info("starting catalog import",
		zap.String("run_id", ic.RunID.String()),
		zap.String("site", ic.SiteID),
		zap.Bool("dry_run", dryRun))

	runner := migration.NewRunner(log,
		tasks.NewAttributeTypes(src, reg, log, ic),
		tasks.NewAttributes(src, reg, log, ic),
		tasks.NewBrands(src, reg, log, ic),
		tasks.NewCategories(src, reg, log, ic),
		tasks.NewProducts(src, reg, log, ic),
		tasks.NewExtraOptions(src, reg, log, ic),
	)
	return runner.Run(cmd.Context(), only...)
}
