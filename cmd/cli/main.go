package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gocredit/adapters/excel"
	"gocredit/adapters/report"
	"gocredit/domain/dataset"
	"gocredit/internal"
	"gocredit/internal/config"
	"gocredit/ports"
)

// session is shared by every subcommand once the root has loaded config
type session struct {
	cfg    *config.Config
	log    *internal.Logger
	reader ports.TableReader
}

var (
	rt         session
	configPath string
	outPath    string
	asJSON     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gocredit",
		Short: "PD rating model development and validation toolkit",
		Long: `Build master scales, rank predictors, calibrate PDs and run the
validation suite on CSV or XLSX portfolios.

Parameters come from defaults, an optional YAML file (--config or
GOCREDIT_CONFIG), then environment variables; a .env file in the working
directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("loading .env: %w", err)
			}
			if configPath == "" {
				configPath = os.Getenv("GOCREDIT_CONFIG")
			}
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			log := internal.NewLogger(internal.ParseLogLevel(cfg.Runtime.LogLevel))
			rt = session{
				cfg:    cfg,
				log:    log,
				reader: excel.NewDataReader(excel.DefaultExcelConfig(), log),
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "write the report to this .xlsx file instead of the console")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	rootCmd.AddCommand(
		newMasterScaleCmd(),
		newIVCmd(),
		newWOECmd(),
		newGiniCmd(),
		newValidateCmd(),
		newPSICmd(),
		newCalibrateCmd(),
		newProfileCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func load(ctx context.Context, path string) (*dataset.Table, error) {
	t, err := rt.reader.ReadTable(ctx, path)
	if err != nil {
		return nil, err
	}
	rt.log.Info("loaded %s: %d records, %d columns", path, t.Len(), len(t.Names()))
	return t, nil
}

func writer() ports.ReportWriter {
	if outPath != "" {
		return excel.NewReportWriter(outPath, rt.log)
	}
	return report.NewConsoleWriter(os.Stdout, asJSON)
}

func emit(ctx context.Context, rep ports.Report) error {
	return writer().WriteReport(ctx, rep)
}
