package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/diillson/aws-cur-sync/internal/application/usecase"
	"github.com/diillson/aws-cur-sync/internal/domain/entity"
	"github.com/diillson/aws-cur-sync/internal/domain/repository"
	"github.com/diillson/aws-cur-sync/internal/shared/types"
	"github.com/diillson/aws-cur-sync/pkg/version"
)

// Syncer runs one sync.
type Syncer interface {
	Run(ctx context.Context, opts usecase.SyncOptions) (entity.SyncSummary, error)
}

// SyncFactory builds the sync for a resolved configuration. The run id is
// shared by the console and the summary.
type SyncFactory func(ctx context.Context, cfg *types.Config, runID string) (Syncer, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	newSync    SyncFactory
	version    string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, newSync SyncFactory) *CLIApp {
	app := &CLIApp{
		configRepo: configRepo,
		newSync:    newSync,
		version:    versionStr,
	}

	rootCmd := &cobra.Command{
		Use:   "aws-cur-sync",
		Short: "Sync AWS Cost and Usage Reports into the Port catalog",
		Long: "Reads the AWS Cost and Usage Report files from S3, rolls the line items up\n" +
			"per resource and billing period, upserts them into Port and deletes the\n" +
			"entities older than the retention window.",
		Version:      version.FormatVersion(),
		SilenceUsage: true,
		RunE:         app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "aws-cur-sync version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringP("profile", "p", "", "AWS profile to use (default: SDK credential chain)")
	flags.StringP("region", "r", "", "AWS region of the report bucket")
	flags.StringP("bucket", "b", "", "S3 bucket holding the cost reports (AWS_BUCKET_NAME)")
	flags.String("prefix", "", "S3 key prefix of the cost reports (AWS_COST_REPORT_S3_PATH_PREFIX)")
	flags.IntP("max-workers", "w", 0, "Concurrent catalog calls (PORT_MAX_WORKERS)")
	flags.IntP("months", "m", 0, "Months of cost entities to keep in the catalog (PORT_MONTHS_TO_KEEP)")
	flags.Bool("dry-run", false, "Aggregate and report without writing to the catalog")
	flags.Bool("skip-delete", false, "Do not delete entities older than the retention window")
	flags.Bool("reconcile", false, "Compare the report totals with Cost Explorer per billing period")
	flags.StringP("log-format", "l", "", "Console output: text or json (LOG_FORMAT)")
	flags.StringP("report-name", "n", "", "Base name of the summary report file (without extension)")
	flags.StringSliceP("report-type", "y", []string{"csv"}, "Summary report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// SetArgs overrides the command-line arguments.
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()
	configFile, _ := flags.GetString("config-file")
	profile, _ := flags.GetString("profile")
	region, _ := flags.GetString("region")
	bucket, _ := flags.GetString("bucket")
	prefix, _ := flags.GetString("prefix")
	maxWorkers, _ := flags.GetInt("max-workers")
	months, _ := flags.GetInt("months")
	dryRun, _ := flags.GetBool("dry-run")
	skipDelete, _ := flags.GetBool("skip-delete")
	reconcile, _ := flags.GetBool("reconcile")
	logFormat, _ := flags.GetString("log-format")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")

	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	} else {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	return &types.CLIArgs{
		ConfigFile: configFile,
		Profile:    profile,
		Region:     region,
		Bucket:     bucket,
		Prefix:     prefix,
		MaxWorkers: maxWorkers,
		Months:     months,
		DryRun:     dryRun,
		SkipDelete: skipDelete,
		Reconcile:  reconcile,
		LogFormat:  logFormat,
		ReportName: reportName,
		ReportType: reportType,
		Dir:        dir,
	}, nil
}

// resolveConfig aplica, em ordem: valores padrão, arquivo, ambiente e flags.
func (app *CLIApp) resolveConfig(args *types.CLIArgs) (*types.Config, error) {
	cfg := types.DefaultConfig()

	var err error
	if args.ConfigFile != "" {
		if cfg, err = app.configRepo.LoadConfigFile(args.ConfigFile, cfg); err != nil {
			return nil, err
		}
	}
	if cfg, err = app.configRepo.LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	flags := app.rootCmd.Flags()
	if flags.Changed("profile") {
		cfg.AWSProfile = args.Profile
	}
	if flags.Changed("region") {
		cfg.AWSRegion = args.Region
	}
	if flags.Changed("bucket") {
		cfg.AWSBucketName = args.Bucket
	}
	if flags.Changed("prefix") {
		cfg.AWSReportPrefix = args.Prefix
	}
	if flags.Changed("max-workers") {
		cfg.PortMaxWorkers = args.MaxWorkers
	}
	if flags.Changed("months") {
		cfg.PortMonthsToKeep = args.Months
	}
	if flags.Changed("reconcile") {
		cfg.SyncReconcile = args.Reconcile
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = args.LogFormat
	}

	if err := app.configRepo.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, _ []string) error {
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}
	cfg, err := app.resolveConfig(cliArgs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.LogFormat == "text" {
		displayWelcomeBanner(cmd.OutOrStdout())
		go checkLatestVersion(ctx, cmd.ErrOrStderr(), app.version)
	}

	syncer, err := app.newSync(ctx, cfg, uuid.NewString())
	if err != nil {
		return err
	}
	_, err = syncer.Run(ctx, usecase.NewSyncOptions(cfg, cliArgs))
	return err
}
