package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/diillson/aws-cur-sync/internal/adapter/driven/aws"
	"github.com/diillson/aws-cur-sync/internal/adapter/driven/config"
	"github.com/diillson/aws-cur-sync/internal/adapter/driven/export"
	"github.com/diillson/aws-cur-sync/internal/adapter/driven/metrics"
	"github.com/diillson/aws-cur-sync/internal/adapter/driven/port"
	"github.com/diillson/aws-cur-sync/internal/adapter/driving/cli"
	"github.com/diillson/aws-cur-sync/internal/application/usecase"
	"github.com/diillson/aws-cur-sync/internal/shared/types"
	"github.com/diillson/aws-cur-sync/pkg/console"
	"github.com/diillson/aws-cur-sync/pkg/version"
)

func main() {
	app := cli.NewCLIApp(version.Version, config.NewConfigRepository(), newSync)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newSync monta os repositórios a partir da configuração resolvida.
func newSync(ctx context.Context, cfg *types.Config, runID string) (cli.Syncer, error) {
	var out types.ConsoleInterface = console.NewConsole().WithRunID(runID)
	if cfg.LogFormat == "json" {
		out = console.NewStructuredConsole(os.Stdout, runID)
	}

	awsCfg, err := aws.LoadAWSConfig(ctx, cfg.AWSProfile, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}

	catalog := port.NewPortRepository(port.Options{
		BaseURL:      cfg.PortBaseURL,
		ClientID:     cfg.PortClientID,
		ClientSecret: cfg.PortClientSecret,
		Timeout:      time.Duration(cfg.PortRequestTimeout) * time.Second,
		MaxRetries:   cfg.PortMaxRetries,
	})

	return usecase.NewSyncUseCase(
		aws.NewS3Repository(awsCfg),
		catalog,
		aws.NewAWSRepository(awsCfg),
		export.NewExportRepository(),
		metrics.NewWithRegistry(prometheus.NewRegistry(), cfg.PushgatewayURL),
		out,
	).WithRunID(runID), nil
}
