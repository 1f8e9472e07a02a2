package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/diillson/aws-cur-sync/internal/domain/repository"
)

// costExplorerRegion é a única região que atende a API do Cost Explorer.
const costExplorerRegion = "us-east-1"

type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// AWSRepositoryImpl implementa o AWSRepository.
type AWSRepositoryImpl struct {
	sts stsAPI
	ce  costExplorerAPI
}

// LoadAWSConfig carrega a configuração padrão do SDK, opcionalmente com
// profile e região explícitos.
func LoadAWSConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %q: %w", profile, err)
	}
	return cfg, nil
}

// NewAWSRepository cria uma nova implementação do AWSRepository.
func NewAWSRepository(cfg aws.Config) repository.AWSRepository {
	ceCfg := cfg.Copy()
	ceCfg.Region = costExplorerRegion
	return &AWSRepositoryImpl{
		sts: sts.NewFromConfig(cfg),
		ce:  costexplorer.NewFromConfig(ceCfg),
	}
}

func (r *AWSRepositoryImpl) GetAccountID(ctx context.Context) (string, error) {
	result, err := r.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting account ID: %w", err)
	}
	return aws.ToString(result.Account), nil
}

func (r *AWSRepositoryImpl) GetBilledCost(ctx context.Context, start, end time.Time) (float64, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: ceTypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
	}

	var total float64
	for {
		result, err := r.ce.GetCostAndUsage(ctx, input)
		if err != nil {
			return 0, fmt.Errorf("failed to get billed cost for %s: %w", start.Format("2006-01"), err)
		}
		for _, byTime := range result.ResultsByTime {
			val, ok := byTime.Total["UnblendedCost"]
			if !ok || val.Amount == nil {
				continue
			}
			cost, err := strconv.ParseFloat(*val.Amount, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid cost amount %q: %w", *val.Amount, err)
			}
			total += cost
		}
		if result.NextPageToken == nil {
			break
		}
		input.NextPageToken = result.NextPageToken
	}
	return total, nil
}
