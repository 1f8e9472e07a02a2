package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/diillson/aws-cur-sync/internal/domain/repository"
	"github.com/diillson/aws-cur-sync/internal/shared/types"
)

// Environment variables read by LoadFromEnv.
const (
	EnvPortClientID          = "PORT_CLIENT_ID"
	EnvPortClientSecret      = "PORT_CLIENT_SECRET"
	EnvPortBaseURL           = "PORT_BASE_URL"
	EnvPortBlueprint         = "PORT_BLUEPRINT"
	EnvPortResourceBlueprint = "PORT_RESOURCE_BLUEPRINT"
	EnvPortAccountRelation   = "PORT_ACCOUNT_RELATION"
	EnvPortMaxWorkers        = "PORT_MAX_WORKERS"
	EnvPortMonthsToKeep      = "PORT_MONTHS_TO_KEEP"
	EnvPortRequestTimeout    = "PORT_REQUEST_TIMEOUT_SECONDS"
	EnvPortMaxRetries        = "PORT_MAX_RETRIES"
	EnvAWSProfile            = "AWS_PROFILE"
	EnvAWSRegion             = "AWS_REGION"
	EnvAWSBucketName         = "AWS_BUCKET_NAME"
	EnvAWSReportPrefix       = "AWS_COST_REPORT_S3_PATH_PREFIX"
	EnvAWSReportSuffix       = "AWS_COST_REPORT_S3_KEY_SUFFIX"
	EnvAWSLastModifiedDays   = "AWS_COST_REPORT_LAST_MODIFIED_DAYS"
	EnvSyncCloudResources    = "SYNC_CLOUD_RESOURCES"
	EnvSyncReconcile         = "SYNC_RECONCILE"
	EnvSyncTagColumns        = "SYNC_TAG_COLUMNS"
	EnvPushgatewayURL        = "PROMETHEUS_PUSHGATEWAY_URL"
	EnvLogFormat             = "LOG_FORMAT"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	lookupEnv func(string) (string, bool)
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{lookupEnv: os.LookupEnv}
}

// LoadConfigFile carrega um arquivo TOML, YAML ou JSON sobre a configuração base.
// Campos ausentes no arquivo mantêm o valor de base.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string, base *types.Config) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := *base
	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: config file %s", types.ErrUnsupportedFormat, fileExtension)
	}

	return &config, nil
}

// LoadFromEnv sobrescreve a configuração base com as variáveis de ambiente definidas.
func (r *ConfigRepositoryImpl) LoadFromEnv(base *types.Config) (*types.Config, error) {
	config := *base

	strVars := map[string]*string{
		EnvPortClientID:          &config.PortClientID,
		EnvPortClientSecret:      &config.PortClientSecret,
		EnvPortBaseURL:           &config.PortBaseURL,
		EnvPortBlueprint:         &config.PortBlueprint,
		EnvPortResourceBlueprint: &config.PortResourceBlueprint,
		EnvPortAccountRelation:   &config.PortAccountRelation,
		EnvAWSProfile:            &config.AWSProfile,
		EnvAWSRegion:             &config.AWSRegion,
		EnvAWSBucketName:         &config.AWSBucketName,
		EnvAWSReportPrefix:       &config.AWSReportPrefix,
		EnvAWSReportSuffix:       &config.AWSReportSuffix,
		EnvPushgatewayURL:        &config.PushgatewayURL,
		EnvLogFormat:             &config.LogFormat,
	}
	for key, dst := range strVars {
		if v, ok := r.lookupEnv(key); ok {
			*dst = v
		}
	}

	intVars := map[string]*int{
		EnvPortMaxWorkers:      &config.PortMaxWorkers,
		EnvPortMonthsToKeep:    &config.PortMonthsToKeep,
		EnvPortRequestTimeout:  &config.PortRequestTimeout,
		EnvPortMaxRetries:      &config.PortMaxRetries,
		EnvAWSLastModifiedDays: &config.AWSLastModifiedDays,
	}
	for key, dst := range intVars {
		v, ok := r.lookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not an integer", types.ErrInvalidConfig, key, v)
		}
		*dst = n
	}

	boolVars := map[string]*bool{
		EnvSyncCloudResources: &config.SyncCloudResources,
		EnvSyncReconcile:      &config.SyncReconcile,
	}
	for key, dst := range boolVars {
		v, ok := r.lookupEnv(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not a boolean", types.ErrInvalidConfig, key, v)
		}
		*dst = b
	}

	if v, ok := r.lookupEnv(EnvSyncTagColumns); ok && v != "" {
		cols, err := parseTagColumns(v)
		if err != nil {
			return nil, err
		}
		config.TagColumns = cols
	}

	return &config, nil
}

// Validate verifica as chaves obrigatórias e os limites numéricos.
func (r *ConfigRepositoryImpl) Validate(config *types.Config) error {
	required := []struct {
		key   string
		value string
	}{
		{EnvPortClientID, config.PortClientID},
		{EnvPortClientSecret, config.PortClientSecret},
		{EnvAWSBucketName, config.AWSBucketName},
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			return fmt.Errorf("%w: %s", types.ErrMissingConfig, req.key)
		}
	}

	if config.PortMaxWorkers < 1 {
		return fmt.Errorf("%w: %s must be at least 1", types.ErrInvalidConfig, EnvPortMaxWorkers)
	}
	if config.PortMonthsToKeep < 0 {
		return fmt.Errorf("%w: %s must not be negative", types.ErrInvalidConfig, EnvPortMonthsToKeep)
	}
	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %s=%q (use text or json)", types.ErrInvalidConfig, EnvLogFormat, config.LogFormat)
	}
	return nil
}

// parseTagColumns lê "prop=coluna,prop=coluna".
func parseTagColumns(v string) (map[string]string, error) {
	cols := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, column, ok := strings.Cut(pair, "=")
		if !ok || name == "" || column == "" {
			return nil, fmt.Errorf("%w: %s entry %q, expected property=column", types.ErrInvalidConfig, EnvSyncTagColumns, pair)
		}
		cols[strings.TrimSpace(name)] = strings.TrimSpace(column)
	}
	return cols, nil
}
