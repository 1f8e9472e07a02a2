package types

// Config holds the sync settings. It can be loaded from a TOML, YAML or JSON
// file and is then overridden by environment variables.
type Config struct {
	PortClientID          string            `json:"port_client_id" yaml:"port_client_id" toml:"port_client_id"`
	PortClientSecret      string            `json:"port_client_secret" yaml:"port_client_secret" toml:"port_client_secret"`
	PortBaseURL           string            `json:"port_base_url" yaml:"port_base_url" toml:"port_base_url"`
	PortBlueprint         string            `json:"port_blueprint" yaml:"port_blueprint" toml:"port_blueprint"`
	PortResourceBlueprint string            `json:"port_resource_blueprint" yaml:"port_resource_blueprint" toml:"port_resource_blueprint"`
	PortAccountRelation   string            `json:"port_account_relation" yaml:"port_account_relation" toml:"port_account_relation"`
	PortMaxWorkers        int               `json:"port_max_workers" yaml:"port_max_workers" toml:"port_max_workers"`
	PortMonthsToKeep      int               `json:"port_months_to_keep" yaml:"port_months_to_keep" toml:"port_months_to_keep"`
	PortRequestTimeout    int               `json:"port_request_timeout_seconds" yaml:"port_request_timeout_seconds" toml:"port_request_timeout_seconds"`
	PortMaxRetries        int               `json:"port_max_retries" yaml:"port_max_retries" toml:"port_max_retries"`
	AWSProfile            string            `json:"aws_profile" yaml:"aws_profile" toml:"aws_profile"`
	AWSRegion             string            `json:"aws_region" yaml:"aws_region" toml:"aws_region"`
	AWSBucketName         string            `json:"aws_bucket_name" yaml:"aws_bucket_name" toml:"aws_bucket_name"`
	AWSReportPrefix       string            `json:"aws_cost_report_s3_path_prefix" yaml:"aws_cost_report_s3_path_prefix" toml:"aws_cost_report_s3_path_prefix"`
	AWSReportSuffix       string            `json:"aws_cost_report_s3_key_suffix" yaml:"aws_cost_report_s3_key_suffix" toml:"aws_cost_report_s3_key_suffix"`
	AWSLastModifiedDays   int               `json:"aws_cost_report_last_modified_days" yaml:"aws_cost_report_last_modified_days" toml:"aws_cost_report_last_modified_days"`
	SyncCloudResources    bool              `json:"sync_cloud_resources" yaml:"sync_cloud_resources" toml:"sync_cloud_resources"`
	SyncReconcile         bool              `json:"sync_reconcile" yaml:"sync_reconcile" toml:"sync_reconcile"`
	TagColumns            map[string]string `json:"tag_columns" yaml:"tag_columns" toml:"tag_columns"`
	PushgatewayURL        string            `json:"prometheus_pushgateway_url" yaml:"prometheus_pushgateway_url" toml:"prometheus_pushgateway_url"`
	LogFormat             string            `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		PortBaseURL:           "https://api.getport.io/v1",
		PortBlueprint:         "awsCost",
		PortResourceBlueprint: "awsCloudResource",
		PortAccountRelation:   "account",
		PortMaxWorkers:        5,
		PortMonthsToKeep:      3,
		PortRequestTimeout:    30,
		PortMaxRetries:        5,
		AWSReportPrefix:       "cost-reports/aws-monthly-cost-report-for-port",
		AWSReportSuffix:       ".csv.gz",
		AWSLastModifiedDays:   1,
		SyncCloudResources:    true,
		LogFormat:             "text",
	}
}
