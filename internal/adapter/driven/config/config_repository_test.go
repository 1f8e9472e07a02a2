package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-cur-sync/internal/shared/types"
)

func envRepo(env map[string]string) *ConfigRepositoryImpl {
	return &ConfigRepositoryImpl{lookupEnv: func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	repo := envRepo(map[string]string{
		EnvPortClientID:     "id",
		EnvPortClientSecret: "secret",
		EnvAWSBucketName:    "billing",
	})

	cfg, err := repo.LoadFromEnv(types.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, repo.Validate(cfg))

	assert.Equal(t, "https://api.getport.io/v1", cfg.PortBaseURL)
	assert.Equal(t, "awsCost", cfg.PortBlueprint)
	assert.Equal(t, 5, cfg.PortMaxWorkers)
	assert.Equal(t, 3, cfg.PortMonthsToKeep)
	assert.Equal(t, "cost-reports/aws-monthly-cost-report-for-port", cfg.AWSReportPrefix)
	assert.Equal(t, ".csv.gz", cfg.AWSReportSuffix)
	assert.True(t, cfg.SyncCloudResources)
	assert.False(t, cfg.SyncReconcile)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	repo := envRepo(map[string]string{
		EnvPortClientID:        "id",
		EnvPortClientSecret:    "secret",
		EnvAWSBucketName:       "billing",
		EnvPortBaseURL:         "https://api.us.getport.io/v1",
		EnvPortMaxWorkers:      "12",
		EnvPortMonthsToKeep:    "6",
		EnvSyncCloudResources:  "false",
		EnvSyncReconcile:       "1",
		EnvSyncTagColumns:      "team=resourceTags/user:team, owner=resourceTags/user:owner",
		EnvAWSLastModifiedDays: "",
	})

	cfg, err := repo.LoadFromEnv(types.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "https://api.us.getport.io/v1", cfg.PortBaseURL)
	assert.Equal(t, 12, cfg.PortMaxWorkers)
	assert.Equal(t, 6, cfg.PortMonthsToKeep)
	assert.Equal(t, 1, cfg.AWSLastModifiedDays)
	assert.False(t, cfg.SyncCloudResources)
	assert.True(t, cfg.SyncReconcile)
	assert.Equal(t, map[string]string{
		"team":  "resourceTags/user:team",
		"owner": "resourceTags/user:owner",
	}, cfg.TagColumns)
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		key  string
	}{
		{"workers", map[string]string{EnvPortMaxWorkers: "many"}, EnvPortMaxWorkers},
		{"reconcile", map[string]string{EnvSyncReconcile: "maybe"}, EnvSyncReconcile},
		{"tag columns", map[string]string{EnvSyncTagColumns: "team"}, EnvSyncTagColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := envRepo(tt.env).LoadFromEnv(types.DefaultConfig())
			require.ErrorIs(t, err, types.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		key  string
	}{
		{"client id", map[string]string{EnvPortClientSecret: "s", EnvAWSBucketName: "b"}, EnvPortClientID},
		{"client secret", map[string]string{EnvPortClientID: "i", EnvAWSBucketName: "b"}, EnvPortClientSecret},
		{"bucket", map[string]string{EnvPortClientID: "i", EnvPortClientSecret: "s"}, EnvAWSBucketName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := envRepo(tt.env)
			cfg, err := repo.LoadFromEnv(types.DefaultConfig())
			require.NoError(t, err)

			err = repo.Validate(cfg)
			require.ErrorIs(t, err, types.ErrMissingConfig)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate_Bounds(t *testing.T) {
	repo := envRepo(nil)
	cfg := types.DefaultConfig()
	cfg.PortClientID, cfg.PortClientSecret, cfg.AWSBucketName = "i", "s", "b"

	cfg.PortMaxWorkers = 0
	assert.ErrorIs(t, repo.Validate(cfg), types.ErrInvalidConfig)

	cfg.PortMaxWorkers = 1
	cfg.LogFormat = "xml"
	assert.ErrorIs(t, repo.Validate(cfg), types.ErrInvalidConfig)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"sync.yaml": "aws_bucket_name: from-yaml\nport_max_workers: 8\ntag_columns:\n  team: resourceTags/user:team\n",
		"sync.toml": "aws_bucket_name = \"from-toml\"\nport_max_workers = 8\n\n[tag_columns]\nteam = \"resourceTags/user:team\"\n",
		"sync.json": `{"aws_bucket_name": "from-json", "port_max_workers": 8, "tag_columns": {"team": "resourceTags/user:team"}}`,
	}

	repo := NewConfigRepository()
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			cfg, err := repo.LoadConfigFile(path, types.DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, "from-"+filepath.Ext(name)[1:], cfg.AWSBucketName)
			assert.Equal(t, 8, cfg.PortMaxWorkers)
			assert.Equal(t, "resourceTags/user:team", cfg.TagColumns["team"])
			// Untouched fields keep their defaults.
			assert.Equal(t, "awsCost", cfg.PortBlueprint)
		})
	}
}

func TestLoadConfigFile_Errors(t *testing.T) {
	dir := t.TempDir()
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(filepath.Join(dir, "missing.yaml"), types.DefaultConfig())
	assert.Error(t, err)

	_, err = repo.LoadConfigFile(dir, types.DefaultConfig())
	assert.Error(t, err)

	ini := filepath.Join(dir, "sync.ini")
	require.NoError(t, os.WriteFile(ini, []byte("a=b"), 0o600))
	_, err = repo.LoadConfigFile(ini, types.DefaultConfig())
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
}
