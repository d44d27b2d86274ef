package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ruteri/celia-media/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
listen: "127.0.0.1:3000"
presign_expiry_secs: 600
buckets:
  photos:
    endpoint_url: "https://minio.example.com"
    bucket_name: "my-photos"
    access_key:
        env: "AKIA"
    secret_key:
        plain: "secret"
    region: "eu-west-1"
    force_path_style: false
    presign_expiry_secs: 900
  docs:
    endpoint_url: "http://minio.internal:9000"
    bucket_name: "docs"
    access_key:
        env: "AKIA2"
    secret_key:
        path: "/secret2"
    proxy: true
`

func TestParse_ValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:3000", cfg.Listen)
	assert.Equal(t, uint64(600), cfg.PresignExpirySecs)
	assert.Equal(t, 10*time.Minute, cfg.DefaultPresignExpiry())
	assert.Len(t, cfg.Buckets, 2)
	assert.Equal(t, []string{"docs", "photos"}, cfg.TenantNames())

	photos := cfg.Buckets["photos"]
	assert.Equal(t, "https://minio.example.com", photos.EndpointURL)
	assert.Equal(t, "my-photos", photos.BucketName)
	assert.Equal(t, "eu-west-1", photos.Region)
	assert.False(t, photos.ForcePathStyle)
	require.NotNil(t, photos.PresignExpirySecs)
	assert.Equal(t, uint64(900), *photos.PresignExpirySecs)
	assert.False(t, photos.Proxy)
	assert.Equal(t, interfaces.DeliveryModeRedirect, photos.Mode())
	assert.Equal(t, &CredentialRef{Source: CredentialEnv, Value: "AKIA"}, photos.AccessKey)
	assert.Equal(t, &CredentialRef{Source: CredentialPlain, Value: "secret"}, photos.SecretKey)

	docs := cfg.Buckets["docs"]
	assert.True(t, docs.Proxy)
	assert.Equal(t, interfaces.DeliveryModeProxy, docs.Mode())
	assert.Equal(t, "us-east-1", docs.Region)
	assert.True(t, docs.ForcePathStyle)
	assert.Nil(t, docs.PresignExpirySecs)
	assert.Equal(t, &CredentialRef{Source: CredentialEnv, Value: "AKIA2"}, docs.AccessKey)
	assert.Equal(t, &CredentialRef{Source: CredentialPath, Value: "/secret2"}, docs.SecretKey)
}

func TestParse_DefaultsApplied(t *testing.T) {
	cfg, err := Parse([]byte(`
buckets:
  test:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key:
        plain: "key"
    secret_key:
        plain: "secret"
`))
	require.NoError(t, err)

	assert.Equal(t, "[::]:8080", cfg.Listen)
	assert.Equal(t, uint64(300), cfg.PresignExpirySecs)

	bucket := cfg.Buckets["test"]
	assert.Equal(t, "us-east-1", bucket.Region)
	assert.True(t, bucket.ForcePathStyle)
	assert.False(t, bucket.Proxy)
	assert.Nil(t, bucket.PresignExpirySecs)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bucket name given as mapping",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name:
        plain: "test"
    access_key:
        plain: "key"
`,
		},
		{
			name: "missing secret key",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key:
        plain: "key"
`,
		},
		{
			name: "missing endpoint",
			yaml: `
buckets:
  bad:
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key: {plain: "secret"}
`,
		},
		{
			name: "relative endpoint",
			yaml: `
buckets:
  bad:
    endpoint_url: "minio:9000/path"
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key: {plain: "secret"}
`,
		},
		{
			name: "two credential sources",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {plain: "key", env: "KEY"}
    secret_key: {plain: "secret"}
`,
		},
		{
			name: "unknown credential source",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {keychain: "key"}
    secret_key: {plain: "secret"}
`,
		},
		{
			name: "scalar credential",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: "key"
    secret_key: {plain: "secret"}
`,
		},
		{
			name: "zero tenant expiry",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key: {plain: "secret"}
    presign_expiry_secs: 0
`,
		},
		{
			name: "zero default expiry",
			yaml: `
presign_expiry_secs: 0
buckets:
  ok:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key: {plain: "secret"}
`,
		},
		{
			name: "tenant expiry overflowing a duration",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key: {plain: "secret"}
    presign_expiry_secs: 18446744073709551615
`,
		},
		{
			name: "tenant expiry above seven days",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key: {plain: "secret"}
    presign_expiry_secs: 604801
`,
		},
		{
			name: "default expiry above seven days",
			yaml: `
presign_expiry_secs: 9223372037
buckets:
  ok:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key: {plain: "secret"}
`,
		},
		{
			name: "no buckets",
			yaml: `listen: ":8080"`,
		},
		{
			name: "vault without field",
			yaml: `
buckets:
  bad:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key:
      vault: {path: "celia/bad"}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Buckets, 2)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	assert.Equal(t, DefaultConfigPath, PathFromEnv())

	t.Setenv(ConfigPathEnv, "/tmp/celia.yml")
	assert.Equal(t, "/tmp/celia.yml", PathFromEnv())
}

func TestResolveTenants(t *testing.T) {
	secretPath := filepath.Join(t.TempDir(), "secret2")
	require.NoError(t, os.WriteFile(secretPath, []byte("docs-secret"), 0600))

	t.Setenv("CELIA_TEST_AKIA", "photos-key")
	t.Setenv("CELIA_TEST_AKIA2", "docs-key")

	cfg, err := Parse([]byte(`
presign_expiry_secs: 600
buckets:
  photos:
    endpoint_url: "https://minio.example.com"
    bucket_name: "my-photos"
    access_key: {env: "CELIA_TEST_AKIA"}
    secret_key: {plain: "secret"}
    region: "eu-west-1"
    force_path_style: false
    presign_expiry_secs: 900
  docs:
    endpoint_url: "http://minio.internal:9000"
    bucket_name: "docs"
    access_key: {env: "CELIA_TEST_AKIA2"}
    secret_key: {path: "` + secretPath + `"}
    proxy: true
`))
	require.NoError(t, err)

	tenants, err := cfg.ResolveTenants(context.Background(), NewCredentialResolver())
	require.NoError(t, err)
	require.Len(t, tenants, 2)

	docs, photos := tenants[0], tenants[1]
	assert.Equal(t, Tenant{
		Name:           "docs",
		EndpointURL:    "http://minio.internal:9000",
		BucketName:     "docs",
		AccessKey:      "docs-key",
		SecretKey:      "docs-secret",
		Region:         "us-east-1",
		ForcePathStyle: true,
		Mode:           interfaces.DeliveryModeProxy,
	}, docs)

	assert.Equal(t, "photos", photos.Name)
	assert.Equal(t, "photos-key", photos.AccessKey)
	assert.Equal(t, "secret", photos.SecretKey)
	assert.Equal(t, 15*time.Minute, photos.PresignExpiry)
	assert.Equal(t, interfaces.DeliveryModeRedirect, photos.Mode)

	opts := photos.ObjectStoreOptions()
	assert.Equal(t, interfaces.ObjectStoreOptions{
		EndpointURL:    "https://minio.example.com",
		Region:         "eu-west-1",
		Bucket:         "my-photos",
		AccessKey:      "photos-key",
		SecretKey:      "secret",
		ForcePathStyle: false,
	}, opts)
}

func TestResolveTenants_MissingEnvIsFatal(t *testing.T) {
	cfg, err := Parse([]byte(`
buckets:
  photos:
    endpoint_url: "https://minio.example.com"
    bucket_name: "my-photos"
    access_key: {env: "CELIA_TEST_DEFINITELY_UNSET"}
    secret_key: {plain: "secret"}
`))
	require.NoError(t, err)

	_, err = cfg.ResolveTenants(context.Background(), NewCredentialResolver())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photos")
	assert.Contains(t, err.Error(), "CELIA_TEST_DEFINITELY_UNSET")
}

func TestParse_MaxExpiryAccepted(t *testing.T) {
	cfg, err := Parse([]byte(`
presign_expiry_secs: 604800
buckets:
  week:
    endpoint_url: "http://localhost:9000"
    bucket_name: "test"
    access_key: {plain: "key"}
    secret_key: {plain: "secret"}
    presign_expiry_secs: 604800
`))
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.DefaultPresignExpiry())

	tenants, err := cfg.ResolveTenants(context.Background(), NewCredentialResolver())
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, 7*24*time.Hour, tenants[0].PresignExpiry)
}
