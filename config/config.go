package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ruteri/celia-media/interfaces"
	"gopkg.in/yaml.v3"
)

// AppConfig is the gateway configuration file.
//
// YAML example:
//
//	listen: "[::]:8080"
//	presign_expiry_secs: 300
//	buckets:
//	  photos:
//	    endpoint_url: "https://minio.example.com"
//	    bucket_name: "my-photos"
//	    access_key:
//	      env: "PHOTOS_ACCESS_KEY"
//	    secret_key:
//	      path: "/run/secrets/photos"
//	    region: "eu-west-1"
//	    force_path_style: false
//	    presign_expiry_secs: 900
//	  docs:
//	    endpoint_url: "http://minio.internal:9000"
//	    bucket_name: "docs"
//	    access_key:
//	      plain: "docs"
//	    secret_key:
//	      vault:
//	        path: "celia/docs"
//	        field: "secret_key"
//	    proxy: true
type AppConfig struct {
	Listen            string                  `yaml:"listen"`
	PresignExpirySecs uint64                  `yaml:"presign_expiry_secs"`
	Buckets           map[string]BucketConfig `yaml:"buckets"`
}

// BucketConfig configures one tenant. The map key in AppConfig.Buckets is the
// tenant name used in request paths.
type BucketConfig struct {
	EndpointURL    string         `yaml:"endpoint_url"`
	BucketName     string         `yaml:"bucket_name"`
	AccessKey      *CredentialRef `yaml:"access_key"`
	SecretKey      *CredentialRef `yaml:"secret_key"`
	Region         string         `yaml:"region"`
	ForcePathStyle bool           `yaml:"force_path_style"`

	// PresignExpirySecs overrides AppConfig.PresignExpirySecs when set.
	PresignExpirySecs *uint64 `yaml:"presign_expiry_secs"`

	// Proxy streams objects through the gateway instead of redirecting.
	Proxy bool `yaml:"proxy"`
}

// UnmarshalYAML applies per-bucket defaults before decoding.
func (b *BucketConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawBucketConfig BucketConfig
	raw := rawBucketConfig{
		Region:         DefaultS3Region,
		ForcePathStyle: DefaultS3ForcePathStyle,
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*b = BucketConfig(raw)
	return nil
}

// Mode returns the delivery mode selected by the proxy flag.
func (b *BucketConfig) Mode() interfaces.DeliveryMode {
	if b.Proxy {
		return interfaces.DeliveryModeProxy
	}
	return interfaces.DeliveryModeRedirect
}

// Tenant is a bucket configuration with credentials resolved to plain strings.
type Tenant struct {
	Name           string
	EndpointURL    string
	BucketName     string
	AccessKey      string
	SecretKey      string
	Region         string
	ForcePathStyle bool

	// PresignExpiry is the tenant override, zero when the system default applies.
	PresignExpiry time.Duration

	Mode interfaces.DeliveryMode
}

// ObjectStoreOptions returns the options needed to build this tenant's client.
func (t *Tenant) ObjectStoreOptions() interfaces.ObjectStoreOptions {
	return interfaces.ObjectStoreOptions{
		EndpointURL:    t.EndpointURL,
		Region:         t.Region,
		Bucket:         t.BucketName,
		AccessKey:      t.AccessKey,
		SecretKey:      t.SecretKey,
		ForcePathStyle: t.ForcePathStyle,
	}
}

// DefaultListenAddr returns the listen address used when none is configured.
func DefaultListenAddr() string {
	return net.JoinHostPort(strings.Trim(DefaultBindAddr, "[]"), strconv.Itoa(DefaultBindPort))
}

// PathFromEnv returns the config file path from CELIA_CONFIG_PATH, falling
// back to DefaultConfigPath.
func PathFromEnv() string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}
	return DefaultConfigPath
}

// Load reads and validates the config file at path.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML config document.
func Parse(data []byte) (*AppConfig, error) {
	cfg := &AppConfig{
		Listen:            DefaultListenAddr(),
		PresignExpirySecs: DefaultPresignExpirySecs,
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every tenant is complete. It does not resolve
// credentials.
func (c *AppConfig) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is empty")
	}
	if err := validExpiry(c.PresignExpirySecs); err != nil {
		return err
	}
	if len(c.Buckets) == 0 {
		return errors.New("no buckets configured")
	}

	for _, name := range c.TenantNames() {
		if err := c.Buckets[name].validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (b BucketConfig) validate(name string) error {
	if name == "" {
		return errors.New("bucket config with empty name")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("bucket config %q: name must not contain '/'", name)
	}
	if b.EndpointURL == "" {
		return fmt.Errorf("bucket config %q: endpoint_url is required", name)
	}
	u, err := url.Parse(b.EndpointURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("bucket config %q: invalid endpoint_url %q", name, b.EndpointURL)
	}
	if b.BucketName == "" {
		return fmt.Errorf("bucket config %q: bucket_name is required", name)
	}
	if b.AccessKey == nil {
		return fmt.Errorf("bucket config %q: access_key is required", name)
	}
	if b.SecretKey == nil {
		return fmt.Errorf("bucket config %q: secret_key is required", name)
	}
	if b.PresignExpirySecs != nil {
		if err := validExpiry(*b.PresignExpirySecs); err != nil {
			return fmt.Errorf("bucket config %q: %w", name, err)
		}
	}
	return nil
}

func validExpiry(secs uint64) error {
	if secs == 0 {
		return errors.New("presign_expiry_secs must be positive")
	}
	if secs > MaxPresignExpirySecs {
		return fmt.Errorf("presign_expiry_secs %d exceeds the maximum of %d", secs, MaxPresignExpirySecs)
	}
	return nil
}

// TenantNames returns the configured tenant names in sorted order.
func (c *AppConfig) TenantNames() []string {
	names := make([]string, 0, len(c.Buckets))
	for name := range c.Buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPresignExpiry returns the system-wide presign expiry.
func (c *AppConfig) DefaultPresignExpiry() time.Duration {
	return time.Duration(c.PresignExpirySecs) * time.Second
}

// ResolveTenants resolves every tenant's credentials. Any resolution failure
// is returned; callers treat it as fatal.
func (c *AppConfig) ResolveTenants(ctx context.Context, resolver *CredentialResolver) ([]Tenant, error) {
	tenants := make([]Tenant, 0, len(c.Buckets))
	for _, name := range c.TenantNames() {
		bc := c.Buckets[name]

		accessKey, err := resolver.Resolve(ctx, bc.AccessKey)
		if err != nil {
			return nil, fmt.Errorf("bucket config %q: access_key: %w", name, err)
		}
		secretKey, err := resolver.Resolve(ctx, bc.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("bucket config %q: secret_key: %w", name, err)
		}

		var expiry time.Duration
		if bc.PresignExpirySecs != nil {
			expiry = time.Duration(*bc.PresignExpirySecs) * time.Second
		}

		tenants = append(tenants, Tenant{
			Name:           name,
			EndpointURL:    bc.EndpointURL,
			BucketName:     bc.BucketName,
			AccessKey:      accessKey,
			SecretKey:      secretKey,
			Region:         bc.Region,
			ForcePathStyle: bc.ForcePathStyle,
			PresignExpiry:  expiry,
			Mode:           bc.Mode(),
		})
	}
	return tenants, nil
}
