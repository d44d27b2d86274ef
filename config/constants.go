package config

const (
	DefaultBindAddr = "[::]"
	DefaultBindPort = 8080

	// DefaultPresignExpirySecs applies to tenants without their own override.
	DefaultPresignExpirySecs uint64 = 300
	// MaxPresignExpirySecs is the longest expiry SigV4 presigned URLs accept (7 days).
	MaxPresignExpirySecs uint64 = 7 * 24 * 60 * 60

	DefaultS3Region         = "us-east-1"
	DefaultS3ForcePathStyle = true

	// ConfigPathEnv names the environment variable holding the config file path.
	ConfigPathEnv     = "CELIA_CONFIG_PATH"
	DefaultConfigPath = "/etc/celia-media/config.yml"

	// DefaultVaultMount is the KV v2 mount used when a vault reference omits it.
	DefaultVaultMount = "secret"
)
