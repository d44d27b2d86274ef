package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"
)

// VaultReader reads raw Vault paths. *api.Logical satisfies it.
type VaultReader interface {
	ReadWithContext(ctx context.Context, path string) (*api.Secret, error)
}

// NewVaultReaderFromEnv creates a Vault client configured from the standard
// VAULT_* environment variables.
func NewVaultReaderFromEnv() (VaultReader, error) {
	cfg := api.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("failed to configure Vault client: %w", cfg.Error)
	}
	return NewVaultReader(cfg)
}

// NewVaultReader creates a Vault client from cfg.
func NewVaultReader(cfg *api.Config) (VaultReader, error) {
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	return client.Logical(), nil
}

// readVaultField reads ref from a KV v2 mount.
func readVaultField(ctx context.Context, reader VaultReader, ref *VaultRef) (string, error) {
	mount := strings.Trim(ref.Mount, "/")
	if mount == "" {
		mount = DefaultVaultMount
	}
	path := fmt.Sprintf("%s/data/%s", mount, strings.Trim(ref.Path, "/"))

	secret, err := reader.ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read Vault secret %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %s not found", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid data format in Vault secret %s", path)
	}

	value, ok := data[ref.Field]
	if !ok {
		return "", fmt.Errorf("field %q not found in Vault secret %s", ref.Field, path)
	}

	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q in Vault secret %s is not a string", ref.Field, path)
	}
	return str, nil
}
