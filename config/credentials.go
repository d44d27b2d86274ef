package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// CredentialSource identifies where a credential value comes from.
type CredentialSource int

const (
	// CredentialPlain is an inline literal.
	CredentialPlain CredentialSource = iota
	// CredentialPath is the verbatim contents of a file.
	CredentialPath
	// CredentialEnv is the value of an environment variable.
	CredentialEnv
	// CredentialVault is a field of a Vault KV v2 secret.
	CredentialVault
)

// String returns the YAML key of the source.
func (s CredentialSource) String() string {
	switch s {
	case CredentialPlain:
		return "plain"
	case CredentialPath:
		return "path"
	case CredentialEnv:
		return "env"
	case CredentialVault:
		return "vault"
	default:
		return "unknown"
	}
}

// VaultRef points at one field of a KV v2 secret.
type VaultRef struct {
	Mount string `yaml:"mount"`
	Path  string `yaml:"path"`
	Field string `yaml:"field"`
}

// CredentialRef is a declarative reference to a secret string. In YAML it is
// a mapping with exactly one of the keys plain, path, env or vault:
//
//	access_key:
//	  env: "PHOTOS_ACCESS_KEY"
//	secret_key:
//	  vault:
//	    path: "celia/photos"
//	    field: "secret_key"
type CredentialRef struct {
	Source CredentialSource

	// Value is the literal, file path or variable name, depending on Source.
	Value string

	Vault *VaultRef
}

// PlainCredential returns a reference to an inline value.
func PlainCredential(value string) *CredentialRef {
	return &CredentialRef{Source: CredentialPlain, Value: value}
}

// UnmarshalYAML enforces the single-source mapping form.
func (c *CredentialRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: credential must be a mapping with one of plain, path, env, vault", value.Line)
	}
	if len(value.Content) != 2 {
		return fmt.Errorf("line %d: credential must set exactly one of plain, path, env, vault", value.Line)
	}

	key, val := value.Content[0].Value, value.Content[1]
	switch key {
	case "plain", "path", "env":
		var s string
		if err := val.Decode(&s); err != nil {
			return fmt.Errorf("line %d: credential %s: %w", val.Line, key, err)
		}
		*c = CredentialRef{Value: s}
		switch key {
		case "plain":
			c.Source = CredentialPlain
		case "path":
			c.Source = CredentialPath
		case "env":
			c.Source = CredentialEnv
		}
	case "vault":
		ref := VaultRef{Mount: DefaultVaultMount}
		if err := val.Decode(&ref); err != nil {
			return fmt.Errorf("line %d: credential vault: %w", val.Line, err)
		}
		if ref.Path == "" || ref.Field == "" {
			return fmt.Errorf("line %d: credential vault requires path and field", val.Line)
		}
		*c = CredentialRef{Source: CredentialVault, Vault: &ref}
	default:
		return fmt.Errorf("line %d: unknown credential source %q", value.Content[0].Line, key)
	}
	return nil
}

// String describes the reference without revealing inline values.
func (c *CredentialRef) String() string {
	switch c.Source {
	case CredentialPlain:
		return "plain:***"
	case CredentialVault:
		return fmt.Sprintf("vault:%s/%s#%s", c.Vault.Mount, c.Vault.Path, c.Vault.Field)
	default:
		return fmt.Sprintf("%s:%s", c.Source, c.Value)
	}
}

// CredentialResolver turns CredentialRefs into secret strings at startup.
type CredentialResolver struct {
	lookupEnv func(string) (string, bool)
	readFile  func(string) ([]byte, error)

	vaultOnce   sync.Once
	vaultReader VaultReader
	vaultErr    error
	newVault    func() (VaultReader, error)
}

// NewCredentialResolver creates a resolver reading the process environment
// and filesystem. A Vault client is only created when a vault reference is
// first resolved; it is configured from VAULT_ADDR, VAULT_TOKEN and the other
// standard Vault environment variables.
func NewCredentialResolver() *CredentialResolver {
	return &CredentialResolver{
		lookupEnv: os.LookupEnv,
		readFile:  os.ReadFile,
		newVault:  NewVaultReaderFromEnv,
	}
}

// WithVaultReader makes the resolver use reader for vault references.
func (r *CredentialResolver) WithVaultReader(reader VaultReader) *CredentialResolver {
	r.newVault = func() (VaultReader, error) { return reader, nil }
	return r
}

// Resolve returns the secret ref points at. File contents are returned
// verbatim, including any trailing newline.
func (r *CredentialResolver) Resolve(ctx context.Context, ref *CredentialRef) (string, error) {
	if ref == nil {
		return "", errors.New("missing credential reference")
	}

	switch ref.Source {
	case CredentialPlain:
		return ref.Value, nil
	case CredentialPath:
		data, err := r.readFile(ref.Value)
		if err != nil {
			return "", fmt.Errorf("failed to read credential file %s: %w", ref.Value, err)
		}
		return string(data), nil
	case CredentialEnv:
		value, ok := r.lookupEnv(ref.Value)
		if !ok {
			return "", fmt.Errorf("credential environment variable %s is not set", ref.Value)
		}
		return value, nil
	case CredentialVault:
		reader, err := r.vault()
		if err != nil {
			return "", err
		}
		return readVaultField(ctx, reader, ref.Vault)
	default:
		return "", fmt.Errorf("unsupported credential source: %v", ref.Source)
	}
}

func (r *CredentialResolver) vault() (VaultReader, error) {
	r.vaultOnce.Do(func() {
		r.vaultReader, r.vaultErr = r.newVault()
	})
	return r.vaultReader, r.vaultErr
}
