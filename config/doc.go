// Package config loads the gateway's YAML configuration and resolves tenant
// credentials.
//
// Each entry under buckets describes one tenant: the S3-compatible endpoint
// and bucket it maps to, how its access and secret keys are obtained, and
// whether objects are delivered by presigned redirect or proxied through the
// gateway. Credentials are resolved once at startup with a CredentialResolver;
// a missing file, unset environment variable or unreadable Vault secret is an
// error and the server refuses to start.
package config
