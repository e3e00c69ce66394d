// Package common contains shared constants and sentinel errors used across
// CredKeeper components.
package common

const (
	// MinSigningKeyLength is the shortest HMAC key accepted for token signing.
	// HS256 needs at least as many key bytes as the digest size.
	MinSigningKeyLength = 32

	// DefaultIssuer and DefaultAudience keep tokens compatible with
	// existing MicroserviceIssuer deployments.
	DefaultIssuer   = "MicroserviceIssuer"
	DefaultAudience = "MicroserviceAudience"
)
