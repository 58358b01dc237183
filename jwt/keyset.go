// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// KeySet represents a set of keys that can be used to verify the signatures of JWTs.
// A KeySet is expected to be backed by a set of local or remote keys.
type KeySet interface {

	// VerifySignature parses the given JWT, verifies its signature, and returns the claims in its payload.
	VerifySignature(ctx context.Context, token string) (claims map[string]interface{}, err error)
}

// KeyResolver returns the public key identified by a token's "kid" header.
// KeysProvider is the KeyResolver used against a live provider.
type KeyResolver interface {
	KeyByID(ctx context.Context, kid string) (*jose.JSONWebKey, error)
}

// JSONWebKeySet verifies JWT signatures with the key named by the token's
// "kid" header.
type JSONWebKeySet struct {
	resolver KeyResolver
}

// ensure that JSONWebKeySet implements the KeySet interface
var _ KeySet = (*JSONWebKeySet)(nil)

// NewJSONWebKeySet returns a KeySet that looks up signing keys with r.
func NewJSONWebKeySet(r KeyResolver) (*JSONWebKeySet, error) {
	const op = "jwt.NewJSONWebKeySet"
	if r == nil {
		return nil, fmt.Errorf("%s: key resolver is nil: %w", op, ErrNilParameter)
	}
	return &JSONWebKeySet{resolver: r}, nil
}

// VerifySignature parses the given JWT, verifies its signature using the key
// matching its "kid" header, and returns the claims in its payload. The given
// JWT must be of the JWS compact serialization form.
func (ks *JSONWebKeySet) VerifySignature(ctx context.Context, token string) (map[string]interface{}, error) {
	const op = "JSONWebKeySet.VerifySignature"
	parsed, err := parseSigned(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	kid := parsed.Headers[0].KeyID
	if kid == "" {
		return nil, fmt.Errorf("%s: token header has no kid: %w", op, ErrUnknownKeyID)
	}
	key, err := ks.resolver.KeyByID(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	allClaims := map[string]interface{}{}
	if err := parsed.Claims(key, &allClaims); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidSignature, err)
	}
	return allClaims, nil
}

// StaticKeySet verifies JWT signatures using local PEM-encoded public keys.
type StaticKeySet struct {
	publicKeys []interface{}
}

// ensure that StaticKeySet implements the KeySet interface
var _ KeySet = (*StaticKeySet)(nil)

// NewStaticKeySet returns a KeySet that verifies JWT signatures using PEM-encoded public keys.
// The given publicKeys must be of PEM-encoded x509 certificate or PKIX public key forms.
func NewStaticKeySet(publicKeys []string) (*StaticKeySet, error) {
	const op = "jwt.NewStaticKeySet"
	if len(publicKeys) == 0 {
		return nil, fmt.Errorf("%s: no public keys: %w", op, ErrInvalidParameter)
	}
	parsedPublicKeys := make([]interface{}, 0, len(publicKeys))
	for _, k := range publicKeys {
		key, err := parsePublicKeyPEM([]byte(k))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		parsedPublicKeys = append(parsedPublicKeys, key)
	}
	return &StaticKeySet{
		publicKeys: parsedPublicKeys,
	}, nil
}

// VerifySignature parses the given JWT, verifies its signature using local PEM-encoded public keys,
// and returns the claims in its payload. The given JWT must be of the JWS compact serialization form.
func (ks *StaticKeySet) VerifySignature(_ context.Context, token string) (map[string]interface{}, error) {
	const op = "StaticKeySet.VerifySignature"
	parsed, err := parseSigned(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, key := range ks.publicKeys {
		allClaims := map[string]interface{}{}
		if err := parsed.Claims(key, &allClaims); err == nil {
			return allClaims, nil
		}
	}
	return nil, fmt.Errorf("%s: no known key successfully validated the token signature: %w", op, ErrInvalidSignature)
}

func parseSigned(token string) (*jwt.JSONWebToken, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if len(parsed.Headers) == 0 {
		return nil, fmt.Errorf("token has no header: %w", ErrMalformedToken)
	}
	return parsed, nil
}

// parsePublicKeyPEM is used to parse RSA, ECDSA and Ed25519 public keys from
// PEMs.
func parsePublicKeyPEM(data []byte) (interface{}, error) {
	const op = "jwt.parsePublicKeyPEM"
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%s: data does not contain a PEM block: %w", op, ErrInvalidParameter)
	}
	rawKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		cert, certErr := x509.ParseCertificate(block.Bytes)
		if certErr != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidParameter, err)
		}
		rawKey = cert.PublicKey
	}
	switch k := rawKey.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey:
		return k, nil
	default:
		return nil, fmt.Errorf("%s: unsupported public key type %T: %w", op, rawKey, ErrInvalidParameter)
	}
}
