// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package jwt verifies the JSON Web Tokens returned by an OIDC provider (the ID
Token from the token endpoint and the signed UserInfo response) and applies a
claim policy to them.

Primary types provided by the package:

* Claims: an immutable claim set decoded from a verified token, with typed
accessors for the registered claims.

* KeySet: verifies a token's signature and returns its claims.  JSONWebKeySet
resolves the signing key by the token's "kid" header through a KeyResolver;
StaticKeySet verifies with local PEM encoded public keys.

* KeysProvider: a KeyResolver which caches the provider's published JWKS and
refreshes it at most once per freshness delay when an unknown kid is seen.

* Validator: verifies a token with a KeySet and applies a Policy (see
IDTokenPolicy and UserInfoPolicy) against Expected values.

Example

	provider, err := jwt.NewKeysProvider(jwksURL, clientID, clientSecret, httpClient, cache.NewMemoryCache())
	if err != nil {
		// handle error
	}
	keySet, err := jwt.NewJSONWebKeySet(provider)
	if err != nil {
		// handle error
	}
	v, err := jwt.NewValidator(keySet)
	if err != nil {
		// handle error
	}
	claims, err := v.Validate(ctx, rawIDToken, jwt.IDTokenPolicy(), jwt.Expected{
		ClientID: clientID,
		Issuer:   issuer,
		Nonce:    nonce,
	})
*/
package jwt
