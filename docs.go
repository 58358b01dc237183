// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// oasis is the relying party side of OpenID Connect: it builds the
// authorization request, exchanges the code returned to the callback for
// validated tokens and fetches, revokes and ends what those tokens grant.
//
// Packages:
//
//   - oidc: the Client and its request builders, the token and user models
//   - oidc/callback: an http.HandlerFunc for the redirect callback
//   - jwt: claim policies and the JWKS keys provider
//   - cache: the in-memory and Redis caches of the key set
//   - config: loading an oidc.Config from YAML and the environment
//   - sdk/http: the http client shared by every provider request
package oasis
