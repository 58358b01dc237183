// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
oidc is a package for writing the relying party (client) side of the OIDC
authorization code flow.

Primary types provided by the package

* Config: provides the configuration of a relying party (client id/secret,
default redirect URLs, supported signing algorithms) and the ProviderConfig
holding the provider's endpoints, which can be discovered with
DiscoverProviderConfig.

* Client: the relying party of one provider.  It hands out the request
builders, all sharing the client's http client, JWKS cache and validator.

* AuthorizationRequest: builds the URL the user is redirected to.  It returns
the state and nonce to keep until the provider redirects back.

* ExchangeCodeRequest: checks the callback's parameters and exchanges the
authorization code for an AccessToken, an optional refresh Token and a
verified IDToken.

* UserInfoRequest: fetches and verifies the signed UserInfo of the user.

* RevocationRequest and LogoutRequest: revoke a token and build the end
session URL.

* StateSerializer: packages the caller's opaque state into the "state"
parameter, padded with a random value.

Errors reported by the provider are returned as *AuthorizationResponseError,
*TokenResponseError or *OAuthError and can be retrieved with errors.As.

The oidc.callback package

The callback package includes the ability to create a http.HandlerFunc which can be used
for the 3rd leg of the OIDC flow where the authorization code is exchanged for
tokens.

Example

	client, err := oidc.NewClient(cfg, oidc.WithCache(redisCache))
	if err != nil {
		// handle error
	}
	req, err := client.AuthorizationRequest(oidc.WithState(returnTo), oidc.WithPrompts(oidc.Login))
	if err != nil {
		// handle error
	}
	authURL, err := req.BuildURL()
	if err != nil {
		// handle error
	}
	// keep authURL.State and authURL.Nonce in the user's session and
	// redirect to authURL.URL

	// then, in the callback handler:
	result, err := client.ExchangeCodeRequest(
		oidc.WithCallbackQueryString(r.URL.RawQuery),
		oidc.WithExpectedState(session.State),
		oidc.WithNonce(session.Nonce),
	).Execute(ctx)
*/
package oidc
