// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the provider signs its webhooks with HMAC-SHA1
	"encoding/hex"
	"fmt"
	"strings"
)

// HubSignatureHeader is the header carrying the signature of a webhook
// payload sent by the provider.
const HubSignatureHeader = "X-Hub-Signature"

const hubSignaturePrefix = "sha1="

// VerifyHubSignature verifies the signature of a webhook payload.  The header
// is "sha1=" followed by the hex encoded HMAC-SHA1 of the payload keyed with
// the shared secret.
func VerifyHubSignature(payload []byte, header, secret string) error {
	const op = "oidc.VerifyHubSignature"
	if secret == "" {
		return fmt.Errorf("%s: secret is empty: %w", op, ErrInvalidParameter)
	}
	if !strings.HasPrefix(header, hubSignaturePrefix) {
		return fmt.Errorf("%s: signature doesn't start with %q: %w", op, hubSignaturePrefix, ErrMalformedHubSignature)
	}
	got, err := hex.DecodeString(strings.ToLower(strings.TrimPrefix(header, hubSignaturePrefix)))
	if err != nil {
		return fmt.Errorf("%s: signature isn't hex encoded: %w", op, ErrMalformedHubSignature)
	}
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return fmt.Errorf("%s: %w", op, ErrHubSignatureMismatch)
	}
	return nil
}
