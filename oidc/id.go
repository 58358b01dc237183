// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"fmt"

	"github.com/polenumerique/oasis/sdk/id"
)

// NewRandom returns a new unpredictable value suitable for a nonce or for
// padding a state: 32 random bytes, base64 encoded.
func NewRandom() (string, error) {
	const op = "oidc.NewRandom"
	r, err := id.NewRandom(id.DefaultRandomSize)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrIdGeneratorFailed, err)
	}
	return r, nil
}
