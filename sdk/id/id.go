// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package id generates the unpredictable values carried through the
// authorization flow (nonces and state padding).
package id

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// DefaultRandomSize is the number of raw random bytes behind a nonce or a
// state padding.
const DefaultRandomSize = 32

// ErrInvalidSize is returned when the requested size isn't positive.
var ErrInvalidSize = errors.New("invalid random size")

// NewRandom returns size cryptographically random bytes, base64 (standard
// encoding) encoded.
func NewRandom(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("size %d: %w", size, ErrInvalidSize)
	}
	b, err := uuid.GenerateRandomBytes(size)
	if err != nil {
		return "", fmt.Errorf("unable to generate random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
