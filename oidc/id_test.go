// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polenumerique/oasis/sdk/id"
)

func TestNewRandom(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		got, err := NewRandom()
		require.NoError(err)
		raw, err := base64.StdEncoding.DecodeString(got)
		require.NoError(err)
		assert.Len(raw, id.DefaultRandomSize)
		assert.Falsef(seen[got], "NewRandom() = %s was already returned", got)
		seen[got] = true
	}
}
