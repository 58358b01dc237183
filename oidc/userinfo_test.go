// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/polenumerique/oasis/jwt"
)

func TestUserInfo_accessors(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	updated := time.Unix(1700000000, 0)
	ui := NewUserInfo(jwt.NewClaims(map[string]interface{}{
		"sub":                   "alice",
		"name":                  "Alice Doe",
		"given_name":            "Alice",
		"family_name":           "Doe",
		"middle_name":           "M",
		"nickname":              "al",
		"picture":               "https://example.com/alice.png",
		"gender":                "female",
		"birthdate":             "1990-01-01",
		"zoneinfo":              "Europe/Paris",
		"locale":                "fr-FR",
		"email":                 "alice@example.com",
		"email_verified":        true,
		"phone_number":          "+33 1 23 45 67 89",
		"phone_number_verified": "true",
		"updated_at":            float64(updated.Unix()),
		"organization_admin":    true,
		"organization_id":       "org-1",
		"address": map[string]interface{}{
			"street_address": "1 rue de la Paix",
			"locality":       "Paris",
			"region":         "IDF",
			"postal_code":    "75002",
			"country":        "France",
			"full_address":   "1 rue de la Paix, 75002 Paris",
		},
	}))

	assert.Equal("alice", ui.Subject())
	assert.Equal("Alice Doe", ui.Name())
	assert.Equal("Alice", ui.GivenName())
	assert.Equal("Doe", ui.FamilyName())
	assert.Equal("M", ui.MiddleName())
	assert.Equal("al", ui.Nickname())
	assert.Equal("https://example.com/alice.png", ui.Picture())
	assert.Equal("female", ui.Gender())
	assert.True(ui.IsFemale())
	assert.False(ui.IsMale())
	assert.Equal("1990-01-01", ui.Birthdate())
	assert.Equal("Europe/Paris", ui.Zoneinfo())
	assert.Equal("fr-FR", ui.Locale())
	assert.Equal("alice@example.com", ui.Email())
	assert.True(ui.EmailVerified())
	assert.Equal("+33 1 23 45 67 89", ui.PhoneNumber())
	assert.True(ui.PhoneNumberVerified())
	assert.True(updated.Equal(ui.UpdatedAt()))
	assert.True(ui.IsOrganizationAdmin())
	assert.Equal("org-1", ui.OrganizationID())
	assert.Equal(&Address{
		Formatted:     "1 rue de la Paix, 75002 Paris",
		StreetAddress: "1 rue de la Paix",
		Locality:      "Paris",
		Region:        "IDF",
		PostalCode:    "75002",
		Country:       "France",
	}, ui.Address())
}

func TestUserInfo_Address(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		claims map[string]interface{}
		want   *Address
	}{
		{"absent", map[string]interface{}{}, nil},
		{"null", map[string]interface{}{"address": nil}, nil},
		{"not-an-object", map[string]interface{}{"address": "somewhere"}, nil},
		{"empty", map[string]interface{}{"address": map[string]interface{}{}}, &Address{}},
		{
			"formatted-wins",
			map[string]interface{}{"address": map[string]interface{}{"formatted": "F", "full_address": "FA"}},
			&Address{Formatted: "F"},
		},
		{
			"partial",
			map[string]interface{}{"address": map[string]interface{}{"locality": "Lyon", "country": 33}},
			&Address{Locality: "Lyon"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewUserInfo(jwt.NewClaims(tt.claims)).Address())
		})
	}
	t.Run("nil-claims", func(t *testing.T) {
		ui := NewUserInfo(nil)
		assert.Nil(t, ui.Address())
		assert.Empty(t, ui.Subject())
		assert.False(t, ui.IsMale())
	})
}
