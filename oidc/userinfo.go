// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"time"

	"github.com/polenumerique/oasis/jwt"
)

// UserInfo holds the verified claims returned by the userinfo endpoint. See:
// https://openid.net/specs/openid-connect-core-1_0.html#StandardClaims
type UserInfo struct {
	claims *jwt.Claims
}

// NewUserInfo wraps verified claims.
func NewUserInfo(claims *jwt.Claims) *UserInfo {
	if claims == nil {
		claims = jwt.NewClaims(nil)
	}
	return &UserInfo{claims: claims}
}

// Claims returns every claim of the response.
func (u *UserInfo) Claims() *jwt.Claims { return u.claims }

func (u *UserInfo) Subject() string           { return u.claims.Subject() }
func (u *UserInfo) Name() string              { return u.claims.String("name") }
func (u *UserInfo) GivenName() string         { return u.claims.String("given_name") }
func (u *UserInfo) FamilyName() string        { return u.claims.String("family_name") }
func (u *UserInfo) MiddleName() string        { return u.claims.String("middle_name") }
func (u *UserInfo) Nickname() string          { return u.claims.String("nickname") }
func (u *UserInfo) Picture() string           { return u.claims.String("picture") }
func (u *UserInfo) Gender() string            { return u.claims.String("gender") }
func (u *UserInfo) Birthdate() string         { return u.claims.String("birthdate") }
func (u *UserInfo) Zoneinfo() string          { return u.claims.String("zoneinfo") }
func (u *UserInfo) Locale() string            { return u.claims.String("locale") }
func (u *UserInfo) Email() string             { return u.claims.String("email") }
func (u *UserInfo) EmailVerified() bool       { return u.claims.Bool("email_verified") }
func (u *UserInfo) PhoneNumber() string       { return u.claims.String("phone_number") }
func (u *UserInfo) PhoneNumberVerified() bool { return u.claims.Bool("phone_number_verified") }
func (u *UserInfo) UpdatedAt() time.Time      { return u.claims.Time("updated_at") }
func (u *UserInfo) IsOrganizationAdmin() bool { return u.claims.Bool("organization_admin") }
func (u *UserInfo) OrganizationID() string    { return u.claims.String("organization_id") }
func (u *UserInfo) IsFemale() bool            { return u.Gender() == "female" }
func (u *UserInfo) IsMale() bool              { return u.Gender() == "male" }

// Address returns the user's postal address, or nil when the claim is
// absent.
func (u *UserInfo) Address() *Address {
	raw, ok := u.claims.Claim("address")
	if !ok {
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	a := &Address{
		Formatted:     stringField(m, "formatted"),
		StreetAddress: stringField(m, "street_address"),
		Locality:      stringField(m, "locality"),
		Region:        stringField(m, "region"),
		PostalCode:    stringField(m, "postal_code"),
		Country:       stringField(m, "country"),
	}
	if a.Formatted == "" {
		a.Formatted = stringField(m, "full_address")
	}
	return a
}

// Address is the "address" claim.  Every field is optional. See:
// https://openid.net/specs/openid-connect-core-1_0.html#AddressClaim
type Address struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
}

func stringField(m map[string]interface{}, k string) string {
	s, _ := m[k].(string)
	return s
}
