// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

// Prompt is a string values that specifies whether the Authorization Server
// prompts the End-User for reauthentication and consent.
// See: https://openid.net/specs/openid-connect-core-1_0.html#AuthRequest
type Prompt string

const (
	// Defined the Prompt values that specifies whether the Authorization
	// Server prompts the End-User for reauthentication and consent.
	None          Prompt = "none"
	Login         Prompt = "login"
	Consent       Prompt = "consent"
	SelectAccount Prompt = "select_account"
)

// validPrompts reports whether every prompt is known and "none" is only used
// alone.
func validPrompts(prompts []Prompt) (bool, string) {
	for _, p := range prompts {
		switch p {
		case None:
			if len(prompts) > 1 {
				return false, `"none" cannot be combined with other prompts`
			}
		case Login, Consent, SelectAccount:
		default:
			return false, "unknown prompt " + string(p)
		}
	}
	return true, ""
}
