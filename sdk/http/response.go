// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is a fully read provider response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// JSON decodes the body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unable to decode response body as json: %w", err)
	}
	return nil
}

// GetHeader returns the first value of the header (case-insensitive) or an
// empty string.
func (r *Response) GetHeader(name string) string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get(name)
}
