/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package urlbuilder assembles the authorization redirect URL.
package urlbuilder

import (
	"fmt"
	"net/url"
	"strings"
)

// RedirectRequest is the set of operations a configuration callback may perform on the
// redirect URL.
type RedirectRequest interface {
	Param(key, value string) RedirectRequest
	ClearParam(key string) RedirectRequest
	Clear() RedirectRequest
}

// ConfigureFunc mutates a redirect URL before it is serialized.
type ConfigureFunc func(req RedirectRequest)

// Apply runs the configure functions in order, skipping nil ones.
func Apply(req RedirectRequest, fns ...ConfigureFunc) {
	for _, fn := range fns {
		if fn != nil {
			fn(req)
		}
	}
}

type param struct {
	key   string
	value string
}

// Builder edits the query of a base URL. Parameters already on the base URL are loaded
// first and every parameter keeps its insertion order.
type Builder struct {
	base     *url.URL
	parseErr error
	params   []param
}

var _ RedirectRequest = (*Builder)(nil)

// New creates a builder for the given base URL. A base URL that cannot be parsed is
// reported by MakeURL.
func New(baseURL string) *Builder {
	u, err := url.Parse(baseURL)
	if err != nil {
		return &Builder{parseErr: fmt.Errorf("invalid url %q: %w", baseURL, err)}
	}
	b := &Builder{params: parseQuery(u.RawQuery)}
	u.RawQuery = ""
	u.ForceQuery = false
	b.base = u
	return b
}

// Param sets a query parameter. Setting an existing key replaces the first occurrence in
// place and drops the others.
func (b *Builder) Param(key, value string) RedirectRequest {
	for i := range b.params {
		if b.params[i].key != key {
			continue
		}
		b.params[i].value = value
		kept := b.params[:i+1]
		for _, p := range b.params[i+1:] {
			if p.key != key {
				kept = append(kept, p)
			}
		}
		b.params = kept
		return b
	}
	b.params = append(b.params, param{key: key, value: value})
	return b
}

// ClearParam removes every occurrence of a query parameter.
func (b *Builder) ClearParam(key string) RedirectRequest {
	kept := b.params[:0]
	for _, p := range b.params {
		if p.key != key {
			kept = append(kept, p)
		}
	}
	b.params = kept
	return b
}

// Clear removes every query parameter, including the ones of the base URL.
func (b *Builder) Clear() RedirectRequest {
	b.params = nil
	return b
}

// Params returns the query parameters in insertion order.
func (b *Builder) Params() [][2]string {
	out := make([][2]string, len(b.params))
	for i, p := range b.params {
		out[i] = [2]string{p.key, p.value}
	}
	return out
}

// MakeURL serializes the URL with the parameters encoded as
// application/x-www-form-urlencoded.
func (b *Builder) MakeURL() (string, error) {
	if b.parseErr != nil {
		return "", b.parseErr
	}

	var sb strings.Builder
	for _, p := range b.params {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.value))
	}
	u := *b.base
	u.RawQuery = sb.String()
	return u.String(), nil
}

// parseQuery splits a raw query into ordered pairs. Escapes that fail to decode are
// kept as is.
func parseQuery(rawQuery string) []param {
	var params []param
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		params = append(params, param{key: unescape(key), value: unescape(value)})
	}
	return params
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
