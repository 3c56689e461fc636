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

package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// RequestToken is an OAuth1 temporary credentials pair.
type RequestToken struct {
	Token  string
	Secret string
	Extra  map[string]any
}

// AccessToken is the credential returned by the access token exchange. Secret is only
// set for OAuth1. ExpiresAt is derived from ExpiresIn when the reply is parsed.
type AccessToken struct {
	Token        string
	Type         string
	Secret       string
	RefreshToken string
	ExpiresIn    int64
	ExpiresAt    time.Time
	Extra        map[string]any
}

// OAuth2Token converts the access token into a golang.org/x/oauth2 token.
func (t *AccessToken) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.Token,
		TokenType:    t.Type,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
		ExpiresIn:    t.ExpiresIn,
	}
	if len(t.Extra) > 0 {
		return tok.WithExtra(t.Extra)
	}
	return tok
}

// HTTPClient returns a client that authorizes its requests with the access token as a
// bearer token.
func (t *AccessToken) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(t.OAuth2Token()))
}

// StringValue returns the value stored under key as a string. Numbers are formatted
// without exponent and the first element of a repeated value is used.
func StringValue(values map[string]any, key string) string {
	switch v := values[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Int64Value returns the value stored under key as an integer. Decimal strings are
// accepted; anything else yields zero.
func Int64Value(values map[string]any, key string) int64 {
	switch v := values[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
		return 0
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	s := strings.TrimSpace(StringValue(values, key))
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// Without returns a copy of values with the given keys removed.
func Without(values map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
