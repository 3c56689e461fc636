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
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/asgardeo/oauthclient/oauth/request"
)

var errMalformedJSON = errors.New("authorization server returned malformed JSON")

// ParseResponse normalizes an authorization server reply into a flat map. JSON replies
// are decoded as an object; text and buffer replies are parsed as a urlencoded string.
func ParseResponse(resp *request.Response) (map[string]any, error) {
	if resp == nil {
		return map[string]any{}, nil
	}
	if resp.Type == request.ResponseTypeJSON {
		return parseJSON(resp.Body)
	}
	return parseURLEncoded(string(resp.Body)), nil
}

func parseJSON(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, errMalformedJSON
	}
	result := gjson.ParseBytes(body)
	if !result.IsObject() {
		return map[string]any{}, nil
	}
	return jsonObject(result), nil
}

// jsonValue converts a gjson result into plain Go values. Numbers are kept as
// json.Number so that large integers survive unchanged.
func jsonValue(r gjson.Result) any {
	switch {
	case r.IsObject():
		return jsonObject(r)
	case r.IsArray():
		items := r.Array()
		values := make([]any, len(items))
		for i, item := range items {
			values[i] = jsonValue(item)
		}
		return values
	}
	switch r.Type {
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.String:
		return r.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

func jsonObject(r gjson.Result) map[string]any {
	values := make(map[string]any)
	r.ForEach(func(key, value gjson.Result) bool {
		values[key.String()] = jsonValue(value)
		return true
	})
	return values
}

// parseURLEncoded parses a query string leniently. Repeated keys collect into a
// []string and escapes that fail to decode are kept as is.
func parseURLEncoded(body string) map[string]any {
	values := make(map[string]any)
	for _, pair := range strings.Split(strings.TrimSpace(body), "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key := unescape(rawKey)
		value := unescape(rawValue)

		switch existing := values[key].(type) {
		case nil:
			values[key] = value
		case string:
			values[key] = []string{existing, value}
		case []string:
			values[key] = append(existing, value)
		}
	}
	return values
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return strings.ReplaceAll(s, "+", " ")
	}
	return decoded
}
