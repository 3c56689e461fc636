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

package oauth1

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is mandated by RFC 5849.
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Protocol parameter names.
const (
	ParamConsumerKey     = "oauth_consumer_key"
	ParamNonce           = "oauth_nonce"
	ParamSignature       = "oauth_signature"
	ParamSignatureMethod = "oauth_signature_method"
	ParamTimestamp       = "oauth_timestamp"
	ParamToken           = "oauth_token"
	ParamTokenSecret     = "oauth_token_secret"
	ParamVersion         = "oauth_version"
	ParamCallback        = "oauth_callback"
	ParamVerifier        = "oauth_verifier"

	SignatureMethodHMACSHA1 = "HMAC-SHA1"
	Version                 = "1.0"

	oauthParamPrefix = "oauth_"
)

// SignatureInput is everything needed to sign one request. It must not be reused across
// requests since the nonce and timestamp have to be fresh.
type SignatureInput struct {
	Method           string
	URL              string
	ConsumerKey      string
	ConsumerSecret   string
	Nonce            string
	Timestamp        int64
	Params           map[string]string
	OAuthToken       string
	OAuthTokenSecret string
}

// Signature is the result of signing a request.
type Signature struct {
	// Header is the Authorization header value without the "OAuth " prefix.
	Header      string
	Signature   string
	BaseString  string
	ParamString string
	// Params is the full signed parameter set.
	Params map[string]string
	// OAuthParams holds the oauth_ parameters rendered into the header, signature included.
	OAuthParams map[string]string
}

// AuthorizationHeader returns the value of the Authorization header.
func (s *Signature) AuthorizationHeader() string {
	return "OAuth " + s.Header
}

// GenerateSignature computes the HMAC-SHA1 signature of a request as described in RFC 5849
// section 3.4. Query parameters present on the URL are signed too, unless Params carries
// the same key.
func GenerateSignature(input SignatureInput) (*Signature, error) {
	method := strings.ToUpper(strings.TrimSpace(input.Method))
	if method == "" {
		return nil, errors.New("oauth1: http method is required")
	}
	target, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("oauth1: invalid url %q: %w", input.URL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("oauth1: invalid url %q", input.URL)
	}

	params := make(map[string]string, len(input.Params)+6)
	for k, v := range input.Params {
		params[k] = v
	}
	if input.OAuthToken != "" {
		params[ParamToken] = input.OAuthToken
	}
	params[ParamConsumerKey] = input.ConsumerKey
	params[ParamNonce] = input.Nonce
	params[ParamSignatureMethod] = SignatureMethodHMACSHA1
	params[ParamTimestamp] = strconv.FormatInt(input.Timestamp, 10)
	params[ParamVersion] = Version

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, PercentEncode(k)+"="+PercentEncode(v))
	}
	for k, values := range target.Query() {
		if _, ok := params[k]; ok {
			continue
		}
		for _, v := range values {
			pairs = append(pairs, PercentEncode(k)+"="+PercentEncode(v))
		}
	}
	sort.Strings(pairs)
	paramString := strings.Join(pairs, "&")

	baseString := method + "&" + PercentEncode(NormalizeURL(target)) + "&" + PercentEncode(paramString)
	signingKey := PercentEncode(input.ConsumerSecret) + "&" + PercentEncode(input.OAuthTokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	_, _ = mac.Write([]byte(baseString))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	oauthParams := map[string]string{ParamSignature: signature}
	for k, v := range params {
		if strings.HasPrefix(k, oauthParamPrefix) {
			oauthParams[k] = v
		}
	}
	entries := make([]string, 0, len(oauthParams))
	for k, v := range oauthParams {
		entries = append(entries, PercentEncode(k)+"=\""+PercentEncode(v)+"\"")
	}
	sort.Strings(entries)

	return &Signature{
		Header:      strings.Join(entries, ","),
		Signature:   signature,
		BaseString:  baseString,
		ParamString: paramString,
		Params:      params,
		OAuthParams: oauthParams,
	}, nil
}

// NormalizeURL renders the base string URI of RFC 5849 section 3.4.1.2: lower case
// scheme and host, no default port, no query or fragment.
func NormalizeURL(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" &&
		!(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
		host += ":" + port
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path
}

// PercentEncode encodes s per RFC 3986 section 2.1, leaving only the unreserved
// characters as is.
func PercentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}
