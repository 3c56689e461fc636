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

// Package request holds the configuration of a single outbound call made to an
// authorization server, and sends it.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/asgardeo/oauthclient/internal/system/constants"
	httpservice "github.com/asgardeo/oauthclient/internal/system/http"
	"github.com/asgardeo/oauthclient/internal/system/log"
)

const loggerComponentName = "OAuthRequest"

// BodyType selects how body fields are encoded.
type BodyType string

// ResponseType selects how the reply body is parsed.
type ResponseType string

const (
	// BodyTypeJSON encodes the fields as a JSON object.
	BodyTypeJSON BodyType = "json"
	// BodyTypeURLEncoded encodes the fields as an application/x-www-form-urlencoded string.
	BodyTypeURLEncoded BodyType = "urlencoded"
)

const (
	// ResponseTypeJSON parses the reply as a JSON object.
	ResponseTypeJSON ResponseType = "json"
	// ResponseTypeText parses the reply as a urlencoded string.
	ResponseTypeText ResponseType = "text"
	// ResponseTypeBuffer reads the raw reply bytes. It is parsed the same way as text.
	ResponseTypeBuffer ResponseType = "buffer"
)

// APIRequest is the set of operations a configuration callback may perform on a request.
type APIRequest interface {
	Param(key, value string) APIRequest
	ClearParam(key string) APIRequest
	OAuth1Param(key, value string) APIRequest
	ClearOAuth1Param(key string) APIRequest
	Field(key, value string) APIRequest
	ClearField(key string) APIRequest
	Header(key, value string) APIRequest
	ClearHeader(key string) APIRequest
	SendAs(bodyType BodyType) APIRequest
	ParseAs(responseType ResponseType) APIRequest
	Clear() APIRequest
}

// ConfigureFunc mutates a request before it is sent.
type ConfigureFunc func(req APIRequest)

// Apply runs the configure functions in order, skipping nil ones.
func Apply(req APIRequest, fns ...ConfigureFunc) {
	for _, fn := range fns {
		if fn != nil {
			fn(req)
		}
	}
}

// Request is a single-use outbound call to an authorization server endpoint.
type Request struct {
	url          string
	httpClient   httpservice.HTTPClientInterface
	params       map[string]string
	oauth1Params map[string]string
	fields       map[string]string
	headers      map[string]string
	bodyType     BodyType
	responseType ResponseType
}

var _ APIRequest = (*Request)(nil)

// New creates a request for the given URL. A nil client falls back to the shared client.
func New(rawURL string, httpClient httpservice.HTTPClientInterface) *Request {
	if httpClient == nil {
		httpClient = httpservice.GetHTTPClient()
	}
	r := &Request{
		url:        rawURL,
		httpClient: httpClient,
	}
	r.Clear()
	return r
}

// URL returns the endpoint the request is sent to.
func (r *Request) URL() string {
	return r.url
}

// Param sets a query string parameter.
func (r *Request) Param(key, value string) APIRequest {
	r.params[key] = value
	return r
}

// ClearParam removes a query string parameter.
func (r *Request) ClearParam(key string) APIRequest {
	delete(r.params, key)
	return r
}

// OAuth1Param sets a parameter that is only used when computing the OAuth1 signature.
func (r *Request) OAuth1Param(key, value string) APIRequest {
	r.oauth1Params[key] = value
	return r
}

// ClearOAuth1Param removes an OAuth1 signing parameter.
func (r *Request) ClearOAuth1Param(key string) APIRequest {
	delete(r.oauth1Params, key)
	return r
}

// Field sets a body field.
func (r *Request) Field(key, value string) APIRequest {
	r.fields[key] = value
	return r
}

// ClearField removes a body field.
func (r *Request) ClearField(key string) APIRequest {
	delete(r.fields, key)
	return r
}

// Header sets a request header.
func (r *Request) Header(key, value string) APIRequest {
	r.headers[key] = value
	return r
}

// ClearHeader removes a request header.
func (r *Request) ClearHeader(key string) APIRequest {
	delete(r.headers, key)
	return r
}

// SendAs selects the body encoding.
func (r *Request) SendAs(bodyType BodyType) APIRequest {
	r.bodyType = bodyType
	return r
}

// ParseAs selects how the reply is parsed.
func (r *Request) ParseAs(responseType ResponseType) APIRequest {
	r.responseType = responseType
	return r
}

// Clear drops every param, field and header and restores the default encodings.
func (r *Request) Clear() APIRequest {
	r.params = make(map[string]string)
	r.oauth1Params = make(map[string]string)
	r.fields = make(map[string]string)
	r.headers = make(map[string]string)
	r.bodyType = BodyTypeURLEncoded
	r.responseType = ResponseTypeText
	return r
}

// Params returns a copy of the query string parameters.
func (r *Request) Params() map[string]string {
	return copyMap(r.params)
}

// OAuth1Params returns a copy of the OAuth1 signing parameters.
func (r *Request) OAuth1Params() map[string]string {
	return copyMap(r.oauth1Params)
}

// Fields returns a copy of the body fields.
func (r *Request) Fields() map[string]string {
	return copyMap(r.fields)
}

// Headers returns a copy of the request headers.
func (r *Request) Headers() map[string]string {
	return copyMap(r.headers)
}

// BodyType returns the selected body encoding.
func (r *Request) BodyType() BodyType {
	return r.bodyType
}

// ResponseType returns the selected reply parsing mode.
func (r *Request) ResponseType() ResponseType {
	return r.responseType
}

// Send issues the request with the given HTTP method and reads the reply. Replies outside
// the 2xx range are returned as *HTTPError.
func (r *Request) Send(ctx context.Context, method string) (*Response, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	httpReq, err := r.build(ctx, method)
	if err != nil {
		return nil, err
	}
	logger.Debug("Sending request to authorization server", log.String("method", httpReq.Method),
		log.String("url", httpReq.URL.Redacted()))

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", r.url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", log.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", r.url, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.Debug("Authorization server returned an error response",
			log.Int("statusCode", resp.StatusCode))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	return &Response{
		Type:       r.responseType,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// build assembles the http.Request. Configured params are merged into the URL query.
func (r *Request) build(ctx context.Context, method string) (*http.Request, error) {
	if method == "" {
		method = http.MethodPost
	}
	target, err := url.Parse(r.url)
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", r.url, err)
	}
	if len(r.params) > 0 {
		query := target.Query()
		for key, value := range r.params {
			query.Set(key, value)
		}
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	contentType := ""
	if len(r.fields) > 0 {
		switch r.bodyType {
		case BodyTypeJSON:
			payload, err := json.Marshal(r.fields)
			if err != nil {
				return nil, fmt.Errorf("encode request body: %w", err)
			}
			body = bytes.NewReader(payload)
			contentType = constants.ContentTypeJSON
		default:
			form := url.Values{}
			for key, value := range r.fields {
				form.Set(key, value)
			}
			body = strings.NewReader(form.Encode())
			contentType = constants.ContentTypeFormURLEncoded
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set(constants.ContentTypeHeaderName, contentType)
	}
	if r.responseType == ResponseTypeJSON {
		httpReq.Header.Set(constants.AcceptHeaderName, constants.ContentTypeJSON)
	}
	for key, value := range r.headers {
		httpReq.Header.Set(key, value)
	}
	return httpReq, nil
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
