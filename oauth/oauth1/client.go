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

// Package oauth1 implements the client side of the OAuth 1.0a three-legged flow and the
// HMAC-SHA1 request signing it relies on.
package oauth1

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asgardeo/oauthclient/internal/system/constants"
	httpservice "github.com/asgardeo/oauthclient/internal/system/http"
	"github.com/asgardeo/oauthclient/internal/system/log"
	"github.com/asgardeo/oauthclient/oauth"
	"github.com/asgardeo/oauthclient/oauth/request"
	"github.com/asgardeo/oauthclient/oauth/urlbuilder"
)

const loggerComponentName = "OAuth1Client"

// Options customizes a Client. Zero values fall back to the defaults.
type Options struct {
	// HTTPClient sends the token requests. Defaults to the shared client.
	HTTPClient httpservice.HTTPClientInterface
	// RequestTokenMethod is the HTTP method of the request token call. Defaults to POST.
	RequestTokenMethod string
	// AccessTokenMethod is the HTTP method of the access token call. Defaults to POST.
	AccessTokenMethod string

	// Hooks run before the caller's configure function of the matching operation.
	ConfigureRequestTokenRequest request.ConfigureFunc
	ConfigureRedirectRequest     urlbuilder.ConfigureFunc
	ConfigureAccessTokenRequest  request.ConfigureFunc
}

// ClientInterface defines the OAuth1 client operations.
type ClientInterface interface {
	GetRequestToken(ctx context.Context, configure request.ConfigureFunc) (*oauth.RequestToken, error)
	GetRedirectURL(configure urlbuilder.ConfigureFunc) (string, error)
	GetAccessToken(ctx context.Context, requestToken *oauth.RequestToken,
		configure request.ConfigureFunc) (*oauth.AccessToken, error)
	VerifyState(state, input string) error
}

// Client drives the OAuth1 flow against a single authorization server. It holds no
// per-flow state and is safe for concurrent use.
type Client struct {
	config oauth.OAuth1ClientConfig
	opts   Options
	nonce  func() (string, error)
	now    func() time.Time
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a client for the given configuration.
func NewClient(config oauth.OAuth1ClientConfig, opts *Options) *Client {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.HTTPClient == nil {
		o.HTTPClient = httpservice.GetHTTPClient()
	}
	if o.RequestTokenMethod == "" {
		o.RequestTokenMethod = http.MethodPost
	}
	if o.AccessTokenMethod == "" {
		o.AccessTokenMethod = http.MethodPost
	}
	return &Client{
		config: config,
		opts:   o,
		nonce:  oauth.NewState,
		now:    time.Now,
	}
}

// Config returns the client configuration.
func (c *Client) Config() oauth.OAuth1ClientConfig {
	return c.config
}

// GetRequestToken obtains the temporary credentials. The callback URL is sent as
// oauth_callback.
func (c *Client) GetRequestToken(ctx context.Context, configure request.ConfigureFunc) (
	token *oauth.RequestToken, err error) {
	logger := c.logger()

	if c.config.RequestTokenURL == "" {
		return nil, &oauth.ConfigurationError{Property: "RequestTokenURL", Purpose: "get request token"}
	}
	defer func(start time.Time) {
		oauth.ObserveTokenRequest(oauth.ProtocolOAuth1, oauth.OperationRequestToken, start, err)
	}(time.Now())

	logger.Debug("Requesting request token", log.String("url", c.config.RequestTokenURL))

	req := request.New(c.config.RequestTokenURL, c.opts.HTTPClient)
	req.OAuth1Param(ParamCallback, c.config.CallbackURL)
	request.Apply(req, c.opts.ConfigureRequestTokenRequest, configure)

	parsed, err := c.signedCall(ctx, req, c.opts.RequestTokenMethod, "", "", logger)
	if err != nil {
		return nil, err
	}

	oauthToken, oauthSecret, err := tokenPair(parsed)
	if err != nil {
		logger.Debug("Request token response is missing the token pair")
		return nil, err
	}

	logger.Debug("Request token received", log.String("token", log.MaskString(oauthToken)))
	return &oauth.RequestToken{
		Token:  oauthToken,
		Secret: oauthSecret,
		Extra:  oauth.Without(parsed, ParamToken, ParamTokenSecret),
	}, nil
}

// GetRedirectURL builds the authorization URL. No parameters are set by default; the
// caller supplies at least oauth_token.
func (c *Client) GetRedirectURL(configure urlbuilder.ConfigureFunc) (string, error) {
	if c.config.AuthorizeURL == "" {
		return "", &oauth.ConfigurationError{Property: "AuthorizeURL", Purpose: "make redirect url"}
	}

	builder := urlbuilder.New(c.config.AuthorizeURL)
	urlbuilder.Apply(builder, c.opts.ConfigureRedirectRequest, configure)
	return builder.MakeURL()
}

// GetAccessToken exchanges the authorized request token for an access token. Both the
// token and the secret of the request token are required.
func (c *Client) GetAccessToken(ctx context.Context, requestToken *oauth.RequestToken,
	configure request.ConfigureFunc) (token *oauth.AccessToken, err error) {
	logger := c.logger()

	if requestToken == nil || requestToken.Token == "" {
		return nil, &oauth.InvalidRequestTokenError{Property: "Token"}
	}
	if requestToken.Secret == "" {
		return nil, &oauth.InvalidRequestTokenError{Property: "Secret"}
	}
	if c.config.AccessTokenURL == "" {
		return nil, &oauth.ConfigurationError{Property: "AccessTokenURL", Purpose: "generate access token"}
	}
	defer func(start time.Time) {
		oauth.ObserveTokenRequest(oauth.ProtocolOAuth1, oauth.OperationAccessToken, start, err)
	}(time.Now())

	logger.Debug("Exchanging request token for access token", log.String("url", c.config.AccessTokenURL),
		log.String("requestToken", log.MaskString(requestToken.Token)))

	req := request.New(c.config.AccessTokenURL, c.opts.HTTPClient)
	request.Apply(req, c.opts.ConfigureAccessTokenRequest, configure)

	parsed, err := c.signedCall(ctx, req, c.opts.AccessTokenMethod, requestToken.Token,
		requestToken.Secret, logger)
	if err != nil {
		return nil, err
	}

	oauthToken, oauthSecret, err := tokenPair(parsed)
	if err != nil {
		logger.Debug("Access token response is missing the token pair")
		return nil, err
	}

	logger.Debug("Access token received", log.String("token", log.MaskString(oauthToken)))
	return &oauth.AccessToken{
		Token:  oauthToken,
		Secret: oauthSecret,
		Extra:  oauth.Without(parsed, ParamToken, ParamTokenSecret),
	}, nil
}

// VerifyState checks the state round tripped through the redirect.
func (c *Client) VerifyState(state, input string) error {
	return oauth.VerifyState(state, input)
}

// signedCall signs the request, sends it and normalizes the reply.
func (c *Client) signedCall(ctx context.Context, req *request.Request, method, token, tokenSecret string,
	logger *log.Logger) (map[string]any, error) {
	nonce, err := c.nonce()
	if err != nil {
		return nil, err
	}

	sig, err := GenerateSignature(SignatureInput{
		Method:           method,
		URL:              req.URL(),
		ConsumerKey:      c.config.ClientID,
		ConsumerSecret:   c.config.ClientSecret,
		Nonce:            nonce,
		Timestamp:        c.now().Unix(),
		Params:           SigningParams(req),
		OAuthToken:       token,
		OAuthTokenSecret: tokenSecret,
	})
	if err != nil {
		return nil, err
	}
	if logger.IsDebugEnabled() {
		logger.Debug("Signed request", signatureLogFields(method, req.URL(), sig)...)
	}
	req.Header(constants.AuthorizationHeaderName, sig.AuthorizationHeader())

	resp, err := req.Send(ctx, method)
	if err != nil {
		logger.Debug("Signed request failed", log.Error(err))
		return nil, err
	}
	return oauth.ParseResponse(resp)
}

// signatureLogFields describes a signed request without the values of its parameters.
func signatureLogFields(method, rawURL string, sig *Signature) []log.Field {
	target := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		target = NormalizeURL(u)
	}
	keys := make([]string, 0, len(sig.Params))
	for k := range sig.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return []log.Field{
		log.String("method", strings.ToUpper(method)),
		log.String("url", target),
		log.String("signedParams", strings.Join(keys, ",")),
	}
}

func (c *Client) logger() *log.Logger {
	return log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyFlowID, uuid.NewString()))
}

// SigningParams merges the query params, the OAuth1 params and, for urlencoded bodies,
// the body fields. Later sources win on key collisions.
func SigningParams(req *request.Request) map[string]string {
	params := req.Params()
	for k, v := range req.OAuth1Params() {
		params[k] = v
	}
	if req.BodyType() == request.BodyTypeURLEncoded {
		for k, v := range req.Fields() {
			params[k] = v
		}
	}
	return params
}

func tokenPair(parsed map[string]any) (string, string, error) {
	oauthToken := oauth.StringValue(parsed, ParamToken)
	oauthSecret := oauth.StringValue(parsed, ParamTokenSecret)
	if oauthToken == "" || oauthSecret == "" {
		return "", "", &oauth.MissingTokenError{
			Protocol: oauth.ProtocolOAuth1,
			Fields:   []string{ParamToken, ParamTokenSecret},
			Response: parsed,
		}
	}
	return oauthToken, oauthSecret, nil
}
