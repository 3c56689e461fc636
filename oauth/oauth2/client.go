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

// Package oauth2 implements the client side of the OAuth 2.0 authorization code grant.
package oauth2

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	httpservice "github.com/asgardeo/oauthclient/internal/system/http"
	"github.com/asgardeo/oauthclient/internal/system/log"
	"github.com/asgardeo/oauthclient/oauth"
	"github.com/asgardeo/oauthclient/oauth/request"
	"github.com/asgardeo/oauthclient/oauth/urlbuilder"
)

const loggerComponentName = "OAuth2Client"

// Options customizes a Client.
type Options struct {
	// HTTPClient sends the token request. Defaults to the shared client.
	HTTPClient httpservice.HTTPClientInterface

	// Hooks run after the default params are set and before the caller's configure function.
	ConfigureRedirectRequest    urlbuilder.ConfigureFunc
	ConfigureAccessTokenRequest request.ConfigureFunc
}

// ClientInterface defines the OAuth2 client operations.
type ClientInterface interface {
	GetRedirectURL(configure urlbuilder.ConfigureFunc) (string, error)
	GetState() (string, error)
	VerifyState(state, input string) error
	GetAccessToken(ctx context.Context, configure request.ConfigureFunc) (*oauth.AccessToken, error)
}

// Client drives the OAuth2 authorization code flow against a single authorization server.
type Client struct {
	config oauth.ClientConfig
	opts   Options
	now    func() time.Time
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a client for the given configuration.
func NewClient(config oauth.ClientConfig, opts *Options) *Client {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.HTTPClient == nil {
		o.HTTPClient = httpservice.GetHTTPClient()
	}
	return &Client{
		config: config,
		opts:   o,
		now:    time.Now,
	}
}

// Config returns the client configuration.
func (c *Client) Config() oauth.ClientConfig {
	return c.config
}

// GetRedirectURL builds the authorization URL with redirect_uri and client_id set.
func (c *Client) GetRedirectURL(configure urlbuilder.ConfigureFunc) (string, error) {
	if c.config.AuthorizeURL == "" {
		return "", &oauth.ConfigurationError{Property: "AuthorizeURL", Purpose: "make redirect url"}
	}

	builder := urlbuilder.New(c.config.AuthorizeURL)
	builder.Param(ParamRedirectURI, c.config.CallbackURL)
	builder.Param(ParamClientID, c.config.ClientID)
	urlbuilder.Apply(builder, c.opts.ConfigureRedirectRequest, configure)
	return builder.MakeURL()
}

// GetState returns a fresh CSRF state value. The caller stores it until the callback.
func (c *Client) GetState() (string, error) {
	return oauth.NewState()
}

// VerifyState checks the state round tripped through the redirect.
func (c *Client) VerifyState(state, input string) error {
	return oauth.VerifyState(state, input)
}

// GetAccessToken exchanges an authorization code for an access token. The caller sets
// the code through configure.
func (c *Client) GetAccessToken(ctx context.Context, configure request.ConfigureFunc) (
	token *oauth.AccessToken, err error) {
	if c.config.AccessTokenURL == "" {
		return nil, &oauth.ConfigurationError{Property: "AccessTokenURL", Purpose: "get access token"}
	}
	defer func(start time.Time) {
		oauth.ObserveTokenRequest(oauth.ProtocolOAuth2, oauth.OperationAccessToken, start, err)
	}(time.Now())

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyFlowID, uuid.NewString()))
	logger.Debug("Exchanging authorization code for access token", log.String("url", c.config.AccessTokenURL))

	req := request.New(c.config.AccessTokenURL, c.opts.HTTPClient)
	req.Field(ParamGrantType, GrantTypeAuthorizationCode).
		Field(ParamRedirectURI, c.config.CallbackURL).
		Field(ParamClientID, c.config.ClientID).
		Field(ParamClientSecret, c.config.ClientSecret).
		ParseAs(request.ResponseTypeJSON)
	request.Apply(req, c.opts.ConfigureAccessTokenRequest, configure)

	resp, err := req.Send(ctx, http.MethodPost)
	if err != nil {
		logger.Debug("Access token request failed", log.Error(err))
		return nil, err
	}
	parsed, err := oauth.ParseResponse(resp)
	if err != nil {
		return nil, err
	}

	token, err = c.parseAccessToken(parsed)
	if err != nil {
		logger.Debug("Access token response is missing the access token")
		return nil, err
	}
	logger.Debug("Access token received", log.String("token", log.MaskString(token.Token)),
		log.Int64("expiresIn", token.ExpiresIn))
	return token, nil
}

// parseAccessToken extracts the token fields. ExpiresAt is computed relative to now.
func (c *Client) parseAccessToken(parsed map[string]any) (*oauth.AccessToken, error) {
	accessToken := oauth.StringValue(parsed, ParamAccessToken)
	if accessToken == "" {
		return nil, &oauth.MissingTokenError{
			Protocol: oauth.ProtocolOAuth2,
			Fields:   []string{ParamAccessToken},
			Response: parsed,
		}
	}

	token := &oauth.AccessToken{
		Token:        accessToken,
		Type:         oauth.StringValue(parsed, ParamTokenType),
		RefreshToken: oauth.StringValue(parsed, ParamRefreshToken),
		ExpiresIn:    oauth.Int64Value(parsed, ParamExpiresIn),
		Extra:        oauth.Without(parsed, ParamAccessToken, ParamTokenType, ParamExpiresIn, ParamRefreshToken),
	}
	if token.ExpiresIn > 0 {
		token.ExpiresAt = c.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return token, nil
}
