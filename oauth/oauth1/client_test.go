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
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	httpservice "github.com/asgardeo/oauthclient/internal/system/http"
	"github.com/asgardeo/oauthclient/oauth"
	"github.com/asgardeo/oauthclient/oauth/request"
	"github.com/asgardeo/oauthclient/oauth/urlbuilder"
	"github.com/asgardeo/oauthclient/tests/mocks/httpmock"
)

type ClientTestSuite struct {
	suite.Suite
	server   *httptest.Server
	mu       sync.Mutex
	received []*http.Request
	forms    []url.Values
	reply    func(w http.ResponseWriter, r *http.Request)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.received = nil
	suite.forms = nil
	suite.reply = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("oauth_token=1&oauth_token_secret=foo"))
	}
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		suite.mu.Lock()
		suite.received = append(suite.received, r)
		suite.forms = append(suite.forms, r.PostForm)
		suite.mu.Unlock()
		suite.reply(w, r)
	}))
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *ClientTestSuite) config() oauth.OAuth1ClientConfig {
	return oauth.OAuth1ClientConfig{
		ClientConfig: oauth.ClientConfig{
			ClientID:       "consumer-key",
			ClientSecret:   "consumer-secret",
			CallbackURL:    "http://localhost/cb",
			AuthorizeURL:   "https://api.example.com/oauth/authorize",
			AccessTokenURL: suite.server.URL + "/oauth/access_token",
		},
		RequestTokenURL: suite.server.URL + "/oauth/request_token",
	}
}

func (suite *ClientTestSuite) newClient(opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = httpservice.NewHTTPClient()
	}
	return NewClient(suite.config(), opts)
}

// parseAuthorization splits an OAuth Authorization header into its unescaped parameters.
func parseAuthorization(header string) map[string]string {
	params := map[string]string{}
	for _, entry := range strings.Split(strings.TrimPrefix(header, "OAuth "), ",") {
		key, value, _ := strings.Cut(entry, "=")
		value = strings.Trim(value, "\"")
		unescaped, err := url.PathUnescape(value)
		if err == nil {
			value = unescaped
		}
		params[key] = value
	}
	return params
}

func (suite *ClientTestSuite) TestGetRequestToken() {
	client := suite.newClient(nil)

	token, err := client.GetRequestToken(context.Background(), nil)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), "1", token.Token)
	assert.Equal(suite.T(), "foo", token.Secret)
	assert.Empty(suite.T(), token.Extra)

	suite.Require().Len(suite.received, 1)
	req := suite.received[0]
	assert.Equal(suite.T(), http.MethodPost, req.Method)
	assert.Equal(suite.T(), "/oauth/request_token", req.URL.Path)

	header := req.Header.Get("Authorization")
	assert.True(suite.T(), strings.HasPrefix(header, "OAuth "))
	params := parseAuthorization(header)
	assert.Equal(suite.T(), "http://localhost/cb", params[ParamCallback])
	assert.Equal(suite.T(), "consumer-key", params[ParamConsumerKey])
	assert.Equal(suite.T(), SignatureMethodHMACSHA1, params[ParamSignatureMethod])
	assert.Equal(suite.T(), Version, params[ParamVersion])
	assert.Len(suite.T(), params[ParamNonce], 32)
	assert.NotContains(suite.T(), params, ParamToken)
}

func (suite *ClientTestSuite) TestGetRequestTokenSignatureVerifies() {
	client := suite.newClient(nil)
	client.nonce = func() (string, error) { return "fixed-nonce", nil }
	client.now = func() time.Time { return time.Unix(1700000000, 0) }

	_, err := client.GetRequestToken(context.Background(), func(r request.APIRequest) {
		r.Field("x_auth_access_type", "read")
	})
	suite.Require().NoError(err)

	expected, err := GenerateSignature(SignatureInput{
		Method:         http.MethodPost,
		URL:            suite.config().RequestTokenURL,
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		Nonce:          "fixed-nonce",
		Timestamp:      1700000000,
		Params: map[string]string{
			ParamCallback:        "http://localhost/cb",
			"x_auth_access_type": "read",
		},
	})
	suite.Require().NoError(err)

	suite.Require().Len(suite.received, 1)
	assert.Equal(suite.T(), expected.AuthorizationHeader(), suite.received[0].Header.Get("Authorization"))
	assert.Equal(suite.T(), "read", suite.forms[0].Get("x_auth_access_type"))
}

func (suite *ClientTestSuite) TestGetRequestTokenExtraFields() {
	suite.reply = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("oauth_token=1&oauth_token_secret=foo&oauth_callback_confirmed=true"))
	}

	token, err := suite.newClient(nil).GetRequestToken(context.Background(), nil)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), map[string]any{"oauth_callback_confirmed": "true"}, token.Extra)
}

func (suite *ClientTestSuite) TestGetRequestTokenMissingSecret() {
	suite.reply = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("oauth_token=1"))
	}

	token, err := suite.newClient(nil).GetRequestToken(context.Background(), nil)

	assert.Nil(suite.T(), token)
	suite.Require().ErrorIs(err, oauth.ErrMissingToken)
	var missing *oauth.MissingTokenError
	suite.Require().True(errors.As(err, &missing))
	assert.Equal(suite.T(), "1", missing.Response["oauth_token"])
	assert.Equal(suite.T(), `invalid oauth1 response. Missing "oauth_token" and "oauth_token_secret"`, err.Error())
}

func (suite *ClientTestSuite) TestGetRequestTokenJSONReply() {
	suite.reply = func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"oauth_token":"1","oauth_token_secret":"foo"}`))
	}

	token, err := suite.newClient(nil).GetRequestToken(context.Background(), func(r request.APIRequest) {
		r.ParseAs(request.ResponseTypeJSON)
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), "1", token.Token)
	assert.Equal(suite.T(), "foo", token.Secret)
}

func (suite *ClientTestSuite) TestGetRequestTokenHookOrder() {
	client := suite.newClient(&Options{
		ConfigureRequestTokenRequest: func(r request.APIRequest) {
			r.OAuth1Param("x_driver", "1").Param("scope", "driver")
		},
	})

	_, err := client.GetRequestToken(context.Background(), func(r request.APIRequest) {
		r.ClearOAuth1Param(ParamCallback).Param("scope", "caller")
	})

	suite.Require().NoError(err)
	req := suite.received[0]
	assert.Equal(suite.T(), "caller", req.URL.Query().Get("scope"))
	params := parseAuthorization(req.Header.Get("Authorization"))
	assert.NotContains(suite.T(), params, ParamCallback)
	assert.NotContains(suite.T(), params, "x_driver")
}

func (suite *ClientTestSuite) TestGetRequestTokenMissingURL() {
	httpClient := httpmock.NewHTTPClientInterfaceMock(suite.T())
	config := suite.config()
	config.RequestTokenURL = ""

	token, err := NewClient(config, &Options{HTTPClient: httpClient}).GetRequestToken(context.Background(), nil)

	assert.Nil(suite.T(), token)
	assert.ErrorIs(suite.T(), err, oauth.ErrConfiguration)
	assert.Contains(suite.T(), err.Error(), "RequestTokenURL")
	httpClient.AssertNotCalled(suite.T(), "Do", mock.Anything)
}

func (suite *ClientTestSuite) TestGetRequestTokenServerError() {
	suite.reply = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Failed to validate oauth signature and token"))
	}

	_, err := suite.newClient(nil).GetRequestToken(context.Background(), nil)

	var httpErr *request.HTTPError
	suite.Require().True(errors.As(err, &httpErr))
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.StatusCode)
}

func (suite *ClientTestSuite) TestGetRequestTokenTransportError() {
	httpClient := httpmock.NewHTTPClientInterfaceMock(suite.T())
	transportErr := errors.New("dial tcp: connection refused")
	httpClient.On("Do", mock.Anything).Return(nil, transportErr).Once()

	_, err := suite.newClient(&Options{HTTPClient: httpClient}).GetRequestToken(context.Background(), nil)

	assert.ErrorIs(suite.T(), err, transportErr)
}

func (suite *ClientTestSuite) TestGetRequestTokenMethodOption() {
	client := suite.newClient(&Options{RequestTokenMethod: http.MethodGet})

	_, err := client.GetRequestToken(context.Background(), nil)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), http.MethodGet, suite.received[0].Method)
}

func (suite *ClientTestSuite) TestNonceIsFreshPerCall() {
	client := suite.newClient(nil)

	_, err := client.GetRequestToken(context.Background(), nil)
	suite.Require().NoError(err)
	_, err = client.GetRequestToken(context.Background(), nil)
	suite.Require().NoError(err)

	first := parseAuthorization(suite.received[0].Header.Get("Authorization"))
	second := parseAuthorization(suite.received[1].Header.Get("Authorization"))
	assert.NotEqual(suite.T(), first[ParamNonce], second[ParamNonce])
	assert.NotEqual(suite.T(), first[ParamSignature], second[ParamSignature])
}

func (suite *ClientTestSuite) TestNonceFailure() {
	client := suite.newClient(nil)
	nonceErr := errors.New("entropy exhausted")
	client.nonce = func() (string, error) { return "", nonceErr }

	_, err := client.GetRequestToken(context.Background(), nil)

	assert.ErrorIs(suite.T(), err, nonceErr)
	assert.Empty(suite.T(), suite.received)
}

func (suite *ClientTestSuite) TestGetRedirectURL() {
	client := suite.newClient(nil)

	redirectURL, err := client.GetRedirectURL(nil)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "https://api.example.com/oauth/authorize", redirectURL)

	redirectURL, err = client.GetRedirectURL(func(r urlbuilder.RedirectRequest) {
		r.Param(ParamToken, "1")
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "https://api.example.com/oauth/authorize?oauth_token=1", redirectURL)
}

func (suite *ClientTestSuite) TestGetRedirectURLHookOrder() {
	client := suite.newClient(&Options{
		ConfigureRedirectRequest: func(r urlbuilder.RedirectRequest) {
			r.Param("force_login", "true").Param("lang", "en")
		},
	})

	redirectURL, err := client.GetRedirectURL(func(r urlbuilder.RedirectRequest) {
		r.ClearParam("lang").Param(ParamToken, "1")
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), "https://api.example.com/oauth/authorize?force_login=true&oauth_token=1", redirectURL)
}

func (suite *ClientTestSuite) TestGetRedirectURLMissingAuthorizeURL() {
	config := suite.config()
	config.AuthorizeURL = ""

	_, err := NewClient(config, nil).GetRedirectURL(nil)

	assert.ErrorIs(suite.T(), err, oauth.ErrConfiguration)
	assert.Contains(suite.T(), err.Error(), "AuthorizeURL")
}

func (suite *ClientTestSuite) TestGetAccessToken() {
	suite.reply = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("oauth_token=access&oauth_token_secret=access-secret&user_id=42&screen_name=jdoe"))
	}
	client := suite.newClient(nil)
	client.nonce = func() (string, error) { return "fixed-nonce", nil }
	client.now = func() time.Time { return time.Unix(1700000000, 0) }

	token, err := client.GetAccessToken(context.Background(),
		&oauth.RequestToken{Token: "request", Secret: "request-secret"},
		func(r request.APIRequest) {
			r.OAuth1Param(ParamVerifier, "verifier")
		})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), "access", token.Token)
	assert.Equal(suite.T(), "access-secret", token.Secret)
	assert.Equal(suite.T(), map[string]any{"user_id": "42", "screen_name": "jdoe"}, token.Extra)

	expected, err := GenerateSignature(SignatureInput{
		Method:           http.MethodPost,
		URL:              suite.config().AccessTokenURL,
		ConsumerKey:      "consumer-key",
		ConsumerSecret:   "consumer-secret",
		Nonce:            "fixed-nonce",
		Timestamp:        1700000000,
		Params:           map[string]string{ParamVerifier: "verifier"},
		OAuthToken:       "request",
		OAuthTokenSecret: "request-secret",
	})
	suite.Require().NoError(err)

	req := suite.received[0]
	assert.Equal(suite.T(), "/oauth/access_token", req.URL.Path)
	assert.Equal(suite.T(), expected.AuthorizationHeader(), req.Header.Get("Authorization"))
	params := parseAuthorization(req.Header.Get("Authorization"))
	assert.Equal(suite.T(), "request", params[ParamToken])
	assert.Equal(suite.T(), "verifier", params[ParamVerifier])
}

func (suite *ClientTestSuite) TestGetAccessTokenHookOrder() {
	client := suite.newClient(&Options{
		ConfigureAccessTokenRequest: func(r request.APIRequest) {
			r.Field("x_mode", "driver")
		},
	})

	_, err := client.GetAccessToken(context.Background(),
		&oauth.RequestToken{Token: "request", Secret: "request-secret"},
		func(r request.APIRequest) {
			r.Field("x_mode", "caller")
		})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), "caller", suite.forms[0].Get("x_mode"))
}

func (suite *ClientTestSuite) TestGetAccessTokenInvalidRequestToken() {
	testCases := []struct {
		name     string
		token    *oauth.RequestToken
		property string
	}{
		{"Nil", nil, "Token"},
		{"MissingToken", &oauth.RequestToken{Secret: "s"}, "Token"},
		{"MissingSecret", &oauth.RequestToken{Token: "t"}, "Secret"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			httpClient := httpmock.NewHTTPClientInterfaceMock(suite.T())
			config := suite.config()
			// The request token is validated before the endpoint configuration.
			config.AccessTokenURL = ""

			_, err := NewClient(config, &Options{HTTPClient: httpClient}).
				GetAccessToken(context.Background(), tc.token, nil)

			suite.ErrorIs(err, oauth.ErrInvalidRequestToken)
			var invalid *oauth.InvalidRequestTokenError
			suite.Require().True(errors.As(err, &invalid))
			suite.Equal(tc.property, invalid.Property)
			httpClient.AssertNotCalled(suite.T(), "Do", mock.Anything)
		})
	}
}

func (suite *ClientTestSuite) TestGetAccessTokenMissingURL() {
	httpClient := httpmock.NewHTTPClientInterfaceMock(suite.T())
	config := suite.config()
	config.AccessTokenURL = ""

	_, err := NewClient(config, &Options{HTTPClient: httpClient}).GetAccessToken(context.Background(),
		&oauth.RequestToken{Token: "t", Secret: "s"}, nil)

	assert.ErrorIs(suite.T(), err, oauth.ErrConfiguration)
	httpClient.AssertNotCalled(suite.T(), "Do", mock.Anything)
}

func (suite *ClientTestSuite) TestGetAccessTokenMissingToken() {
	suite.reply = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("oauth_token_secret=foo"))
	}

	_, err := suite.newClient(nil).GetAccessToken(context.Background(),
		&oauth.RequestToken{Token: "t", Secret: "s"}, nil)

	assert.ErrorIs(suite.T(), err, oauth.ErrMissingToken)
}

func (suite *ClientTestSuite) TestVerifyState() {
	client := suite.newClient(nil)

	assert.NoError(suite.T(), client.VerifyState("abc", "abc"))
	assert.ErrorIs(suite.T(), client.VerifyState("foo", "bar"), oauth.ErrStateMismatch)
	assert.ErrorIs(suite.T(), client.VerifyState("", ""), oauth.ErrStateMismatch)
}

func (suite *ClientTestSuite) TestSigningParams() {
	req := request.New("https://api.example.com", nil)
	req.Param("shared", "query").Param("q", "1")
	req.OAuth1Param("shared", "oauth1").OAuth1Param(ParamCallback, "cb")
	req.Field("shared", "field").Field("f", "2")

	assert.Equal(suite.T(), map[string]string{
		"shared":      "field",
		"q":           "1",
		ParamCallback: "cb",
		"f":           "2",
	}, SigningParams(req))

	req.SendAs(request.BodyTypeJSON)
	assert.Equal(suite.T(), map[string]string{
		"shared":      "oauth1",
		"q":           "1",
		ParamCallback: "cb",
	}, SigningParams(req))
}

func (suite *ClientTestSuite) TestSignatureLogFieldsOmitSecrets() {
	sig, err := GenerateSignature(SignatureInput{
		Method:           http.MethodPost,
		URL:              "https://API.example.com:443/oauth/access_token?lang=en",
		ConsumerKey:      "consumer-key",
		ConsumerSecret:   "consumer-secret",
		Nonce:            "nonce-value",
		Timestamp:        1318622958,
		Params:           map[string]string{ParamVerifier: "verifier-value"},
		OAuthToken:       "request-token-value",
		OAuthTokenSecret: "request-secret-value",
	})
	suite.Require().NoError(err)

	fields := signatureLogFields("post", "https://API.example.com:443/oauth/access_token?lang=en", sig)

	values := map[string]string{}
	for _, field := range fields {
		value, ok := field.Value.(string)
		suite.Require().True(ok)
		values[field.Key] = value
		for _, secret := range []string{"request-token-value", "verifier-value", "nonce-value", "consumer-secret",
			"request-secret-value", sig.Signature} {
			assert.NotContains(suite.T(), value, secret)
		}
	}
	signedParams := "oauth_consumer_key,oauth_nonce,oauth_signature_method,oauth_timestamp,oauth_token," +
		"oauth_verifier,oauth_version"
	assert.Equal(suite.T(), map[string]string{
		"method":       http.MethodPost,
		"url":          "https://api.example.com/oauth/access_token",
		"signedParams": signedParams,
	}, values)
}

func (suite *ClientTestSuite) TestDefaults() {
	client := NewClient(suite.config(), nil)

	assert.Equal(suite.T(), http.MethodPost, client.opts.RequestTokenMethod)
	assert.Equal(suite.T(), http.MethodPost, client.opts.AccessTokenMethod)
	assert.NotNil(suite.T(), client.opts.HTTPClient)
	assert.Equal(suite.T(), suite.config(), client.Config())
}
