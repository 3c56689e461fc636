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

package main

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/asgardeo/oauthclient/internal/system/config"
	"github.com/asgardeo/oauthclient/internal/system/error/serviceerror"
	httpservice "github.com/asgardeo/oauthclient/internal/system/http"
	"github.com/asgardeo/oauthclient/internal/system/log"
	"github.com/asgardeo/oauthclient/internal/system/utils"
	"github.com/asgardeo/oauthclient/oauth"
	"github.com/asgardeo/oauthclient/oauth/oauth1"
	"github.com/asgardeo/oauthclient/oauth/oauth2"
	"github.com/asgardeo/oauthclient/oauth/request"
	"github.com/asgardeo/oauthclient/oauth/urlbuilder"
)

const (
	handlerComponentName = "OAuthHandler"
	cookieMaxAge         = 10 * time.Minute
	stateCookieSuffix    = "_oauth_state"
	tokenCookieSuffix    = "_oauth_token"
	secretCookieSuffix   = "_oauth_token_secret"
)

// Client errors raised by the callback handlers.
var (
	errorMissingCode = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "OAUTH-CLIENT-1006",
		Error:            "Missing authorization code",
		ErrorDescription: "The callback request does not contain the authorization code",
	}
	errorMissingVerifier = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "OAUTH-CLIENT-1007",
		Error:            "Missing oauth verifier",
		ErrorDescription: "The callback request must contain oauth_token and oauth_verifier",
	}
	errorAccessDenied = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "OAUTH-CLIENT-1008",
		Error:            "Access denied",
		ErrorDescription: "The authorization server did not grant access",
	}
)

// tokenResponse is the JSON body returned after a successful login.
type tokenResponse struct {
	Token        string         `json:"token"`
	Type         string         `json:"type,omitempty"`
	Secret       string         `json:"secret,omitempty"`
	RefreshToken string         `json:"refreshToken,omitempty"`
	ExpiresIn    int64          `json:"expiresIn,omitempty"`
	ExpiresAt    *time.Time     `json:"expiresAt,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

type oauthHandler struct {
	cfg        *config.Config
	httpClient httpservice.HTTPClientInterface
}

func newOAuthHandler(cfg *config.Config, httpClient httpservice.HTTPClientInterface) *oauthHandler {
	return &oauthHandler{cfg: cfg, httpClient: httpClient}
}

// RegisterRoutes registers the login routes on the mux.
func (h *oauthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /oauth2/{provider}/redirect", h.handleOAuth2Redirect)
	mux.HandleFunc("GET /oauth2/{provider}/callback", h.handleOAuth2Callback)
	mux.HandleFunc("GET /oauth1/{provider}/redirect", h.handleOAuth1Redirect)
	mux.HandleFunc("GET /oauth1/{provider}/callback", h.handleOAuth1Callback)
}

func (h *oauthHandler) oauth2Client(w http.ResponseWriter, r *http.Request) (
	*oauth2.Client, config.ProviderConfig, bool) {
	provider, ok := h.cfg.FindOAuth2Provider(r.PathValue("provider"))
	if !ok {
		utils.WriteJSONError(w, &oauth.ErrorUnknownProvider)
		return nil, provider, false
	}
	return oauth2.NewClient(provider.ClientConfig(), &oauth2.Options{HTTPClient: h.httpClient}), provider, true
}

func (h *oauthHandler) oauth1Client(w http.ResponseWriter, r *http.Request) (
	*oauth1.Client, config.ProviderConfig, bool) {
	provider, ok := h.cfg.FindOAuth1Provider(r.PathValue("provider"))
	if !ok {
		utils.WriteJSONError(w, &oauth.ErrorUnknownProvider)
		return nil, provider, false
	}
	return oauth1.NewClient(provider.OAuth1ClientConfig(), &oauth1.Options{HTTPClient: h.httpClient}), provider, true
}

func (h *oauthHandler) handleOAuth2Redirect(w http.ResponseWriter, r *http.Request) {
	client, provider, ok := h.oauth2Client(w, r)
	if !ok {
		return
	}

	state, err := client.GetState()
	if err != nil {
		h.writeError(w, err)
		return
	}

	redirectURL, err := client.GetRedirectURL(func(req urlbuilder.RedirectRequest) {
		req.Param(oauth2.ParamState, state)
		if len(provider.Scopes) > 0 {
			req.Param(oauth2.ParamScope, strings.Join(provider.Scopes, " "))
		}
		keys := make([]string, 0, len(provider.AdditionalParams))
		for k := range provider.AdditionalParams {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			req.Param(k, provider.AdditionalParams[k])
		}
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	setCookie(w, provider.Name+stateCookieSuffix, state)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *oauthHandler) handleOAuth2Callback(w http.ResponseWriter, r *http.Request) {
	client, provider, ok := h.oauth2Client(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	if query.Get("error") != "" {
		utils.WriteJSONError(w, errorAccessDenied.WithDescription(query.Get("error")))
		return
	}
	code := query.Get(oauth2.ParamCode)
	if code == "" {
		utils.WriteJSONError(w, &errorMissingCode)
		return
	}

	storedState := cookieValue(r, provider.Name+stateCookieSuffix)
	if err := client.VerifyState(storedState, query.Get(oauth2.ParamState)); err != nil {
		h.writeError(w, err)
		return
	}
	clearCookie(w, provider.Name+stateCookieSuffix)

	token, err := client.GetAccessToken(r.Context(), func(req request.APIRequest) {
		req.Field(oauth2.ParamCode, code)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newTokenResponse(token))
}

func (h *oauthHandler) handleOAuth1Redirect(w http.ResponseWriter, r *http.Request) {
	client, provider, ok := h.oauth1Client(w, r)
	if !ok {
		return
	}

	requestToken, err := client.GetRequestToken(r.Context(), nil)
	if err != nil {
		h.writeError(w, err)
		return
	}

	redirectURL, err := client.GetRedirectURL(func(req urlbuilder.RedirectRequest) {
		req.Param(oauth1.ParamToken, requestToken.Token)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	setCookie(w, provider.Name+tokenCookieSuffix, requestToken.Token)
	setCookie(w, provider.Name+secretCookieSuffix, requestToken.Secret)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *oauthHandler) handleOAuth1Callback(w http.ResponseWriter, r *http.Request) {
	client, provider, ok := h.oauth1Client(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	if query.Get("denied") != "" {
		utils.WriteJSONError(w, &errorAccessDenied)
		return
	}
	oauthToken := query.Get(oauth1.ParamToken)
	verifier := query.Get(oauth1.ParamVerifier)
	if oauthToken == "" || verifier == "" {
		utils.WriteJSONError(w, &errorMissingVerifier)
		return
	}

	storedToken := cookieValue(r, provider.Name+tokenCookieSuffix)
	if err := client.VerifyState(storedToken, oauthToken); err != nil {
		h.writeError(w, err)
		return
	}
	requestToken := &oauth.RequestToken{
		Token:  storedToken,
		Secret: cookieValue(r, provider.Name+secretCookieSuffix),
	}
	clearCookie(w, provider.Name+tokenCookieSuffix)
	clearCookie(w, provider.Name+secretCookieSuffix)

	token, err := client.GetAccessToken(r.Context(), requestToken, func(req request.APIRequest) {
		req.OAuth1Param(oauth1.ParamVerifier, verifier)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newTokenResponse(token))
}

func (h *oauthHandler) writeError(w http.ResponseWriter, err error) {
	svcErr := oauth.ToServiceError(err)
	if svcErr.Type == serviceerror.ServerErrorType {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerComponentName)).
			Error("Login flow failed", log.Error(err))
	}
	utils.WriteJSONError(w, svcErr)
}

func newTokenResponse(token *oauth.AccessToken) tokenResponse {
	resp := tokenResponse{
		Token:        token.Token,
		Type:         token.Type,
		Secret:       token.Secret,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
		Extra:        token.Extra,
	}
	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

func setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
