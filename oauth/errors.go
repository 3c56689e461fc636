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
	"errors"
	"fmt"
	"strings"

	"github.com/asgardeo/oauthclient/internal/system/error/serviceerror"
	"github.com/asgardeo/oauthclient/oauth/request"
)

// Protocol names used in error messages and metrics.
const (
	ProtocolOAuth1 = "oauth1"
	ProtocolOAuth2 = "oauth2"
)

// Sentinel errors matched with errors.Is.
var (
	ErrConfiguration       = errors.New("oauth client is not configured for the operation")
	ErrStateMismatch       = errors.New("unable to verify re-redirect state")
	ErrMissingToken        = errors.New("authorization server response is missing the token")
	ErrInvalidRequestToken = errors.New("invalid request token")
)

// ConfigurationError is returned when an endpoint required by an operation is not configured.
type ConfigurationError struct {
	Property string
	Purpose  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing \"config.%s\": the property is required to %s", e.Property, e.Purpose)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// StateMismatchError is returned when the state received on the callback does not match
// the stored state.
type StateMismatchError struct{}

func (e *StateMismatchError) Error() string {
	return ErrStateMismatch.Error()
}

func (e *StateMismatchError) Unwrap() error {
	return ErrStateMismatch
}

// MissingTokenError is returned when the authorization server reply lacks the token
// fields. Response holds the parsed reply.
type MissingTokenError struct {
	Protocol string
	Fields   []string
	Response map[string]any
}

func (e *MissingTokenError) Error() string {
	quoted := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		quoted[i] = fmt.Sprintf("%q", f)
	}
	return fmt.Sprintf("invalid %s response. Missing %s", e.Protocol, strings.Join(quoted, " and "))
}

func (e *MissingTokenError) Unwrap() error {
	return ErrMissingToken
}

// InvalidRequestTokenError is returned when an OAuth1 access token exchange is attempted
// without a complete request token pair.
type InvalidRequestTokenError struct {
	Property string
}

func (e *InvalidRequestTokenError) Error() string {
	return fmt.Sprintf("missing \"requestToken.%s\": the property is required to generate access token",
		e.Property)
}

func (e *InvalidRequestTokenError) Unwrap() error {
	return ErrInvalidRequestToken
}

// Service errors exposed over HTTP surfaces.
var (
	// ErrorStateMismatch is the error when the callback state cannot be verified.
	ErrorStateMismatch = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "OAUTH-CLIENT-1001",
		Error:            "State mismatch",
		ErrorDescription: "Unable to verify re-redirect state",
	}
	// ErrorMissingToken is the error when the authorization server reply lacks the token.
	ErrorMissingToken = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "OAUTH-CLIENT-1002",
		Error:            "Missing token",
		ErrorDescription: "The authorization server response does not contain the expected token",
	}
	// ErrorInvalidRequestToken is the error when the OAuth1 request token pair is incomplete.
	ErrorInvalidRequestToken = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "OAUTH-CLIENT-1003",
		Error:            "Invalid request token",
		ErrorDescription: "The request token and secret are required to generate the access token",
	}
	// ErrorAuthorizationServer is the error when the authorization server rejects the request.
	ErrorAuthorizationServer = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "OAUTH-CLIENT-1004",
		Error:            "Authorization server error",
		ErrorDescription: "The authorization server rejected the request",
	}
	// ErrorUnknownProvider is the error when no provider is registered under the requested name.
	ErrorUnknownProvider = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "OAUTH-CLIENT-1005",
		Error:            "Unknown provider",
		ErrorDescription: "No authorization server is registered under the given name",
	}
	// ErrorConfiguration is the error when the client is missing a required endpoint.
	ErrorConfiguration = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "OAUTH-CLIENT-5001",
		Error:            "Client configuration error",
		ErrorDescription: "The client is not configured for the requested operation",
	}
	// ErrorUnexpectedServerError is the error when an unexpected failure occurs.
	ErrorUnexpectedServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "OAUTH-CLIENT-5000",
		Error:            "Something went wrong",
		ErrorDescription: "An unexpected error occurred while processing the request",
	}
)

// ToServiceError maps an error returned by the client drivers to a service error.
func ToServiceError(err error) *serviceerror.ServiceError {
	var httpErr *request.HTTPError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStateMismatch):
		return &ErrorStateMismatch
	case errors.Is(err, ErrMissingToken):
		return ErrorMissingToken.WithDescription(err.Error())
	case errors.Is(err, ErrInvalidRequestToken):
		return ErrorInvalidRequestToken.WithDescription(err.Error())
	case errors.Is(err, ErrConfiguration):
		return ErrorConfiguration.WithDescription(err.Error())
	case errors.As(err, &httpErr):
		return ErrorAuthorizationServer.WithDescription(httpErr.Error())
	default:
		return &ErrorUnexpectedServerError
	}
}
