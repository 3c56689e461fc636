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

// Package serviceerror defines the error structures exposed over HTTP surfaces.
package serviceerror

import "net/http"

// ServiceErrorType defines the type of service error.
type ServiceErrorType string

const (
	// ClientErrorType denotes an error caused by the caller or by the authorization server's reply
	// to the caller's request.
	ClientErrorType ServiceErrorType = "client_error"
	// ServerErrorType denotes an error caused by this deployment.
	ServerErrorType ServiceErrorType = "server_error"
)

// ServiceError defines a generic error structure that can be used across the service layer.
type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

// HTTPStatus returns the HTTP status code matching the error type.
func (e *ServiceError) HTTPStatus() int {
	if e.Type == ClientErrorType {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// WithDescription returns a copy of the error carrying a custom description.
func (e ServiceError) WithDescription(desc string) *ServiceError {
	if desc != "" {
		e.ErrorDescription = desc
	}
	return &e
}
