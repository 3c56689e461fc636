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

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/asgardeo/oauthclient/internal/system/constants"
	"github.com/asgardeo/oauthclient/internal/system/error/serviceerror"
	"github.com/asgardeo/oauthclient/internal/system/log"
)

// WriteJSONError writes the service error as a JSON response with a status code matching its type.
func WriteJSONError(w http.ResponseWriter, svcErr *serviceerror.ServiceError) {
	logger := log.GetLogger()
	logger.Error("Error in HTTP response", log.String("code", svcErr.Code),
		log.String("error", svcErr.Error), log.String("description", svcErr.ErrorDescription))

	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	w.WriteHeader(svcErr.HTTPStatus())
	if err := json.NewEncoder(w).Encode(svcErr); err != nil {
		logger.Error("Failed to write JSON error response", log.Error(err))
	}
}

// WriteJSON writes the value as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, value interface{}) {
	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.GetLogger().Error("Failed to write JSON response", log.Error(err))
	}
}
