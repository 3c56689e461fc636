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

package healthcheck

import (
	"net/http"

	"github.com/asgardeo/oauthclient/internal/system/log"
	"github.com/asgardeo/oauthclient/internal/system/utils"
)

// Handler serves the health check endpoints.
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new instance of Handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the liveness and readiness endpoints on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health/liveness", h.HandleLivenessRequest)
	mux.HandleFunc("GET /health/readiness", h.HandleReadinessRequest)
}

// HandleLivenessRequest handles the health check liveness request.
func (h *Handler) HandleLivenessRequest(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleReadinessRequest handles the health check readiness request.
func (h *Handler) HandleReadinessRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckHandler"))

	serverStatus := h.service.CheckReadiness()
	statusCode := http.StatusOK
	if serverStatus.Status != StatusUp {
		logger.Warn("Readiness check failed", log.String("status", string(serverStatus.Status)))
		statusCode = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, statusCode, serverStatus)
}
