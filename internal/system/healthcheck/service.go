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

// Package healthcheck reports the liveness and readiness of the server.
package healthcheck

import (
	"strings"

	"github.com/asgardeo/oauthclient/internal/system/config"
)

// ServiceInterface defines the interface for the health check service.
type ServiceInterface interface {
	CheckReadiness() ServerStatus
}

// Service checks that every registered authorization server has the endpoints its flow needs.
type Service struct {
	cfg *config.Config
}

// NewService creates a health check service for the given configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// CheckReadiness reports each provider as DOWN when an endpoint it needs is not configured.
func (s *Service) CheckReadiness() ServerStatus {
	statuses := make([]ServiceStatus, 0, len(s.cfg.OAuth2Providers)+len(s.cfg.OAuth1Providers))
	for _, p := range s.cfg.OAuth2Providers {
		statuses = append(statuses, providerStatus("oauth2/"+p.Name, map[string]string{
			"authorize_url":    p.AuthorizeURL,
			"access_token_url": p.AccessTokenURL,
		}))
	}
	for _, p := range s.cfg.OAuth1Providers {
		statuses = append(statuses, providerStatus("oauth1/"+p.Name, map[string]string{
			"request_token_url": p.RequestTokenURL,
			"authorize_url":     p.AuthorizeURL,
			"access_token_url":  p.AccessTokenURL,
		}))
	}

	status := StatusUp
	for _, st := range statuses {
		if st.Status == StatusDown {
			status = StatusDown
			break
		}
	}
	return ServerStatus{Status: status, ServiceStatus: statuses}
}

func providerStatus(name string, endpoints map[string]string) ServiceStatus {
	var missing []string
	for _, key := range []string{"request_token_url", "authorize_url", "access_token_url"} {
		if value, ok := endpoints[key]; ok && strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return ServiceStatus{ServiceName: name, Status: StatusDown, Reason: "missing " + strings.Join(missing, ", ")}
	}
	return ServiceStatus{ServiceName: name, Status: StatusUp}
}
