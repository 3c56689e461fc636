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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	tokenRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oauthclient",
		Name:      "token_requests_total",
		Help:      "Number of token requests sent to authorization servers.",
	}, []string{"protocol", "operation", "result"})

	tokenRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "oauthclient",
		Name:      "token_request_duration_seconds",
		Help:      "Latency of token requests sent to authorization servers.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"protocol", "operation"})
)

// Operation labels.
const (
	OperationRequestToken = "request_token"
	OperationAccessToken  = "access_token"
)

// MetricsCollectors returns the collectors of the client drivers so that callers can
// register them with their own registry.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{tokenRequests, tokenRequestDuration}
}

// ObserveTokenRequest records the outcome and latency of a token request started at start.
func ObserveTokenRequest(protocol, operation string, start time.Time, err error) {
	tokenRequestDuration.WithLabelValues(protocol, operation).Observe(time.Since(start).Seconds())
	tokenRequests.WithLabelValues(protocol, operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	default:
		return "error"
	}
}
