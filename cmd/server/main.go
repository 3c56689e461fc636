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

// Package main starts an example server that completes OAuth1 and OAuth2 logins against
// the authorization servers registered in the deployment configuration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asgardeo/oauthclient/internal/system/config"
	"github.com/asgardeo/oauthclient/internal/system/healthcheck"
	httpservice "github.com/asgardeo/oauthclient/internal/system/http"
	"github.com/asgardeo/oauthclient/internal/system/log"
	"github.com/asgardeo/oauthclient/oauth"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.GetLogger()
	defer logger.Sync()

	home := getHome(logger)

	configFilePath := path.Join(home, "repository/conf/deployment.yaml")
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		logger.Fatal("Failed to load configurations", log.String("path", configFilePath), log.Error(err))
	}

	mux := initMultiPlexer(cfg, newMetricsRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := startServer(ctx, logger, cfg, mux); err != nil {
		logger.Fatal("Server failed", log.Error(err))
	}
}

// getHome returns the directory holding repository/conf/deployment.yaml.
func getHome(logger *log.Logger) string {
	homeFlag := flag.String("home", "", "Path to the server home directory")
	flag.Parse()

	if *homeFlag != "" {
		logger.Info("Using home from command line argument", log.String("home", *homeFlag))
		return *homeFlag
	}

	dir, err := os.Getwd()
	if err != nil {
		logger.Fatal("Failed to get current working directory", log.Error(err))
	}
	return dir
}

// newMetricsRegistry creates the registry exposed on /metrics.
func newMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(oauth.MetricsCollectors()...)
	return registry
}

// initMultiPlexer registers the login routes along with the health and metrics endpoints.
func initMultiPlexer(cfg *config.Config, registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	newOAuthHandler(cfg, httpservice.GetHTTPClient()).RegisterRoutes(mux)
	healthcheck.NewHandler(healthcheck.NewService(cfg)).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

// startServer serves until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, logger *log.Logger, cfg *config.Config, mux *http.ServeMux) error {
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           log.AccessLogHandler(logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting OAuth client server...", log.String("address", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
