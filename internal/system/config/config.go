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

// Package config provides structures and functions for loading the deployment configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/asgardeo/oauthclient/internal/system/constants"
	"github.com/asgardeo/oauthclient/internal/system/log"
	"github.com/asgardeo/oauthclient/oauth"
)

// DefaultPort is the port the server listens on when none is configured.
const DefaultPort = 8090

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname string `yaml:"hostname" env:"SERVER_HOSTNAME"`
	Port     int    `yaml:"port" env:"SERVER_PORT"`
}

// ProviderConfig holds the client registration of a single authorization server.
type ProviderConfig struct {
	Name             string            `yaml:"name"`
	ClientID         string            `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret     string            `yaml:"client_secret" env:"CLIENT_SECRET"`
	CallbackURL      string            `yaml:"callback_url" env:"CALLBACK_URL"`
	AuthorizeURL     string            `yaml:"authorize_url"`
	AccessTokenURL   string            `yaml:"access_token_url"`
	RequestTokenURL  string            `yaml:"request_token_url"`
	Scopes           []string          `yaml:"scopes"`
	AdditionalParams map[string]string `yaml:"additional_params"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server          ServerConfig     `yaml:"server"`
	OAuth2Providers []ProviderConfig `yaml:"oauth2_providers"`
	OAuth1Providers []ProviderConfig `yaml:"oauth1_providers"`
}

// LoadConfig loads the configurations from the specified YAML file and applies the
// environment variable overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := file.Close(); ferr != nil {
			log.GetLogger().Error("Failed to close config file", log.Error(ferr))
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides overrides server settings from OAUTHCLIENT_SERVER_* and provider
// credentials from OAUTHCLIENT_<PROVIDER>_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(&cfg.Server, env.Options{
		Prefix: constants.EnvironmentVariablePrefix,
	}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	for _, providers := range [][]ProviderConfig{cfg.OAuth2Providers, cfg.OAuth1Providers} {
		for i := range providers {
			if err := env.ParseWithOptions(&providers[i], env.Options{
				Prefix: ProviderEnvPrefix(providers[i].Name),
			}); err != nil {
				return fmt.Errorf("parse env for provider %q: %w", providers[i].Name, err)
			}
		}
	}
	return nil
}

// ProviderEnvPrefix returns the environment variable prefix used for the provider's credentials.
func ProviderEnvPrefix(name string) string {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return constants.EnvironmentVariablePrefix + normalized + "_"
}

// Validate checks that every provider is uniquely named and carries client credentials.
func (c *Config) Validate() error {
	seen := make(map[string]struct{})
	for _, p := range append(append([]ProviderConfig{}, c.OAuth2Providers...), c.OAuth1Providers...) {
		if strings.TrimSpace(p.Name) == "" {
			return errors.New("provider name must not be empty")
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate provider %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.ClientID == "" {
			return fmt.Errorf("provider %q is missing client_id", p.Name)
		}
	}
	return nil
}

// FindOAuth2Provider returns the OAuth2 provider with the given name.
func (c *Config) FindOAuth2Provider(name string) (ProviderConfig, bool) {
	return findProvider(c.OAuth2Providers, name)
}

// FindOAuth1Provider returns the OAuth1 provider with the given name.
func (c *Config) FindOAuth1Provider(name string) (ProviderConfig, bool) {
	return findProvider(c.OAuth1Providers, name)
}

func findProvider(providers []ProviderConfig, name string) (ProviderConfig, bool) {
	for _, p := range providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// ClientConfig converts the provider registration into an OAuth2 client configuration.
func (p ProviderConfig) ClientConfig() oauth.ClientConfig {
	return oauth.ClientConfig{
		ClientID:       p.ClientID,
		ClientSecret:   p.ClientSecret,
		CallbackURL:    p.CallbackURL,
		AuthorizeURL:   p.AuthorizeURL,
		AccessTokenURL: p.AccessTokenURL,
	}
}

// OAuth1ClientConfig converts the provider registration into an OAuth1 client configuration.
func (p ProviderConfig) OAuth1ClientConfig() oauth.OAuth1ClientConfig {
	return oauth.OAuth1ClientConfig{
		ClientConfig:    p.ClientConfig(),
		RequestTokenURL: p.RequestTokenURL,
	}
}
