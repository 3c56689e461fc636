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

// Package oauth holds the types shared by the OAuth1 and OAuth2 client drivers: client
// configuration, token shapes, typed errors, CSRF state helpers and the response
// normalizer.
package oauth

// ClientConfig is the registration of a client with an authorization server.
type ClientConfig struct {
	ClientID       string
	ClientSecret   string
	CallbackURL    string
	AuthorizeURL   string
	AccessTokenURL string
}

// OAuth1ClientConfig extends ClientConfig with the temporary credentials endpoint.
type OAuth1ClientConfig struct {
	ClientConfig
	RequestTokenURL string
}
