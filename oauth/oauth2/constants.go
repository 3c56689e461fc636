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

package oauth2

// Request and response parameter names of the authorization code grant.
const (
	ParamClientID     = "client_id"
	ParamClientSecret = "client_secret"
	ParamRedirectURI  = "redirect_uri"
	ParamGrantType    = "grant_type"
	ParamCode         = "code"
	ParamState        = "state"
	ParamScope        = "scope"
	ParamAccessToken  = "access_token"
	ParamTokenType    = "token_type"
	ParamExpiresIn    = "expires_in"
	ParamRefreshToken = "refresh_token"

	GrantTypeAuthorizationCode = "authorization_code"
)
