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
	"crypto/subtle"

	"github.com/asgardeo/oauthclient/internal/system/utils"
)

// StateLength is the length of generated CSRF state values and OAuth1 nonces.
const StateLength = 32

// NewState returns a fresh random value to round trip through the authorization redirect.
func NewState() (string, error) {
	return utils.GenerateRandomString(StateLength)
}

// VerifyState succeeds only when both values are non-empty and equal.
func VerifyState(state, input string) error {
	if state == "" || input == "" || subtle.ConstantTimeCompare([]byte(state), []byte(input)) != 1 {
		return &StateMismatchError{}
	}
	return nil
}
