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

// Package utils provides small helpers shared across the module.
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// GenerateRandomString returns a URL-safe random string of exactly size characters drawn
// from the base64url alphabet.
func GenerateRandomString(size int) (string, error) {
	if size <= 0 {
		return "", errors.New("random string size must be positive")
	}

	// Every base64 character carries six bits.
	buf := make([]byte, (size*6+7)/8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf)[:size], nil
}
