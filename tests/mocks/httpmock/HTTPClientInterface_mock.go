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

// Package httpmock provides a testify mock of the outbound HTTP client.
package httpmock

import (
	"net/http"

	"github.com/stretchr/testify/mock"
)

// HTTPClientInterfaceMock is a mock implementation of the HTTPClientInterface.
type HTTPClientInterfaceMock struct {
	mock.Mock
}

// NewHTTPClientInterfaceMock creates a mock and registers a cleanup that asserts the
// expectations of the test.
func NewHTTPClientInterfaceMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *HTTPClientInterfaceMock {
	m := &HTTPClientInterfaceMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Do mocks the Do method of the HTTPClientInterface.
func (m *HTTPClientInterfaceMock) Do(req *http.Request) (*http.Response, error) {
	ret := m.Called(req)

	if fn, ok := ret.Get(0).(func(*http.Request) (*http.Response, error)); ok {
		return fn(req)
	}

	var resp *http.Response
	if ret.Get(0) != nil {
		resp = ret.Get(0).(*http.Response)
	}
	return resp, ret.Error(1)
}
