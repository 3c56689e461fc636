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

package log

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"

	"github.com/asgardeo/oauthclient/internal/system/constants"
)

type LogTestSuite struct {
	suite.Suite
}

func TestLogSuite(t *testing.T) {
	suite.Run(t, new(LogTestSuite))
}

func (suite *LogTestSuite) TearDownTest() {
	logger = nil
	once = sync.Once{}
}

func (suite *LogTestSuite) newBufferedLogger(level string) (*Logger, *bytes.Buffer) {
	suite.T().Setenv(constants.LogLevelEnvironmentVariable, level)
	var buf bytes.Buffer
	l, err := newLogger(&buf)
	suite.Require().NoError(err)
	return l, &buf
}

func (suite *LogTestSuite) TestGetLoggerWithEnvironmentVariable() {
	testCases := []struct {
		name     string
		logLevel string
		isValid  bool
	}{
		{"DefaultLevel", "", true},
		{"DebugLevel", "debug", true},
		{"InfoLevel", "info", true},
		{"WarnLevel", "warn", true},
		{"ErrorLevel", "error", true},
		{"UpperCaseLevel", "DEBUG", true},
		{"InvalidLevel", "unknown", false},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			logger = nil
			once = sync.Once{}
			t.Setenv(constants.LogLevelEnvironmentVariable, tc.logLevel)

			if tc.isValid {
				assert.NotPanics(t, func() {
					_ = GetLogger()
				})
			} else {
				assert.Panics(t, func() {
					_ = GetLogger()
				})
			}
		})
	}
}

func (suite *LogTestSuite) TestParseLogLevel() {
	testCases := []struct {
		name      string
		logLevel  string
		expected  zapcore.Level
		expectErr bool
	}{
		{"Debug", "debug", zapcore.DebugLevel, false},
		{"Info", "info", zapcore.InfoLevel, false},
		{"Warn", "warn", zapcore.WarnLevel, false},
		{"Error", "error", zapcore.ErrorLevel, false},
		{"Padded", " info ", zapcore.InfoLevel, false},
		{"Invalid", "invalid", zapcore.ErrorLevel, true},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			level, err := parseLogLevel(tc.logLevel)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, level)
			}
		})
	}
}

func (suite *LogTestSuite) TestLogMethods() {
	log, buf := suite.newBufferedLogger("debug")

	log.Debug("Debug message", String("test", "debug"))
	log.Info("Info message", String("test", "info"))
	log.Warn("Warning message", String("test", "warn"))
	log.Error("Error message", Error(errors.New("boom")))

	output := buf.String()
	assert.Contains(suite.T(), output, "Debug message")
	assert.Contains(suite.T(), output, "Info message")
	assert.Contains(suite.T(), output, "Warning message")
	assert.Contains(suite.T(), output, "Error message")

	assert.Contains(suite.T(), output, `"test": "debug"`)
	assert.Contains(suite.T(), output, `"test": "info"`)
	assert.Contains(suite.T(), output, `"test": "warn"`)
	assert.Contains(suite.T(), output, `"error": "boom"`)
}

func (suite *LogTestSuite) TestLevelFiltering() {
	log, buf := suite.newBufferedLogger("warn")

	assert.False(suite.T(), log.IsDebugEnabled())
	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible warn")

	output := buf.String()
	assert.NotContains(suite.T(), output, "hidden")
	assert.Contains(suite.T(), output, "visible warn")
}

func (suite *LogTestSuite) TestIsDebugEnabled() {
	log, _ := suite.newBufferedLogger("debug")
	assert.True(suite.T(), log.IsDebugEnabled())
	assert.True(suite.T(), log.With(String("k", "v")).IsDebugEnabled())
}

func (suite *LogTestSuite) TestLoggerWith() {
	log, buf := suite.newBufferedLogger("debug")

	contextLogger := log.With(String(LoggerKeyComponentName, "test"), Int("attempt", 2))
	assert.NotNil(suite.T(), contextLogger)

	contextLogger.Info("Context log message")

	output := buf.String()
	assert.Contains(suite.T(), output, `"component": "test"`)
	assert.Contains(suite.T(), output, `"attempt": 2`)
	assert.Contains(suite.T(), output, "Context log message")
}

func (suite *LogTestSuite) TestMaskString() {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty", "", ""},
		{"Short", "ab", "**"},
		{"ThreeChars", "abc", "***"},
		{"Normal", "password", "p******d"},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MaskString(tc.input))
		})
	}
}

func (suite *LogTestSuite) TestConvertFields() {
	fields := []Field{
		String("string", "value"),
		Int("int", 42),
		Bool("bool", true),
		Error(errors.New("failure")),
	}

	zapFields := convertFields(fields)
	assert.Len(suite.T(), zapFields, 4)
	assert.Equal(suite.T(), "string", zapFields[0].Key)
	assert.Equal(suite.T(), zapcore.StringType, zapFields[0].Type)
	assert.Equal(suite.T(), zapcore.ErrorType, zapFields[3].Type)
}
