// The MIT License (MIT)

// Copyright (c) 2018 Fabian Wenzelmann

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package sqlauth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfigValues() map[string]interface{} {
	return map[string]interface{}{
		"dsn1":      "mysql:host=db1;dbname=idp",
		"dsn2":      "mysql:host=db2;dbname=idp",
		"username1": "auth1",
		"username2": "auth2",
		"password1": "secret1",
		"password2": "secret2",
		"query":     "SELECT uid FROM users WHERE username = :username AND password = :password",
	}
}

func TestParseConfig(t *testing.T) {
	values := validConfigValues()
	values["options1"] = map[string]string{"timeout": "5s"}
	values["options2"] = map[string]interface{}{"sslmode": "require", "port": 5432}

	config, err := ParseConfig(values)
	require.NoError(t, err)
	require.Equal(t, "mysql:host=db1;dbname=idp", config.Primary.DSN)
	require.Equal(t, "auth1", config.Primary.User)
	require.Equal(t, "secret1", config.Primary.Password)
	require.Equal(t, map[string]string{"timeout": "5s"}, config.Primary.Options)
	require.Equal(t, "mysql:host=db2;dbname=idp", config.Secondary.DSN)
	require.Equal(t, "auth2", config.Secondary.User)
	require.Equal(t, "secret2", config.Secondary.Password)
	// scalar option values are coerced to strings
	require.Equal(t, map[string]string{"sslmode": "require", "port": "5432"}, config.Secondary.Options)
	require.Contains(t, config.Query, ":username")
}

func TestParseConfigMissingFields(t *testing.T) {
	for _, field := range requiredConfigFields {
		values := validConfigValues()
		delete(values, field)
		_, err := ParseConfig(values)
		require.Error(t, err, "field %s", field)
		var configErr *ConfigError
		require.True(t, errors.As(err, &configErr), "field %s", field)
		require.Equal(t, field, configErr.Field)
		require.Contains(t, err.Error(), field)
	}
}

func TestParseConfigWrongTypes(t *testing.T) {
	for _, field := range requiredConfigFields {
		values := validConfigValues()
		values[field] = 42
		_, err := ParseConfig(values)
		var configErr *ConfigError
		require.True(t, errors.As(err, &configErr), "field %s", field)
		require.Equal(t, field, configErr.Field)
		require.Contains(t, configErr.Reason, "string")
	}
}

func TestParseConfigBadOptions(t *testing.T) {
	values := validConfigValues()
	values["options1"] = "not a map"
	_, err := ParseConfig(values)
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "options1", configErr.Field)

	values = validConfigValues()
	values["options2"] = map[string]interface{}{"key": nil}
	_, err = ParseConfig(values)
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "options2", configErr.Field)
}

func TestNewSQLSource(t *testing.T) {
	source, err := NewSQLSource("example-sql", validConfigValues())
	require.NoError(t, err)
	require.Equal(t, "example-sql", source.Name())

	_, err = NewSQLSource("broken", map[string]interface{}{})
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
}
