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

import "fmt"

// ConnectionSpec describes everything needed to reach one database: the
// connection string in "scheme:body" form, the credentials the module
// itself uses to log into the database (not the user being authenticated!)
// and optional driver options. A spec is never changed after construction.
type ConnectionSpec struct {
	DSN      string
	User     string
	Password string
	Options  map[string]string
}

// Config is the full configuration of a SQL auth source: the primary and
// secondary database and the single query that is run against both. The
// query must use the named placeholders :username and :password.
// Build it by hand or with ParseConfig from a generic configuration record.
type Config struct {
	Primary   ConnectionSpec
	Secondary ConnectionSpec
	Query     string
}

// The required configuration keys, in the order they are checked.
var requiredConfigFields = []string{
	"dsn1", "dsn2", "username1", "username2", "password1", "password2", "query",
}

// ParseConfig builds a Config from a generic configuration record as
// delivered by a hosting framework. The keys dsn1, dsn2, username1,
// username2, password1, password2 and query are required and must be
// strings; options1 and options2 are optional maps of driver options.
// A missing or mistyped field results in a *ConfigError naming it.
func ParseConfig(values map[string]interface{}) (*Config, error) {
	fields := make(map[string]string, len(requiredConfigFields))
	for _, field := range requiredConfigFields {
		raw, ok := values[field]
		if !ok {
			return nil, &ConfigError{Field: field, Reason: "required field is missing"}
		}
		s, isString := raw.(string)
		if !isString {
			return nil, &ConfigError{
				Field:  field,
				Reason: fmt.Sprintf("expected a string, got %T", raw),
			}
		}
		fields[field] = s
	}
	options1, err := parseOptions(values, "options1")
	if err != nil {
		return nil, err
	}
	options2, err := parseOptions(values, "options2")
	if err != nil {
		return nil, err
	}
	return &Config{
		Primary: ConnectionSpec{
			DSN:      fields["dsn1"],
			User:     fields["username1"],
			Password: fields["password1"],
			Options:  options1,
		},
		Secondary: ConnectionSpec{
			DSN:      fields["dsn2"],
			User:     fields["username2"],
			Password: fields["password2"],
			Options:  options2,
		},
		Query: fields["query"],
	}, nil
}

// parseOptions reads an optional map field. Both map[string]string and
// map[string]interface{} with scalar values are accepted, everything else
// is a *ConfigError. Nil values in the map are rejected, a driver option
// without a value makes no sense.
func parseOptions(values map[string]interface{}, field string) (map[string]string, error) {
	raw, ok := values[field]
	if !ok || raw == nil {
		return nil, nil
	}
	switch m := raw.(type) {
	case map[string]string:
		res := make(map[string]string, len(m))
		for key, value := range m {
			res[key] = value
		}
		return res, nil
	case map[string]interface{}:
		res := make(map[string]string, len(m))
		for key, value := range m {
			s, notNull := stringValue(value)
			if !notNull {
				return nil, &ConfigError{
					Field:  field,
					Reason: fmt.Sprintf("option %q has no value", key),
				}
			}
			res[key] = s
		}
		return res, nil
	default:
		return nil, &ConfigError{
			Field:  field,
			Reason: fmt.Sprintf("expected a map of driver options, got %T", raw),
		}
	}
}
