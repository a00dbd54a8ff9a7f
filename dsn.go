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
	"fmt"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Connection strings are written in the portable "scheme:body" form, for
// example
//
//	mysql:host=db1.example.com;port=3306;dbname=idp
//	pgsql:host=db2.example.com;dbname=idp
//	sqlite:/var/lib/idp/users.sqlite3
//
// The scheme (everything before the first colon, case insensitive) selects
// a driver profile which knows the registered driver name, how to turn the
// body plus the separate user/password fields into the driver's own DSN
// format, which placeholder style the driver expects and which statements
// to run on a fresh session.

// MaskedCredential replaces the values of user= and password= components
// when a connection string is obfuscated for logs and error messages.
const MaskedCredential = "***"

var credentialPattern = regexp.MustCompile(`(?i)(user|password)(\s*=\s*)[^;]*`)

// ObfuscateDSN replaces the values of all user= and password= components of
// a connection string (case insensitive, terminated by ';' or the end of
// the string) with MaskedCredential. Raw connection strings must never
// appear in logs or error messages, always run them through this first.
func ObfuscateDSN(dsn string) string {
	return credentialPattern.ReplaceAllString(dsn, "${1}${2}"+MaskedCredential)
}

// dsnScheme returns the lower-case scheme of a connection string, that is
// everything before the first ':'. It returns "" if there is no colon.
func dsnScheme(dsn string) string {
	i := strings.Index(dsn, ":")
	if i < 0 {
		return ""
	}
	return strings.ToLower(dsn[:i])
}

// dsnBody returns everything after the first ':' of a connection string,
// or the whole string if there is no colon.
func dsnBody(dsn string) string {
	i := strings.Index(dsn, ":")
	if i < 0 {
		return dsn
	}
	return dsn[i+1:]
}

type placeholderStyle int

const (
	// questionMark is the ? placeholder used by MySQL and SQLite.
	questionMark placeholderStyle = iota
	// dollarNumber is the $1, $2, ... placeholder used by PostgreSQL.
	dollarNumber
)

// driverProfile describes everything scheme specific about a database:
// which registered driver serves it, how to build its DSN, which
// placeholder style its queries use and which statements to run once per
// fresh session (character set setup).
type driverProfile struct {
	driverName  string
	placeholder placeholderStyle
	buildDSN    func(spec *ConnectionSpec, body string) (string, error)
	sessionInit []string
}

var driverProfiles = map[string]*driverProfile{
	"mysql": {
		driverName:  "mysql",
		placeholder: questionMark,
		buildDSN:    buildMySQLDSN,
		sessionInit: []string{
			"SET SESSION sql_mode = 'STRICT_ALL_TABLES'",
			"SET NAMES utf8mb4",
		},
	},
	"pgsql": {
		driverName:  "pgx",
		placeholder: dollarNumber,
		buildDSN:    buildPostgresDSN,
		sessionInit: []string{
			"SET client_encoding TO 'UTF8'",
		},
	},
	"sqlite": {
		driverName:  "sqlite",
		placeholder: questionMark,
		buildDSN:    buildSQLiteDSN,
	},
}

// profileFor returns the driver profile for a connection string. For an
// unrecognized scheme it returns a generic profile that passes the body
// through unchanged to a driver registered under the scheme name and issues
// no session setup statements.
func profileFor(dsn string) *driverProfile {
	scheme := dsnScheme(dsn)
	if profile, ok := driverProfiles[scheme]; ok {
		return profile
	}
	return &driverProfile{
		driverName:  scheme,
		placeholder: questionMark,
		buildDSN: func(spec *ConnectionSpec, body string) (string, error) {
			return body, nil
		},
	}
}

// parseKeyValues splits a "key=value;key=value" body into a map. Keys are
// lower-cased, whitespace around keys and values is dropped, empty
// components are skipped.
func parseKeyValues(body string) map[string]string {
	res := make(map[string]string)
	for _, part := range strings.Split(body, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		res[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return res
}

// buildMySQLDSN converts a "host=...;port=...;dbname=..." body together
// with the separate user/password fields into the format the go-sql-driver
// expects. The user= / password= keys inside the body itself are ignored,
// credentials always come from the ConnectionSpec. Options are passed
// through as driver parameters.
func buildMySQLDSN(spec *ConnectionSpec, body string) (string, error) {
	kv := parseKeyValues(body)
	cfg := mysql.NewConfig()
	cfg.User = spec.User
	cfg.Passwd = spec.Password
	cfg.DBName = kv["dbname"]
	if socket, ok := kv["unix_socket"]; ok {
		cfg.Net = "unix"
		cfg.Addr = socket
	} else {
		host := kv["host"]
		if host == "" {
			host = "127.0.0.1"
		}
		port := kv["port"]
		if port == "" {
			port = "3306"
		}
		cfg.Net = "tcp"
		cfg.Addr = host + ":" + port
	}
	if len(spec.Options) > 0 {
		cfg.Params = make(map[string]string, len(spec.Options))
		for key, value := range spec.Options {
			cfg.Params[key] = value
		}
	}
	return cfg.FormatDSN(), nil
}

// buildPostgresDSN converts the body into the keyword/value format
// understood by pgx. The PDO-style keys (host, port, dbname) are already
// the libpq keywords, so the body only needs ';' replaced by spaces, plus
// the quoted credentials and options appended.
func buildPostgresDSN(spec *ConnectionSpec, body string) (string, error) {
	var b strings.Builder
	for _, part := range strings.Split(body, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return "", fmt.Errorf("malformed connection string component %q", part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "user" || key == "password" {
			// credentials always come from the configured fields
			continue
		}
		writeKeyword(&b, key, strings.TrimSpace(value))
	}
	if spec.User != "" {
		writeKeyword(&b, "user", spec.User)
	}
	if spec.Password != "" {
		writeKeyword(&b, "password", spec.Password)
	}
	for key, value := range spec.Options {
		writeKeyword(&b, key, value)
	}
	return b.String(), nil
}

// writeKeyword appends a key='value' pair to a keyword/value connection
// string, quoting the value so spaces and quotes survive.
func writeKeyword(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(key)
	b.WriteString("='")
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	b.WriteString(value)
	b.WriteByte('\'')
}

// buildSQLiteDSN passes the body (a file path or file: URI) through
// unchanged. SQLite has no user/password, those fields are ignored.
func buildSQLiteDSN(spec *ConnectionSpec, body string) (string, error) {
	return body, nil
}
