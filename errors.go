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
	"fmt"
)

// ErrInvalidCredentials is returned by Login when both database attempts
// return zero matching rows. This is the only "normal" rejection: the
// username/password pair simply didn't match anything. Everything else
// returned by Login is an infrastructure or configuration problem and
// should be shown to an operator, not to the user.
// Check for it with errors.Is.
var ErrInvalidCredentials = errors.New("Wrong username or password")

// ErrUnknownSource is returned by Lookup if no source was registered under
// the requested name.
var ErrUnknownSource = errors.New("Unknown auth source")

// ConfigError is returned when a source is constructed from an invalid
// configuration, for example when a required field is missing or has the
// wrong type. It always names the offending field.
type ConfigError struct {
	// Field is the configuration key that was missing or invalid.
	Field string
	// Reason describes what is wrong with the field.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sqlauth: invalid configuration value %q: %s", e.Field, e.Reason)
}

// ConnectionError is returned when a database could not be reached, that is
// when opening a connection, pinging it or running the session setup
// statements failed. The connection string in the message is always the
// obfuscated form, never the raw DSN.
type ConnectionError struct {
	// MaskedDSN is the connection string with user= / password= parts
	// replaced, see ObfuscateDSN.
	MaskedDSN string
	// Err is the underlying driver error.
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("sqlauth: can't connect to %q: %v", e.MaskedDSN, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError is returned when the configured query could not be prepared,
// bound or executed against an otherwise reachable database. This always
// points to a broken configuration (bad SQL, schema mismatch) and is never
// caused by the user input itself.
type QueryError struct {
	// Stage is one of "prepare", "bind", "execute" or "scan".
	Stage string
	// Err is the underlying error.
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sqlauth: query %s failed: %v", e.Stage, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
