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
	"strings"

	log "github.com/sirupsen/logrus"
)

// Source is what a hosting framework authenticates against: it hands in
// the username and password the user submitted and gets back either the
// identity's attributes or an error. The only expected error is
// ErrInvalidCredentials (wrong username or password), everything else is
// an infrastructure or configuration fault.
type Source interface {
	// Name returns the name the source was registered under, it is also
	// used as prefix in log and error messages.
	Name() string

	// Login authenticates the submitted username/password pair.
	Login(username, password string) (*Attributes, error)
}

// SQLSource authenticates users against rows returned by a configured SQL
// query, with automatic failover from a primary to a secondary database.
// The failover is two-tiered: once on connection failure (the primary
// can't be reached at all) and once on the query itself (the primary
// answered but returned no rows). The two databases are assumed to be
// read-consistent replicas of the same identity store, so there is no
// retry beyond this single fallback per phase.
//
// A SQLSource is immutable after construction, concurrent Login calls are
// independent: every call opens its own sessions and closes them before
// returning.
type SQLSource struct {
	name   string
	config *Config
}

// NewSQLSource builds a SQLSource named name from a generic configuration
// record, see ParseConfig for the accepted fields.
func NewSQLSource(name string, values map[string]interface{}) (*SQLSource, error) {
	config, err := ParseConfig(values)
	if err != nil {
		return nil, err
	}
	return NewSQLSourceFromConfig(name, config), nil
}

// NewSQLSourceFromConfig builds a SQLSource from an already assembled
// Config.
func NewSQLSourceFromConfig(name string, config *Config) *SQLSource {
	return &SQLSource{name: name, config: config}
}

// Name returns the name of this auth source.
func (source *SQLSource) Name() string {
	return source.name
}

// Login runs the configured query with the submitted credentials bound to
// :username and :password, first against the primary database and, if that
// yields no rows, once more against a freshly opened secondary session.
// With at least one row the rows are collated into attributes (see
// Attributes), with none from either database it returns
// ErrInvalidCredentials.
//
// The raw credentials are only ever passed through driver parameter
// binding, any hashing or comparison logic lives in the query itself.
func (source *SQLSource) Login(username, password string) (*Attributes, error) {
	c, connectErr := source.connectPrimary()
	if connectErr != nil {
		return nil, connectErr
	}
	attrs, numRows, queryErr := source.runQuery(c, username, password)
	c.Close()
	if queryErr != nil {
		return nil, queryErr
	}
	log.Infof("sqlauth(%s): Got %d rows from the first query attempt", source.name, numRows)

	if numRows == 0 {
		c, connectErr = source.connectSecondary()
		if connectErr != nil {
			return nil, connectErr
		}
		attrs, numRows, queryErr = source.runQuery(c, username, password)
		c.Close()
		if queryErr != nil {
			return nil, queryErr
		}
		log.Infof("sqlauth(%s): Got %d rows from the second query attempt", source.name, numRows)
	}

	if numRows == 0 {
		log.Errorf("sqlauth(%s): No rows in result set for user %q, wrong username or password", source.name, username)
		return nil, ErrInvalidCredentials
	}

	log.Infof("sqlauth(%s): Attributes: %s", source.name, strings.Join(attrs.Names(), ","))
	return attrs, nil
}

// runQuery prepares and executes the configured query on one session and
// collates the result set. It returns the attributes together with the raw
// row count; a count of zero is not an error here, the failover decision is
// made by the caller.
func (source *SQLSource) runQuery(c *conn, username, password string) (*Attributes, int, error) {
	bq := rewriteQuery(source.config.Query, c.profile.placeholder)
	args, bindErr := bq.bind(map[string]string{
		"username": username,
		"password": password,
	})
	if bindErr != nil {
		return nil, 0, &QueryError{Stage: "bind", Err: bindErr}
	}
	stmt, prepareErr := c.db.Prepare(bq.text)
	if prepareErr != nil {
		return nil, 0, &QueryError{Stage: "prepare", Err: prepareErr}
	}
	defer stmt.Close()
	rows, execErr := stmt.Query(args...)
	if execErr != nil {
		return nil, 0, &QueryError{Stage: "execute", Err: execErr}
	}
	attrs, numRows, scanErr := collectAttributes(rows)
	if scanErr != nil {
		return nil, numRows, &QueryError{Stage: "scan", Err: scanErr}
	}
	return attrs, numRows, nil
}
