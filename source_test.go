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
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// The query used by the sqlite backed tests. The password comparison is
// plain text on purpose, the package treats the query as a black box.
const testLoginQuery = "SELECT uid AS uid, mail AS mail FROM users WHERE username = :username AND password = :password"

// newUserDB creates a sqlite database with a users table containing the
// given (username, password, uid, mail) rows and returns its connection
// string. mail may be nil.
func newUserDB(t *testing.T, users ...[]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE users (username TEXT, password TEXT, uid TEXT, mail TEXT)`)
	require.NoError(t, err)
	for _, row := range users {
		_, err = db.Exec("INSERT INTO users(username, password, uid, mail) VALUES(?, ?, ?, ?)", row...)
		require.NoError(t, err)
	}
	return "sqlite:" + path
}

// unreachableDB returns a connection string pointing into a directory that
// doesn't exist, sqlite can't create a database there.
func unreachableDB(t *testing.T) string {
	t.Helper()
	return "sqlite:" + filepath.Join(t.TempDir(), "missing", "sub", "users.sqlite")
}

func newTestSource(t *testing.T, dsn1, dsn2, query string) *SQLSource {
	t.Helper()
	return NewSQLSourceFromConfig("test-sql", &Config{
		Primary:   ConnectionSpec{DSN: dsn1},
		Secondary: ConnectionSpec{DSN: dsn2},
		Query:     query,
	})
}

func TestLoginCollatesRows(t *testing.T) {
	dsn := newUserDB(t,
		[]interface{}{"alice", "pw", "alice", "a@x.com"},
		[]interface{}{"alice", "pw", "alice", "b@x.com"},
	)
	source := newTestSource(t, dsn, dsn, testLoginQuery)

	attrs, err := source.Login("alice", "pw")
	require.NoError(t, err)
	require.Equal(t, []string{"uid", "mail"}, attrs.Names())
	require.Equal(t, []string{"alice"}, attrs.Get("uid"))
	require.Equal(t, []string{"a@x.com", "b@x.com"}, attrs.Get("mail"))
}

func TestLoginInvalidCredentials(t *testing.T) {
	dsn := newUserDB(t, []interface{}{"alice", "pw", "alice", "a@x.com"})
	source := newTestSource(t, dsn, dsn, testLoginQuery)

	attrs, err := source.Login("alice", "wrong password")
	require.Nil(t, attrs)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	attrs, err = source.Login("nobody", "pw")
	require.Nil(t, attrs)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginNullColumnDropped(t *testing.T) {
	dsn := newUserDB(t, []interface{}{"alice", "pw", "alice", nil})
	source := newTestSource(t, dsn, dsn, testLoginQuery)

	attrs, err := source.Login("alice", "pw")
	require.NoError(t, err)
	require.Equal(t, []string{"uid"}, attrs.Names())
	require.Equal(t, []string{"alice"}, attrs.Get("uid"))
	require.Nil(t, attrs.Get("mail"))
}

func TestLoginFailoverOnConnect(t *testing.T) {
	secondary := newUserDB(t, []interface{}{"alice", "pw", "alice", "a@x.com"})
	source := newTestSource(t, unreachableDB(t), secondary, testLoginQuery)

	attrs, err := source.Login("alice", "pw")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, attrs.Get("uid"))
}

func TestLoginFailoverOnEmptyResult(t *testing.T) {
	// the primary is reachable but doesn't know alice
	primary := newUserDB(t, []interface{}{"bob", "pw", "bob", "b@x.com"})
	secondary := newUserDB(t, []interface{}{"alice", "pw", "alice", "a@x.com"})
	source := newTestSource(t, primary, secondary, testLoginQuery)

	attrs, err := source.Login("alice", "pw")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, attrs.Get("uid"))
	require.Equal(t, []string{"a@x.com"}, attrs.Get("mail"))
}

func TestLoginBothUnreachable(t *testing.T) {
	source := NewSQLSourceFromConfig("test-sql", &Config{
		Primary: ConnectionSpec{
			DSN:      "mysql:host=127.0.0.1;port=1;dbname=idp;user=phpuser;password=hunter2",
			User:     "dbadmin",
			Password: "supersecret",
		},
		Secondary: ConnectionSpec{
			DSN:      "mysql:host=127.0.0.1;port=1;dbname=idp;user=phpuser;password=hunter2",
			User:     "dbadmin",
			Password: "supersecret",
		},
		Query: testLoginQuery,
	})

	attrs, err := source.Login("alice", "pw")
	require.Nil(t, attrs)
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	require.Contains(t, err.Error(), MaskedCredential)
	require.NotContains(t, err.Error(), "hunter2")
	require.NotContains(t, err.Error(), "phpuser")
	require.NotContains(t, err.Error(), "supersecret")
}

func TestLoginIdempotent(t *testing.T) {
	dsn := newUserDB(t,
		[]interface{}{"alice", "pw", "alice", "a@x.com"},
		[]interface{}{"alice", "pw", "alice", "b@x.com"},
	)
	source := newTestSource(t, dsn, dsn, testLoginQuery)

	first, err := source.Login("alice", "pw")
	require.NoError(t, err)
	second, err := source.Login("alice", "pw")
	require.NoError(t, err)
	require.Equal(t, first.Names(), second.Names())
	require.Equal(t, first.Map(), second.Map())
}

func TestLoginBrokenQuery(t *testing.T) {
	dsn := newUserDB(t)
	source := newTestSource(t, dsn, dsn,
		"SELECT uid FROM no_such_table WHERE username = :username AND password = :password")

	_, err := source.Login("alice", "pw")
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	require.Equal(t, "prepare", queryErr.Stage)
}

func TestLoginUnknownParameter(t *testing.T) {
	dsn := newUserDB(t)
	source := newTestSource(t, dsn, dsn,
		"SELECT uid FROM users WHERE username = :username AND realm = :realm")

	_, err := source.Login("alice", "pw")
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	require.Equal(t, "bind", queryErr.Stage)
}
