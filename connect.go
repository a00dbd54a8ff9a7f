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

	log "github.com/sirupsen/logrus"

	// The drivers served by the built-in profiles, see dsn.go.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// conn is one live database session together with the profile it was
// opened with, the profile is needed later to rewrite the query into the
// driver's placeholder style. The caller owns the session and must Close it
// at the end of the login attempt, sessions are never reused across
// attempts.
type conn struct {
	db      *sql.DB
	profile *driverProfile
}

func (c *conn) Close() {
	if err := c.db.Close(); err != nil {
		log.WithError(err).Warn("sqlauth: Can't close database connection")
	}
}

// openSpec opens a single database session for one ConnectionSpec and runs
// the profile's session setup statements on it. database/sql connects
// lazily, so the connection is verified with a Ping before it is handed
// out; error reporting is strict by construction, every failure surfaces as
// an error value. Any failure is returned as a *ConnectionError carrying
// the obfuscated connection string.
func openSpec(spec *ConnectionSpec) (*conn, error) {
	profile := profileFor(spec.DSN)
	dsn, buildErr := profile.buildDSN(spec, dsnBody(spec.DSN))
	if buildErr != nil {
		return nil, &ConnectionError{MaskedDSN: ObfuscateDSN(spec.DSN), Err: buildErr}
	}
	db, openErr := sql.Open(profile.driverName, dsn)
	if openErr != nil {
		return nil, &ConnectionError{MaskedDSN: ObfuscateDSN(spec.DSN), Err: openErr}
	}
	if pingErr := db.Ping(); pingErr != nil {
		db.Close()
		return nil, &ConnectionError{MaskedDSN: ObfuscateDSN(spec.DSN), Err: pingErr}
	}
	for _, stmt := range profile.sessionInit {
		if _, execErr := db.Exec(stmt); execErr != nil {
			db.Close()
			return nil, &ConnectionError{MaskedDSN: ObfuscateDSN(spec.DSN), Err: execErr}
		}
	}
	return &conn{db: db, profile: profile}, nil
}

// connectPrimary opens a session to the primary database, falling back to
// the secondary if the primary can't be reached. If both fail the returned
// *ConnectionError names the obfuscated primary connection string and wraps
// the secondary's failure.
func (source *SQLSource) connectPrimary() (*conn, error) {
	c, primaryErr := openSpec(&source.config.Primary)
	if primaryErr == nil {
		return c, nil
	}
	log.WithError(primaryErr).Warnf("sqlauth(%s): Primary database unreachable, trying secondary", source.name)
	c, secondaryErr := openSpec(&source.config.Secondary)
	if secondaryErr != nil {
		return nil, &ConnectionError{
			MaskedDSN: ObfuscateDSN(source.config.Primary.DSN),
			Err:       secondaryErr,
		}
	}
	return c, nil
}

// connectSecondary opens a session to the secondary database only. This is
// the path used for the zero-row retry; it deliberately opens a fresh
// session even if the connect phase already fell back to the secondary.
func (source *SQLSource) connectSecondary() (*conn, error) {
	return openSpec(&source.config.Secondary)
}
