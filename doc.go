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

// Package sqlauth authenticates username/password logins against rows
// returned by a configurable SQL query, with automatic failover from a
// primary database to a secondary one.
//
// The idea is simple: you configure two databases (assumed to be replicas
// of the same identity store) and one query with the named placeholders
// :username and :password. A login runs the query with the submitted
// credentials bound; if it returns at least one row the login succeeded and
// the rows are collated into a multi-valued attribute map (one row per
// group membership gives you a group list, duplicates are collapsed, NULLs
// are dropped). If both databases return nothing the login failed with
// ErrInvalidCredentials.
//
// The failover happens twice: once when the primary can't be reached at
// all (the connect falls back to the secondary) and once when the primary
// answered but the query returned no rows (a fresh connection to the
// secondary is opened and the query runs again). Connection strings use
// the portable "scheme:body" form, MySQL (via github.com/go-sql-driver/mysql),
// PostgreSQL (via the pgx stdlib driver) and SQLite (via modernc.org/sqlite)
// are supported out of the box.
//
// Note that this package never hashes or compares passwords itself, the
// query is responsible for any credential comparison. It also doesn't keep
// sessions or pool connections: every Login opens its own connections and
// closes them before returning.
//
// See the github page for more details: https://github.com/FabianWe/sqlauth
package sqlauth
