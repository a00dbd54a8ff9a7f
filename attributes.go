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
	"fmt"
	"time"
)

// Attributes is the result of a successful login: a mapping from attribute
// name to an ordered set of distinct string values. A query that joins
// multiple rows per identity (for example one row per group membership)
// yields multi-valued attributes here, with duplicates collapsed.
//
// Both the attribute names and the values per attribute keep the order in
// which they were first seen, so two logins against the same data produce
// identical results.
type Attributes struct {
	names  []string
	values map[string][]string
}

// NewAttributes creates an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string][]string)}
}

// Add inserts value into the set for the attribute name, creating the
// attribute if it doesn't exist yet. Values are compared by exact string
// match; a value that is already present is not inserted again.
// It returns true if the value was inserted.
func (attrs *Attributes) Add(name, value string) bool {
	existing, ok := attrs.values[name]
	if !ok {
		attrs.names = append(attrs.names, name)
		attrs.values[name] = []string{value}
		return true
	}
	for _, v := range existing {
		if v == value {
			return false
		}
	}
	attrs.values[name] = append(existing, value)
	return true
}

// Names returns the attribute names in first-seen order.
// The returned slice must not be modified.
func (attrs *Attributes) Names() []string {
	return attrs.names
}

// Get returns the values for the attribute name in first-seen order, or nil
// if the attribute doesn't exist. The returned slice must not be modified.
func (attrs *Attributes) Get(name string) []string {
	return attrs.values[name]
}

// Len returns the number of distinct attribute names.
func (attrs *Attributes) Len() int {
	return len(attrs.names)
}

// Map returns a copy of the attributes as a plain map, for callers that
// don't care about the order of the attribute names.
func (attrs *Attributes) Map() map[string][]string {
	res := make(map[string][]string, len(attrs.values))
	for name, values := range attrs.values {
		res[name] = append([]string(nil), values...)
	}
	return res
}

// stringValue converts a raw value scanned from the database to its
// canonical string representation. The second return value is false if the
// value was NULL, those must be skipped entirely.
func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case []byte:
		return string(v), true
	case string:
		return v, true
	case time.Time:
		return v.Format("2006-01-02 15:04:05"), true
	default:
		// ints, floats, bools... fmt does the right thing here
		return fmt.Sprint(v), true
	}
}

// collectAttributes drains rows and collates them into an attribute set:
// for every row each non-NULL column value is converted to a string and
// inserted with Add. It returns the attributes together with the number of
// rows that were read. rows is closed afterwards.
func collectAttributes(rows *sql.Rows) (*Attributes, int, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, 0, err
	}
	attrs := NewAttributes()
	numRows := 0
	raw := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range raw {
		scanArgs[i] = &raw[i]
	}
	for rows.Next() {
		if scanErr := rows.Scan(scanArgs...); scanErr != nil {
			return nil, numRows, scanErr
		}
		numRows++
		for i, column := range columns {
			value, ok := stringValue(raw[i])
			if !ok {
				// NULL, drop it but keep processing the rest of the row
				continue
			}
			attrs.Add(column, value)
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, numRows, rowsErr
	}
	return attrs, numRows, nil
}
