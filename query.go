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
	"strconv"
)

// The configured query uses the named placeholders :username and :password.
// The drivers don't agree on a placeholder syntax (? for MySQL and SQLite,
// $1/$2 for PostgreSQL), so the query is rewritten once per connection into
// the positional form of the driver that will run it, together with the
// order in which the parameters must be bound.

// namedParamPattern matches :name tokens. A double colon is matched too so
// PostgreSQL casts like ::text can be recognized and left alone.
var namedParamPattern = regexp.MustCompile(`::?[A-Za-z_][A-Za-z0-9_]*`)

// boundQuery is a query rewritten for one placeholder style: the SQL text
// with positional placeholders and the parameter name for every argument
// position.
type boundQuery struct {
	text  string
	order []string
}

// rewriteQuery rewrites the named placeholders of query into the given
// positional style. With questionMark every occurrence becomes its own ?,
// with dollarNumber repeated occurrences of the same name share one number.
func rewriteQuery(query string, style placeholderStyle) *boundQuery {
	bq := &boundQuery{}
	numbers := make(map[string]int)
	bq.text = namedParamPattern.ReplaceAllStringFunc(query, func(match string) string {
		if match[1] == ':' {
			// a ::type cast, not a parameter
			return match
		}
		name := match[1:]
		switch style {
		case dollarNumber:
			n, seen := numbers[name]
			if !seen {
				bq.order = append(bq.order, name)
				n = len(bq.order)
				numbers[name] = n
			}
			return "$" + strconv.Itoa(n)
		default:
			bq.order = append(bq.order, name)
			return "?"
		}
	})
	return bq
}

// bind produces the positional argument list for the rewritten query from
// the named parameter values. A placeholder name the query mentions but
// params does not contain is a configuration defect and yields an error.
func (bq *boundQuery) bind(params map[string]string) ([]interface{}, error) {
	args := make([]interface{}, 0, len(bq.order))
	for _, name := range bq.order {
		value, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("query references unknown parameter :%s", name)
		}
		args = append(args, value)
	}
	return args, nil
}
