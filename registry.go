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

import "sync"

// A hosting framework usually configures several auth sources and selects
// one by name per login form. Register builds that table: register every
// source once during startup and look it up by name when a login comes in.

var (
	sourcesMu sync.RWMutex
	sources   = make(map[string]Source)
)

// Register makes a source available under its name. Registering a second
// source under the same name replaces the first, so a framework can reload
// its configuration.
func Register(source Source) {
	sourcesMu.Lock()
	sources[source.Name()] = source
	sourcesMu.Unlock()
}

// Lookup returns the source registered under name or ErrUnknownSource.
func Lookup(name string) (Source, error) {
	sourcesMu.RLock()
	source, ok := sources[name]
	sourcesMu.RUnlock()
	if !ok {
		return nil, ErrUnknownSource
	}
	return source, nil
}

// Unregister removes the source registered under name, if any.
func Unregister(name string) {
	sourcesMu.Lock()
	delete(sources, name)
	sourcesMu.Unlock()
}
