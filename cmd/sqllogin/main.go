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

// sqllogin performs one login against a source described in a TOML file and
// prints the resulting attributes. Useful to verify a source configuration
// before wiring it to a real login form.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/FabianWe/sqlauth"
)

// sourceFile is the TOML shape of one auth source definition.
type sourceFile struct {
	Name      string            `toml:"name"`
	DSN1      string            `toml:"dsn1"`
	DSN2      string            `toml:"dsn2"`
	Username1 string            `toml:"username1"`
	Username2 string            `toml:"username2"`
	Password1 string            `toml:"password1"`
	Password2 string            `toml:"password2"`
	Query     string            `toml:"query"`
	Options1  map[string]string `toml:"options1"`
	Options2  map[string]string `toml:"options2"`
}

func main() {
	if len(os.Args) == 2 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}
	if len(os.Args) != 3 && len(os.Args) != 4 {
		fmt.Println("Provide 2 or 3 arguments!")
		printUsage()
		os.Exit(1)
	}
	configPath, username := os.Args[1], os.Args[2]
	var password string
	if len(os.Args) == 4 {
		password = os.Args[3]
	} else {
		// don't force the password on the command line, it ends up in the
		// shell history
		fmt.Print("Password: ")
		reader := bufio.NewReader(os.Stdin)
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			fmt.Println("Can't read password:", readErr)
			os.Exit(1)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	var file sourceFile
	if _, decodeErr := toml.DecodeFile(configPath, &file); decodeErr != nil {
		fmt.Println("Can't read config file:", decodeErr)
		os.Exit(1)
	}
	name := file.Name
	if name == "" {
		name = "sqllogin"
	}
	source := sqlauth.NewSQLSourceFromConfig(name, &sqlauth.Config{
		Primary: sqlauth.ConnectionSpec{
			DSN:      file.DSN1,
			User:     file.Username1,
			Password: file.Password1,
			Options:  file.Options1,
		},
		Secondary: sqlauth.ConnectionSpec{
			DSN:      file.DSN2,
			User:     file.Username2,
			Password: file.Password2,
			Options:  file.Options2,
		},
		Query: file.Query,
	})

	attrs, loginErr := source.Login(username, password)
	if loginErr != nil {
		if errors.Is(loginErr, sqlauth.ErrInvalidCredentials) {
			fmt.Println("Login failed: wrong username or password")
			os.Exit(1)
		}
		fmt.Println("Login failed:", loginErr)
		os.Exit(2)
	}
	fmt.Printf("Login successful, %d attributes:\n", attrs.Len())
	for _, attrName := range attrs.Names() {
		fmt.Printf("  %s: %s\n", attrName, strings.Join(attrs.Get(attrName), ", "))
	}
}

func printUsage() {
	fmt.Println("Usage of sqllogin")
	fmt.Printf("%s <config.toml> <username> [password]\n", os.Args[0])
	fmt.Println("The config file must define dsn1, dsn2, username1, username2,")
	fmt.Println("password1, password2 and query, optionally name, options1 and options2.")
	fmt.Println("If the password argument is omitted it is read from stdin.")
}
