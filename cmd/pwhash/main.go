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

// pwhash generates a bcrypt hash for a password read from stdin. Use it to
// seed the credential table your login query compares against, the sqlauth
// package itself never hashes passwords.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := bcrypt.DefaultCost
	if len(os.Args) == 2 {
		if os.Args[1] == "-h" || os.Args[1] == "--help" {
			printUsage()
			os.Exit(0)
		}
		parsed, parseErr := strconv.Atoi(os.Args[1])
		if parseErr != nil {
			fmt.Println("Can't parse", os.Args[1], "as cost:", parseErr)
			os.Exit(1)
		}
		cost = parsed
	} else if len(os.Args) > 2 {
		fmt.Println("Provide at most 1 argument!")
		printUsage()
		os.Exit(1)
	}

	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, readErr := reader.ReadString('\n')
	if readErr != nil {
		fmt.Println("Can't read password:", readErr)
		os.Exit(1)
	}
	password := strings.TrimRight(line, "\r\n")

	hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), cost)
	if hashErr != nil {
		fmt.Println("Can't generate hash:", hashErr)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}

func printUsage() {
	fmt.Println("Usage of pwhash")
	fmt.Printf("%s [cost]\n", os.Args[0])
	fmt.Println("Reads a password from stdin and prints its bcrypt hash.")
	fmt.Println("cost is the bcrypt cost parameter, it defaults to", bcrypt.DefaultCost)
}
