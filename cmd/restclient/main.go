// Command restclient issues a single HTTP request and prints the response.
//
//	restclient https://api.example.com/users/{id} -p id=42 -H "Accept: application/json"
//	restclient -X POST localhost:8080/items -d '{"name":"x"}' -o yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
