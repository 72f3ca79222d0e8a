// Package main is the entry point for the tune2dp API server
package main

import (
	"fmt"
	"os"

	"github.com/james-see/tune2dp/pkg/api"
	"github.com/spf13/pflag"
)

func main() {
	var port int
	pflag.IntVarP(&port, "port", "p", 8080, "Server port")
	pflag.Parse()

	fmt.Printf("Starting tune2dp API server on port %d...\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)

	if err := api.StartServer(port); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
