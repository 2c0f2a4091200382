// Serve a directory of choreography assets over HTTP
package main

import (
	"github.com/choreo/choreoserve/cmd"
	_ "github.com/choreo/choreoserve/cmd/all" // import all commands
)

func main() {
	cmd.Main()
}
