// Package all imports all the commands
package all

import (
	// Active commands
	_ "github.com/choreo/choreoserve/cmd"
	_ "github.com/choreo/choreoserve/cmd/serve"
	_ "github.com/choreo/choreoserve/cmd/version"
)
