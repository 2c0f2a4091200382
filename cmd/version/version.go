// Package version provides the version command.
package version

import (
	"github.com/choreo/choreoserve/cmd"
	"github.com/spf13/cobra"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "version",
	Short: `Show the version number.`,
	Long: `Show the choreoserve version number, the go version, the build target
OS and architecture, the runtime OS and kernel version and bitness,
build tags and the type of executable (static or dynamic).

For example:

    $ choreoserve version
    choreoserve v1.0.0
    - os/version: ubuntu 22.04 (64 bit)
    - os/kernel: 5.15.0-41-generic (x86_64)
    - os/type: linux
    - os/arch: amd64
    - go/version: go1.18.3
    - go/linking: static
    - go/tags: none
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(0, 0, command, args)
		cmd.ShowVersion()
	},
}
