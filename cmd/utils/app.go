package utils

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
func NewApp(identifier, gitCommit, gitDate, usage string) *cli.App {
	app := cli.NewApp()
	app.Name = identifier
	app.Version = VersionWithCommit(gitCommit, gitDate)
	app.Usage = usage
	return app
}

// VersionWithCommit add git commit and data to version.
func VersionWithCommit(gitCommit, gitDate string) string {
	vsn := Version
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if gitDate != "" {
		vsn += "-" + gitDate
	}
	return vsn
}

// Version version of app
const Version = "0.1.0"

// VersionCommand version command
var VersionCommand = &cli.Command{
	Action:    version,
	Name:      "version",
	Usage:     "print version numbers",
	ArgsUsage: " ",
	Description: `
The output of this command is supposed to be machine-readable.
`,
}

func version(_ *cli.Context) error {
	fmt.Println(os.Args[0], "version", Version)
	return nil
}
