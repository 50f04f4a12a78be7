// Command silk manages typed posts, terms, post types and users.
package main

import (
	"os"

	"github.com/mesh-intelligence/silk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
