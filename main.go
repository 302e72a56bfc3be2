// package main provides the entry point for the media-provisioner service, which
// creates and deletes user accounts on Emby, Jellyfin and Jellyseerr.
package main

import (
	"os"

	"github.com/ortelius/media-provisioner/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
