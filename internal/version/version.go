// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/doeshing/widgera/internal/version.Version=v0.3.0"
package version

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)
