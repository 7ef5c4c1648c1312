package main

import (
	"github.com/pranshuparmar/lsport/internal/app"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// go build -ldflags "-X main.version=v0.1.0 -X main.commit=$(git rev-parse --short HEAD) -X 'main.buildDate=$(date +%Y-%m-%d)'" -o lsport ./cmd/lsport

func main() {
	app.SetVersionBuildCommitString(version, commit, buildDate)
	app.Execute()
}
