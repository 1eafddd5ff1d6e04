package jotter

import _ "embed"

// Version is the release version of jotter, read from the VERSION file.
//
//go:embed VERSION
var Version string
