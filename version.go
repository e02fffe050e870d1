package strata

import _ "embed"

// Version is the release of the strata module, read from the VERSION file.
//
//go:embed VERSION
var Version string
