// Package version holds build information set through ldflags:
//
//	go build -ldflags "-X anvil-esign/internal/version.Version=v1.2.0"
package version

// Version is set during build via ldflags
var Version = "dev"
