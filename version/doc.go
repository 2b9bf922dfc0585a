// Package version exposes the build identity of a wirekit application.
//
// Version, git commit, branch, and build time are injected at compile
// time via -ldflags:
//
//	go build -ldflags "-X github.com/skillsenselab/wirekit/version.Version=1.2.0"
//
// Anything the build did not inject is recovered from the binary's
// embedded VCS metadata where available.
package version
