// Package version carries the build version, overridden at link time with
// -ldflags "-X github.com/ndewijer/Portfolio-Analytics-Backend/internal/version.Version=v1.2.3".
package version

// Version is the application version reported by /api/system/version.
var Version = "dev"
