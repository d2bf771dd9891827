// Package version holds the cssmini release version.
package version

const Version = "0.1.0"
