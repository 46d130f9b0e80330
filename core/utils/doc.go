// Package utils provides small text helpers shared by the snapshot collector
// and the CLI: key/value line splitting for /proc and os-release files,
// quote stripping and list normalization.
package utils
