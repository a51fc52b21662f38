// ABOUTME: Version constants for the echolat tools
// ABOUTME: Single source of truth for version reporting
package version

const (
	Version = "0.1.0"
	Product = "echolat"
)
