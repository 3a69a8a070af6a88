// ABOUTME: Version constants for the node
// ABOUTME: Reported in mDNS TXT records and status snapshots
package version

const (
	// Version is the node software version.
	Version = "0.1.0"

	// Product is the product name.
	Product = "Beacontime Node"

	// Manufacturer identifies the project.
	Manufacturer = "Beacontime"
)
