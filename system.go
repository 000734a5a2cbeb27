package blivet

// DiskFilter is a filter function that returns true if the matching disk is
// accepted, false otherwise.
type DiskFilter func(Disk) bool

// VGFilter is a filter function that returns true if the matching vg is
// accepted, false otherwise.
type VGFilter func(VG) bool

// PVFilter is a filter function that returns true if the matching pv is
// accepted, false otherwise.
type PVFilter func(PV) bool

// System provides system level disk scanning and platform classification
// that are implemented by the specific system.
type System interface {
	// ScanAllDisks scans the system for all available disks and returns a
	// set of disks that are accepted by the filter function. Use this
	// function if you dont know the device paths for the specific disks to
	// be scanned.
	ScanAllDisks(filter DiskFilter) (DiskSet, error)

	// ScanDisks scans the system for disks identified by the specified
	// paths and returns a set of disks that are accepted by the filter
	// function.
	ScanDisks(filter DiskFilter, paths ...string) (DiskSet, error)

	// ScanDisk scans the system for a single disk specified by the device
	// path.
	ScanDisk(path string) (Disk, error)

	// Platform returns the PlatformClass of the running system, used to
	// bound logical volume sizes with MaxLVSize.
	Platform() (PlatformClass, error)
}
