package blivet

// PlatformClass buckets a machine architecture by the largest logical
// volume the lvm metadata format supports on it.
type PlatformClass int

const (
	// NarrowAddress - platforms limited to 16TiB logical volumes.
	NarrowAddress PlatformClass = iota

	// WideAddress - platforms that can address 8EiB logical volumes.
	WideAddress
)

func (p PlatformClass) String() string {
	if p == WideAddress {
		return "wide-address"
	}

	return "narrow-address"
}

// WideAddressMachines is the set of machine names, as reported by uname,
// treated as wide-address platforms. The list is deliberately an explicit
// allow-list rather than a pointer-width probe; callers on machines missing
// from it can add entries before classifying.
//
//nolint:gochecknoglobals
var WideAddressMachines = map[string]bool{
	"x86_64": true,
	"ppc64":  true,
	"alpha":  true,
	"ia64":   true,
	"s390":   true,
}

// ClassifyMachine returns the PlatformClass for a uname machine name.
func ClassifyMachine(machine string) PlatformClass {
	if WideAddressMachines[machine] {
		return WideAddress
	}

	return NarrowAddress
}

// MaxLVSize returns the largest logical volume size the platform class
// supports.
func MaxLVSize(class PlatformClass) Size {
	if class == WideAddress {
		return 8 * Exbibyte
	}

	return 16 * Tebibyte
}
