package blivet

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Defaults that lvm provides no way to query.
const (
	// ExtentSize is the default physical extent size of a volume group.
	ExtentSize = 4 * Mebibyte

	// PEStart is where lvm places the first physical extent on a PV.
	PEStart = 1 * Mebibyte

	// MaxLVSlots is the number of logical volumes a volume group can hold.
	MaxLVSlots = 256
)

// VolumeManager provides logical volume operations that allow for creation
// and management of volume groups, physical volumes and logical volumes.
type VolumeManager interface {
	// ScanPVs scans the system for all the PVs and returns the set of PVs
	// that are accepted by the filter function.
	ScanPVs(filter PVFilter) (PVSet, error)

	// ScanVGs scans the system for all the VGs and returns the set of VGs
	// that are accepted by the filter function.
	ScanVGs(filter VGFilter) (VGSet, error)

	// CreatePV creates a PV on the named disk or partition.
	CreatePV(diskName string) (PV, error)

	// DeletePV deletes the specified PV.
	DeletePV(pv PV) error

	// HasPV returns true if the pv exists. This indicates that the device
	// already has an lvm pv header.
	HasPV(name string) bool

	// CreateVG creates a VG with the specified name and extent size and
	// adds the provided pvs to it. A zero extentSize selects lvm's default.
	CreateVG(name string, extentSize Size, pvs ...PV) (VG, error)

	// ExtendVG extends the volume group storage capacity with the
	// specified PVs.
	ExtendVG(vgName string, pvs ...PV) error

	// RemoveVG deletes this VG and all the LVs in the VG.
	RemoveVG(vgName string) error

	// HasVG returns true if the vg exists.
	HasVG(vgName string) bool

	// CryptFormat sets up encryption for this volume using the provided
	// key.
	CryptFormat(vgName string, lvName string, key string) error

	// CryptOpen opens the encrypted logical volume for use using the
	// provided key.
	CryptOpen(vgName string, lvName string, decryptedName string,
		key string) error

	// CryptClose closes the encrypted logical volume.
	CryptClose(vgName string, lvName string, decryptedName string) error

	// CreateLV creates a LV with specified name, size and type.
	CreateLV(vgName string, name string, size Size, lvType LVType) (LV, error)

	// CreateThinPool creates a thin pool LV with the given data size.
	// The metadata volume is sized with ThinPoolPadding. A zero chunkSize
	// selects lvm's default; a non-zero one must satisfy
	// ValidThinPoolChunkSize for the requested discard setting.
	CreateThinPool(vgName string, name string, size Size, chunkSize Size,
		discard bool) (LV, error)

	// CreateThinLV creates a thin LV with the given virtual size backed
	// by the named pool.
	CreateThinLV(vgName string, poolName string, name string,
		virtualSize Size) (LV, error)

	// RemoveLV removes this LV.
	RemoveLV(vgName string, lvName string) error

	// ExtendLV expands the LV to the requested new size.
	ExtendLV(vgName string, lvName string, newSize Size) error

	// HasLV returns true if the lv exists.
	HasLV(vgName string, name string) bool
}

// PV wraps a LVM physical volume. A lvm physical volume is the raw
// block device or other disk like device that provides storage capacity.
type PV struct {
	// Name is the name of the PV.
	Name string `json:"name"`

	// UUID is the lvm assigned unique id of the PV.
	UUID string `json:"uuid"`

	// Path is the device path of the PV.
	Path string `json:"path"`

	// VGName is the name of the volume group using this PV, if any.
	VGName string `json:"vgName"`

	// Size is the size of the PV.
	Size Size `json:"size"`

	// FreeSize is the unallocated size of the PV.
	FreeSize Size `json:"freeSize"`
}

// PVSet is a set of PVs indexed by their names.
type PVSet map[string]PV

// LV wraps the lvm logical volume information. A logical volume carves a
// volume group into a slice of capacity that can be used as a block device.
type LV struct {
	// Name is the name of the logical volume.
	Name string `json:"name"`

	// Path is the device mapper path of the logical volume.
	Path string `json:"path"`

	// VGName is the name of the volume group holding this volume.
	VGName string `json:"vgName"`

	// Size is the size of the logical volume. For a thin volume this is
	// the virtual size, which may exceed the backing pool.
	Size Size `json:"size"`

	// Type is the type of logical volume.
	Type LVType `json:"type"`

	// Pool is the name of the backing thin pool if Type is THIN.
	Pool string `json:"pool,omitempty"`

	// Encrypted indicates if the logical volume is encrypted.
	Encrypted bool `json:"encrypted"`

	// Active indicates if the logical volume is activated.
	Active bool `json:"active"`
}

// LVSet is a map of LV names to the LV.
type LVSet map[string]LV

// LVType defines the type of the logical volume.
type LVType int

const (
	// THICK indicates a thickly provisioned logical volume.
	THICK LVType = iota

	// THIN indicates a thinly provisioned logical volume.
	THIN

	// THINPOOL indicates a pool volume backing thin volumes.
	THINPOOL
)

//nolint:gochecknoglobals
var lvTypeNames = map[LVType]string{
	THICK:    "THICK",
	THIN:     "THIN",
	THINPOOL: "THINPOOL",
}

func (t LVType) String() string {
	if name, ok := lvTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN-%d", t)
}

// MarshalJSON marshals the LVType as its string name.
func (t LVType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either the string name or the numeric value.
func (t *LVType) UnmarshalJSON(data []byte) error {
	var asStr string
	if err := json.Unmarshal(data, &asStr); err != nil {
		num, err := strconv.Atoi(string(data))
		if err != nil {
			return fmt.Errorf("LVType must be string or int, not %s", data)
		}

		*t = LVType(num)

		return nil
	}

	for ltype, name := range lvTypeNames {
		if name == asStr {
			*t = ltype
			return nil
		}
	}

	return fmt.Errorf("unknown LVType '%s'", asStr)
}

// VG wraps a LVM volume group. A volume group combines one or more
// physical volumes into a storage pool and provides a unified logical
// device with the combined storage capacity of the underlying physical
// volumes.
type VG struct {
	// Name is the name of the volume group.
	Name string `json:"name"`

	// Size is the current size of the volume group.
	Size Size `json:"size"`

	// ExtentSize is the physical extent size of the volume group. Every
	// LV size is a multiple of it.
	ExtentSize Size `json:"extentSize"`

	// Volumes is the set of all the volumes in this volume group.
	Volumes LVSet `json:"volumes"`

	// FreeSpace is the amount of free space left in the volume group.
	FreeSpace Size `json:"freeSpace"`

	// PVs is the set of PVs that belong to this VG.
	PVs PVSet `json:"pvs"`
}

// VGSet is a set of volume groups indexed by their name.
type VGSet map[string]VG

// Details returns a formatted string with the information of volume groups.
func (vgs VGSet) Details() string {
	mbsize := func(n Size) string {
		return fmt.Sprintf("%d MiB", n.Convert(Mebibyte, false))
	}

	lfmt := "[%-12s %12s %12s %5s %5s]\n"
	buf := fmt.Sprintf(lfmt, "Name", "Size", "Free", "#PVs", "#LVs")

	for _, vg := range vgs {
		buf += fmt.Sprintf(lfmt, vg.Name, mbsize(vg.Size), mbsize(vg.FreeSpace),
			fmt.Sprintf("%d", len(vg.PVs)), fmt.Sprintf("%d", len(vg.Volumes)))
	}

	return buf
}
