package blivet

import (
	"encoding/json"
	"fmt"
)

// DiskType enumerates supported disk types.
type DiskType int

const (
	// HDD - hard disk drive
	HDD DiskType = iota

	// SSD - solid state disk
	SSD

	// NVME - Non-volatile memory express
	NVME
)

//nolint:gochecknoglobals
var diskTypeNames = map[DiskType]string{
	HDD:  "HDD",
	SSD:  "SSD",
	NVME: "NVME",
}

func (t DiskType) String() string {
	return enumString(int(t), diskTypeInts())
}

// MarshalJSON marshals the DiskType as its string name.
func (t DiskType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either the string name or the numeric value.
func (t *DiskType) UnmarshalJSON(data []byte) error {
	num, err := enumUnmarshal(data, diskTypeInts())
	if err != nil {
		return err
	}

	*t = DiskType(num)

	return nil
}

func diskTypeInts() map[int]string {
	m := map[int]string{}
	for k, v := range diskTypeNames {
		m[int(k)] = v
	}

	return m
}

// AttachmentType enumerates the type of device to which the disks are
// attached to in the system.
type AttachmentType int

const (
	// UnknownAttach - indicates an unknown attachment.
	UnknownAttach AttachmentType = iota

	// RAID - indicates that the device is attached to RAID card
	RAID

	// SCSI - indicates device is attached to scsi, but not a RAID card.
	SCSI

	// ATA - indicates that the device is attached to ATA card
	ATA

	// PCIE - indicates that the device is attached to PCIE card
	PCIE

	// USB - indicates that the device is attached to USB bus
	USB

	// VIRTIO - indicates that the device is attached to virtio.
	VIRTIO

	// IDE - indicates that the device is attached to IDE.
	IDE
)

//nolint:gochecknoglobals
var attachTypeNames = map[AttachmentType]string{
	UnknownAttach: "UNKNOWN",
	RAID:          "RAID",
	SCSI:          "SCSI",
	ATA:           "ATA",
	PCIE:          "PCIE",
	USB:           "USB",
	VIRTIO:        "VIRTIO",
	IDE:           "IDE",
}

func (t AttachmentType) String() string {
	return enumString(int(t), attachTypeInts())
}

// MarshalJSON marshals the AttachmentType as its string name.
func (t AttachmentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either the string name or the numeric value.
func (t *AttachmentType) UnmarshalJSON(data []byte) error {
	num, err := enumUnmarshal(data, attachTypeInts())
	if err != nil {
		return err
	}

	*t = AttachmentType(num)

	return nil
}

func attachTypeInts() map[int]string {
	m := map[int]string{}
	for k, v := range attachTypeNames {
		m[int(k)] = v
	}

	return m
}

// TableType enumerates the type of partition table on a disk.
type TableType int

const (
	// TableNone - no partition table found.
	TableNone TableType = iota

	// GPT - GUID partition table.
	GPT

	// MBR - MS-DOS partition table.
	MBR
)

//nolint:gochecknoglobals
var tableTypeNames = map[TableType]string{
	TableNone: "NONE",
	GPT:       "GPT",
	MBR:       "MBR",
}

func (t TableType) String() string {
	return enumString(int(t), tableTypeInts())
}

// MarshalJSON marshals the TableType as its string name.
func (t TableType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either the string name or the numeric value.
func (t *TableType) UnmarshalJSON(data []byte) error {
	num, err := enumUnmarshal(data, tableTypeInts())
	if err != nil {
		return err
	}

	*t = TableType(num)

	return nil
}

func tableTypeInts() map[int]string {
	m := map[int]string{}
	for k, v := range tableTypeNames {
		m[int(k)] = v
	}

	return m
}

// PartType is a 16 byte partition type GUID.
type PartType GUID

func (p PartType) String() string {
	return GUID(p).String()
}

// DiskSet is a map of the kernel device name and the disk.
type DiskSet map[string]Disk

// Details prints the details of the disks in the disk set in a tabular
// format.
func (ds DiskSet) Details() string {
	buf := ""
	for _, d := range ds {
		buf += d.String() + "\n"
	}

	return buf
}

// Disk holds the information about a disk: its name, device path, size,
// sector size, attachment and the partitions on it.
type Disk struct {
	// Name is the kernel name of the disk.
	Name string `json:"name"`

	// Path is the device path of the disk.
	Path string `json:"path"`

	// Size is the size of the disk.
	Size Size `json:"size"`

	// SectorSize is the logical sector size of the disk, or 0 if unknown.
	SectorSize uint `json:"sectorSize"`

	// Type indicates the media type, HDD, SSD or NVMe.
	Type DiskType `json:"type"`

	// Attachment is the type of bus this disk is attached to.
	Attachment AttachmentType `json:"attachment"`

	// Table is the type of partition table on the disk.
	Table TableType `json:"table"`

	// Partitions is the set of partitions on this disk.
	Partitions PartitionSet `json:"partitions"`

	// UdevInfo is the disk's udev information.
	UdevInfo UdevInfo `json:"udevInfo"`
}

// FreeSpacesWithMin returns the slots of free space on the disk that are at
// least minSize large.
func (d *Disk) FreeSpacesWithMin(minSize Size) []FreeSpace {
	// Stay out of the first 1MiB.
	// Leave 33 sectors at the end for the GPT second header and round
	// 1MiB down.
	end := ((uint64(d.Size) - uint64(d.SectorSize)*33) /
		uint64(Mebibyte)) * uint64(Mebibyte)
	used := []uRange{{0, uint64(Mebibyte) - 1}, {end, uint64(d.Size)}}
	avail := []FreeSpace{}

	for _, p := range d.Partitions {
		used = append(used, uRange{uint64(p.Start), uint64(p.Last)})
	}

	for _, g := range findRangeGaps(used, 0, uint64(d.Size)) {
		if g.Size() < uint64(minSize) {
			continue
		}

		avail = append(avail, FreeSpace{Size(g.Start), Size(g.End)})
	}

	return avail
}

// FreeSpaces returns the slots of free space on the disk large enough to
// hold at least one physical extent.
func (d *Disk) FreeSpaces() []FreeSpace {
	return d.FreeSpacesWithMin(ExtentSize)
}

func (d Disk) String() string {
	var avail Size

	fs := d.FreeSpaces()
	for _, f := range fs {
		avail += f.Size()
	}

	return fmt.Sprintf(
		"%s (%s) Size=%s NumParts=%d FreeSpace=%s/%d SectorSize=%d "+
			"Attachment=%s Type=%s Table=%s",
		d.Name, d.Path, d.Size, len(d.Partitions),
		avail, len(fs), d.SectorSize,
		d.Attachment, d.Type, d.Table)
}

// Details returns the disk's partition layout in a tabular format.
func (d Disk) Details() string {
	fss := d.FreeSpaces()
	fsn := 0

	mbsize := func(n, o Size) string {
		if (n+o)%Mebibyte == 0 {
			return fmt.Sprintf("%d MiB", (n+o)/Mebibyte)
		}

		return fmt.Sprintf("%d", n)
	}

	mbo := func(n Size) string { return mbsize(n, 0) }
	mbe := func(n Size) string { return mbsize(n, 1) }
	lfmt := "[%2s  %10s %10s %10s %-16s]\n"
	buf := fmt.Sprintf(lfmt, "#", "Start", "Last", "Size", "Name")

	for _, p := range d.Partitions {
		if fsn < len(fss) && fss[fsn].Start < p.Start {
			buf += fmt.Sprintf(lfmt, "-", mbo(fss[fsn].Start),
				mbe(fss[fsn].Last), mbo(fss[fsn].Size()), "<free>")
			fsn++
		}

		buf += fmt.Sprintf(lfmt, fmt.Sprintf("%d", p.Number),
			mbo(p.Start), mbe(p.Last), mbo(p.Size()), p.Name)
	}

	if fsn < len(fss) {
		buf += fmt.Sprintf(lfmt, "-", mbo(fss[fsn].Start),
			mbe(fss[fsn].Last), mbo(fss[fsn].Size()), "<free>")
	}

	return buf
}

// PartitionSet is a map of partition number to the partition.
type PartitionSet map[uint]Partition

// Partition wraps the disk partition information.
type Partition struct {
	// Start is the offset of the first byte of the partition.
	Start Size `json:"start"`

	// Last is the offset of the last byte of the partition.
	Last Size `json:"last"`

	// ID is the partition id.
	ID GUID `json:"id"`

	// Type is the partition type.
	Type PartType `json:"type"`

	// Name is the name of this partition.
	Name string `json:"name"`

	// Number is the number of this partition.
	Number uint `json:"number"`
}

// Size returns the size of the partition.
func (p *Partition) Size() Size {
	return p.Last - p.Start + 1
}

// FreeSpace indicates a free slot on the disk with a Start and Last offset,
// where a partition can be created.
type FreeSpace struct {
	Start Size `json:"start"`
	Last  Size `json:"last"`
}

// Size returns the size of the free space.
func (f *FreeSpace) Size() Size {
	return f.Last - f.Start + 1
}

// UdevInfo captures the udev information about a disk.
type UdevInfo struct {
	// Name of the disk
	Name string `json:"name"`

	// SysPath is the system path of this device.
	SysPath string `json:"sysPath"`

	// Symlinks for the disk.
	Symlinks []string `json:"symlinks"`

	// Properties is udev information as a map of key, value pairs.
	Properties map[string]string `json:"properties"`
}

func enumString(val int, names map[int]string) string {
	if name, ok := names[val]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN-%d", val)
}

func enumUnmarshal(data []byte, names map[int]string) (int, error) {
	var asStr string
	if err := json.Unmarshal(data, &asStr); err != nil {
		var num int
		if err := json.Unmarshal(data, &num); err != nil {
			return 0, fmt.Errorf("enum must be string or int, not %s", data)
		}

		return num, nil
	}

	for num, name := range names {
		if name == asStr {
			return num, nil
		}
	}

	return 0, fmt.Errorf("unknown enum value '%s'", asStr)
}
