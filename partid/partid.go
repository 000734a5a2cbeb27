// Package partid provides the GPT partition type GUIDs that the library
// cares about. GUID bytes are in the on-disk mixed endian layout.
package partid

import (
	blivet "github.com/ryanlerch/blivet"
)

// Empty - no partition type (an unused table slot).
//
//nolint:gochecknoglobals
var Empty = blivet.GUID{}

// LinuxFS - Linux filesystem data (0FC63DAF-8483-4772-8E79-3D69D8477DE4).
//
//nolint:gochecknoglobals
var LinuxFS = blivet.GUID{
	0xAF, 0x3D, 0xC6, 0x0F,
	0x83, 0x84,
	0x72, 0x47,
	0x8E, 0x79, 0x3D, 0x69, 0xD8, 0x47, 0x7D, 0xE4,
}

// LinuxLVM - Linux LVM physical volume
// (E6D6D379-F507-44C2-A23C-238F2A3DF928).
//
//nolint:gochecknoglobals
var LinuxLVM = blivet.GUID{
	0x79, 0xD3, 0xD6, 0xE6,
	0x07, 0xF5,
	0xC2, 0x44,
	0xA2, 0x3C, 0x23, 0x8F, 0x2A, 0x3D, 0xF9, 0x28,
}

// LinuxRAID - Linux software RAID member
// (A19D880F-05FC-4D3B-A006-743F0F84911E).
//
//nolint:gochecknoglobals
var LinuxRAID = blivet.GUID{
	0x0F, 0x88, 0x9D, 0xA1,
	0xFC, 0x05,
	0x3B, 0x4D,
	0xA0, 0x06, 0x74, 0x3F, 0x0F, 0x84, 0x91, 0x1E,
}

// EFI - EFI system partition (C12A7328-F81F-11D2-BA4B-00A0C93EC93B).
//
//nolint:gochecknoglobals
var EFI = blivet.GUID{
	0x28, 0x73, 0x2A, 0xC1,
	0x1F, 0xF8,
	0xD2, 0x11,
	0xBA, 0x4B, 0x00, 0xA0, 0xC9, 0x3E, 0xC9, 0x3B,
}

// Text has human readable names for the partition type GUIDs.
//
//nolint:gochecknoglobals
var Text = map[blivet.GUID]string{
	Empty:     "Empty",
	LinuxFS:   "Linux-FS",
	LinuxLVM:  "LVM",
	LinuxRAID: "RAID",
	EFI:       "EFI",
}
