//go:build linux
// +build linux

package linux

import (
	"golang.org/x/sys/unix"

	blivet "github.com/ryanlerch/blivet"
)

var systemMachine = "" //nolint:gochecknoglobals

// Machine returns the hardware machine name reported by uname(2),
// "x86_64" and friends. The value cannot change while we run so it is
// read once.
func Machine() (string, error) {
	if systemMachine != "" {
		return systemMachine, nil
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", err
	}

	systemMachine = unix.ByteSliceToString(uts.Machine[:])

	return systemMachine, nil
}

// Platform classifies the running machine for logical volume size limits.
func Platform() (blivet.PlatformClass, error) {
	machine, err := Machine()
	if err != nil {
		return blivet.NarrowAddress, err
	}

	return blivet.ClassifyMachine(machine), nil
}
