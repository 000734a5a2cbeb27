package mockos

import (
	"encoding/json"
	"fmt"
	"os"

	blivet "github.com/ryanlerch/blivet"
)

// System returns a mock implementation of the blivet.System interface,
// loaded from a json layout file. The layout carries the disks and the
// machine name used for platform classification.
func System(layout string) blivet.System {
	file, err := os.ReadFile(layout)
	if err != nil {
		panic(err)
	}

	sys := &mockSys{}

	if err := json.Unmarshal(file, sys); err != nil {
		panic(err)
	}

	if sys.Machine == "" {
		sys.Machine = "x86_64"
	}

	return sys
}

type mockSys struct {
	Disks   blivet.DiskSet `json:"disks"`
	Machine string         `json:"machine"`
}

func (ms *mockSys) ScanAllDisks(filter blivet.DiskFilter) (blivet.DiskSet, error) {
	disks := blivet.DiskSet{}

	for n, d := range ms.Disks {
		if filter == nil || filter(d) {
			disks[n] = d
		}
	}

	return disks, nil
}

func (ms *mockSys) ScanDisks(filter blivet.DiskFilter, paths ...string) (blivet.DiskSet, error) {
	disks := blivet.DiskSet{}

	for _, p := range paths {
		d, e := ms.ScanDisk(p)

		if e != nil {
			return nil, e
		}

		if filter == nil || filter(d) {
			disks[d.Name] = d
		}
	}

	return disks, nil
}

func (ms *mockSys) ScanDisk(path string) (blivet.Disk, error) {
	// Find the disk from the disk set
	for _, d := range ms.Disks {
		if d.Path == path {
			return d, nil
		}
	}

	return blivet.Disk{}, fmt.Errorf("disk %s not found", path)
}

func (ms *mockSys) Platform() (blivet.PlatformClass, error) {
	return blivet.ClassifyMachine(ms.Machine), nil
}
