//go:build linux
// +build linux

package linux

import (
	"fmt"
	"log"
	"os"
	"path"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	blivet "github.com/ryanlerch/blivet"
)

type linuxSystem struct {
	udevCache *cache.Cache
}

// System returns the linux implementation of the blivet.System interface.
// Udev queries are cached briefly so that repeated scans of the same set
// of disks do not fork udevadm once per disk per scan.
func System() blivet.System {
	const udevTTL = 15 * time.Second

	return &linuxSystem{
		udevCache: cache.New(udevTTL, udevTTL),
	}
}

func (ls *linuxSystem) ScanAllDisks(filter blivet.DiskFilter) (blivet.DiskSet, error) {
	var err error
	var dpaths = []string{}

	names, err := getDiskNames()
	if err != nil {
		return blivet.DiskSet{}, err
	}

	for _, name := range names {
		dpath := path.Join("/dev", name)

		f, err := os.Open(dpath)
		if err != nil {
			// ENOMEDIUM will occur on a empty sd reader.
			if e, ok := err.(*os.PathError); ok {
				if e.Err == syscall.ENOMEDIUM {
					continue
				}
			}

			log.Printf("Skipping device %s: %v", name, err)

			continue
		}

		f.Close()

		dpaths = append(dpaths, dpath)
	}

	return ls.ScanDisks(filter, dpaths...)
}

func (ls *linuxSystem) ScanDisks(filter blivet.DiskFilter,
	dpaths ...string) (blivet.DiskSet, error) {
	disks := blivet.DiskSet{}

	for _, dpath := range dpaths {
		disk, err := ls.ScanDisk(dpath)
		if err != nil {
			return disks, err
		}

		if filter(disk) {
			// Accepted so add to the set
			disks[disk.Name] = disk
		}
	}

	return disks, nil
}

func (ls *linuxSystem) ScanDisk(devicePath string) (blivet.Disk, error) {
	var err error
	var blockdev = true
	var ssize uint = sectorSize512

	name, err := getKnameForBlockDevicePath(devicePath)

	if err != nil {
		name = path.Base(devicePath)
		blockdev = false
	} else {
		bss, err := getBlockSize(devicePath)
		if err != nil {
			return blivet.Disk{}, err
		}
		ssize = uint(bss)
	}

	udInfo, err := ls.getUdevInfo(name)
	if err != nil {
		return blivet.Disk{}, err
	}

	diskType, err := getDiskType(udInfo)
	if err != nil {
		return blivet.Disk{}, err
	}

	disk := blivet.Disk{
		Name:       name,
		Path:       devicePath,
		SectorSize: ssize,
		UdevInfo:   udInfo,
		Type:       diskType,
		Attachment: getAttachType(udInfo),
	}

	fh, err := os.Open(devicePath)
	if err != nil {
		return disk, err
	}
	defer fh.Close()

	size, err := getFileSize(fh)
	if err != nil {
		return disk, err
	}

	disk.Size = blivet.Size(size)
	parts, ttype, ssize, err := findPartitions(fh)

	if err == ErrNoPartitionTable {
		return disk, nil
	}

	if err != nil {
		return disk, err
	}

	if ssize != disk.SectorSize {
		if blockdev {
			return disk, fmt.Errorf(
				"disk %s has sector size %d and partition table sector size %d",
				disk.Path, disk.SectorSize, ssize)
		}

		disk.SectorSize = ssize
	}

	disk.Table = ttype
	disk.Partitions = parts

	return disk, nil
}

func (ls *linuxSystem) Platform() (blivet.PlatformClass, error) {
	return Platform()
}

func (ls *linuxSystem) getUdevInfo(kname string) (blivet.UdevInfo, error) {
	type uresult struct {
		info blivet.UdevInfo
		err  error
	}

	if cached, found := ls.udevCache.Get(kname); found {
		ret := cached.(uresult)
		return ret.info, ret.err
	}

	info, err := GetUdevInfo(kname)
	ls.udevCache.Set(kname, uresult{info: info, err: err},
		cache.DefaultExpiration)

	return info, err
}
