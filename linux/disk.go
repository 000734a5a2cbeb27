//go:build linux
// +build linux

package linux

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rekby/gpt"
	"github.com/rekby/mbr"
	blivet "github.com/ryanlerch/blivet"
)

const (
	sectorSize512 = 512
	sectorSize4k  = 4096
)

// ErrNoPartitionTable is returned if there is no partition table.
var ErrNoPartitionTable error = errors.New("no Partition Table Found")

// getDiskType(udInfo) return the diskType for the disk represented
//
//	by the udev info provided.  Supports a block device
func getDiskType(udInfo blivet.UdevInfo) (blivet.DiskType, error) {
	var kname = udInfo.Name

	if strings.HasPrefix(kname, "nvme") {
		return blivet.NVME, nil
	}

	bd, err := getPartitionsBlockDevice(path.Join("/dev", kname))
	if err != nil {
		return blivet.HDD, nil
	}

	syspath, err := getSysPathForBlockDevicePath(bd)
	if err != nil {
		return blivet.HDD, nil
	}

	content, err := os.ReadFile(
		fmt.Sprintf("%s/%s", syspath, "queue/rotational"))
	if err != nil {
		return blivet.HDD,
			fmt.Errorf("failed to read %s/queue/rotational for %s", syspath, kname)
	}

	if string(content) == "0\n" {
		return blivet.SSD, nil
	}

	return blivet.HDD, nil
}

func getAttachType(udInfo blivet.UdevInfo) blivet.AttachmentType {
	bus := udInfo.Properties["ID_BUS"]
	attach := blivet.UnknownAttach

	switch bus {
	case "ata":
		attach = blivet.ATA
	case "usb":
		attach = blivet.USB
	case "scsi":
		attach = blivet.SCSI
	case "virtio":
		attach = blivet.VIRTIO
	case "":
		if strings.Contains(udInfo.SysPath, "/virtio") {
			attach = blivet.VIRTIO
		} else if strings.Contains(udInfo.SysPath, "/nvme/") {
			attach = blivet.PCIE
		}
	}

	return attach
}

func readGPTTableSearch(fp io.ReadSeeker, sizes []uint) (gpt.Table, uint, error) {
	const noGptFound = "Bad GPT signature"
	var gptTable gpt.Table
	var err error
	var size uint

	for _, size = range sizes {
		// consider seek failure to be fatal
		if _, err := fp.Seek(int64(size), io.SeekStart); err != nil {
			return gpt.Table{}, size, err
		}

		if gptTable, err = gpt.ReadTable(fp, uint64(size)); err != nil {
			if err.Error() == noGptFound {
				continue
			}

			return gpt.Table{}, size, err
		}

		return gptTable, size, nil
	}

	return gpt.Table{}, size, ErrNoPartitionTable
}

func readGPTTable(fp io.ReadSeeker) (gpt.Table, uint, error) {
	return readGPTTableSearch(fp, []uint{sectorSize512, sectorSize4k})
}

func readMBRTable(fp io.ReadSeeker) (blivet.PartitionSet, error) {
	parts := blivet.PartitionSet{}

	if _, err := fp.Seek(0, io.SeekStart); err != nil {
		return parts, err
	}

	mbrTable, err := mbr.Read(fp)

	if err == mbr.ErrorBadMbrSign {
		return parts, ErrNoPartitionTable
	}

	for i, p := range mbrTable.GetAllPartitions() {
		if p.IsEmpty() {
			continue
		}

		buf := [16]byte{}
		buf[15] = byte(p.GetType())

		part := blivet.Partition{
			Start:  blivet.Size(p.GetLBAStart()) * sectorSize512,
			Last:   blivet.Size(p.GetLBALast())*sectorSize512 + sectorSize512 - 1,
			Type:   blivet.PartType(buf),
			Number: uint(i + 1),
		}
		parts[part.Number] = part
	}

	return parts, nil
}

func findPartitions(fp io.ReadSeeker) (blivet.PartitionSet, blivet.TableType, uint, error) { // nolint: unparam
	var err error
	var ssize uint
	var gptTable gpt.Table

	gptTable, ssize, err = readGPTTable(fp)
	if err == ErrNoPartitionTable {
		parts, err := readMBRTable(fp)
		if err == ErrNoPartitionTable {
			return parts, blivet.TableNone, ssize, nil
		}

		return parts, blivet.MBR, sectorSize512, err
	}

	if err != nil {
		return blivet.PartitionSet{}, blivet.GPT, ssize, err
	}

	parts := blivet.PartitionSet{}
	ssize64 := blivet.Size(ssize)

	for n, p := range gptTable.Partitions {
		if p.IsEmpty() {
			continue
		}

		part := blivet.Partition{
			Start:  blivet.Size(p.FirstLBA) * ssize64,
			Last:   blivet.Size(p.LastLBA)*ssize64 + ssize64 - 1,
			ID:     blivet.GUID(p.Id),
			Type:   blivet.PartType(p.Type),
			Name:   p.Name(),
			Number: uint(n + 1),
		}
		parts[part.Number] = part
	}

	return parts, blivet.GPT, ssize, nil
}

func getDiskNames() ([]string, error) {
	realDiskKnameRegex := regexp.MustCompile("^((s|v|xv|h)d[a-z]|nvme[0-9]n[0-9]+)$")
	disks := []string{}

	files, err := os.ReadDir("/sys/block")
	if err != nil {
		return []string{}, err
	}

	for _, file := range files {
		if realDiskKnameRegex.MatchString(file.Name()) {
			disks = append(disks, file.Name())
		}
	}

	return disks, nil
}

func getPathForKname(kname string) string {
	return path.Join("/dev", kname)
}

func getKnameAndPathForBlockDevice(nameOrPath string) (string, string, error) {
	syspath, err := getSysPathForBlockDevicePath(nameOrPath)
	if err != nil {
		return "", "", err
	}

	kname := path.Base(syspath)

	return kname, getPathForKname(kname), nil
}

func getKnameForBlockDevicePath(dev string) (string, error) {
	// given '/dev/sda1' (or any valid block device path) return 'sda'
	kname, err := getSysPathForBlockDevicePath(dev)
	if err != nil {
		return "", err
	}

	return path.Base(kname), nil
}

func getSysPathForBlockDevicePath(dev string) (string, error) {
	// Return the path in /sys/class/block/<device> for a given
	// block device kname or path.
	var syspath string
	var sysdir string = "/sys/class/block"

	if strings.Contains(dev, "/") {
		// after symlink resolution, devpath = '/dev/sda' or '/dev/sdb1'
		// no longer something like /dev/disk/by-id/foo
		devpath, err := filepath.EvalSymlinks(dev)
		if err != nil {
			return "", err
		}

		syspath = fmt.Sprintf("%s/%s", sysdir, path.Base(devpath))
	} else {
		// assume this is 'sda', something that would be in /sys/class/block
		syspath = fmt.Sprintf("%s/%s", sysdir, dev)
	}

	_, err := os.Stat(syspath)
	if err != nil {
		return "", err
	}

	return syspath, nil
}

func getPartitionsBlockDevice(dev string) (string, error) {
	// return the block device name ('sda') given input
	// of 'sda1', /dev/sda1, or /dev/sda
	syspath, err := getSysPathForBlockDevicePath(dev)
	if err != nil {
		return "", err
	}

	_, err = os.ReadFile(fmt.Sprintf("%s/%s", syspath, "partition"))
	if err != nil {
		// dev is a block device, there is no /sys/class/block/<dev>/partition
		return path.Base(syspath), nil
	}

	// evalSymlinks on a partition will return
	// /sys/devices/<bus>/<path>/<components>/block/<diskName>/<PartitionName>
	sysfull, err := filepath.EvalSymlinks(syspath)
	if err != nil {
		return "", err
	}

	return path.Base(path.Dir(sysfull)), nil
}
