package mockos_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	blivet "github.com/ryanlerch/blivet"
	"github.com/ryanlerch/blivet/mockos"
)

//nolint: funlen, gomnd
func TestSystem(t *testing.T) {
	Convey("testing System Model", t, func() {
		So(func() { mockos.System("unknown") }, ShouldPanic)

		sys := mockos.System("testdata/model_sys.json")
		So(sys, ShouldNotBeNil)

		Convey("ScanAllDisks with a nil filter should return all the disks", func() {
			diskSet, err := sys.ScanAllDisks(nil)
			So(err, ShouldBeNil)
			So(diskSet, ShouldNotBeEmpty)
			So(len(diskSet), ShouldEqual, 4)
		})

		Convey("ScanAllDisks filters on disk properties", func() {
			ssds, err := sys.ScanAllDisks(func(d blivet.Disk) bool {
				return d.Type == blivet.SSD
			})
			So(err, ShouldBeNil)
			So(len(ssds), ShouldEqual, 2)
		})

		Convey("ScanDisk on /dev/sda path should return that disk", func() {
			disk, err := sys.ScanDisk("/dev/sda")
			So(err, ShouldBeNil)
			So(disk.Name, ShouldEqual, "sda")
			So(disk.Type, ShouldEqual, blivet.SSD)
			So(disk.Table, ShouldEqual, blivet.GPT)
			So(len(disk.Partitions), ShouldEqual, 1)
		})

		Convey("ScanDisk on a path with no disk should return error", func() {
			_, err := sys.ScanDisk("path/with/no/disk")
			So(err, ShouldNotBeNil)
		})

		Convey("ScanDisks with a filter returns the matching disks", func() {
			disks, err := sys.ScanDisks(func(d blivet.Disk) bool {
				return d.Attachment == blivet.PCIE
			}, "/dev/sda", "/dev/nvme0n1")
			So(err, ShouldBeNil)
			So(len(disks), ShouldEqual, 1)
		})

		Convey("ScanDisks with an invalid path should return error", func() {
			disks, err := sys.ScanDisks(func(d blivet.Disk) bool { return true },
				"/dev/sda", "path/with/no/disk")
			So(err, ShouldNotBeNil)
			So(disks, ShouldBeNil)
		})

		Convey("Platform classifies the layout's machine", func() {
			platform, err := sys.Platform()
			So(err, ShouldBeNil)
			So(platform, ShouldEqual, blivet.WideAddress)
		})
	})
}
