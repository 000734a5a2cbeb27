//go:build linux && !skipIntegration
// +build linux,!skipIntegration

//nolint:errcheck,funlen
package linux_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	blivet "github.com/ryanlerch/blivet"
	"github.com/ryanlerch/blivet/linux"
)

const MiB = 1024 * 1024
const GiB = MiB * 1024

// runLog - run command and Printf, useful for debugging errors.
func runLog(args ...string) {
	out, err, rc := runCommandWithOutputErrorRc(args...)
	fmt.Printf("%s\n", cmdString(args, out, err, rc))
}

type cleaner struct {
	Func    func() error
	Purpose string
}

type cleanList struct {
	cleaners []cleaner
}

func (c *cleanList) AddF(f func() error, msg string) {
	c.cleaners = append(c.cleaners, cleaner{f, msg})
}

// Cleanup runs the registered cleanups in reverse order.
func (c *cleanList) Cleanup(t *testing.T) {
	for i := len(c.cleaners) - 1; i >= 0; i-- {
		if err := c.cleaners[i].Func(); err != nil {
			t.Errorf("cleanup '%s' failed: %v", c.cleaners[i].Purpose, err)
		}
	}
}

// loopbackPV - create a temp file backed loop device and a PV on it.
func loopbackPV(t *testing.T, size int64, cl *cleanList,
	vm blivet.VolumeManager) blivet.PV {
	tmpFile := getTempFile(size)
	cl.AddF(func() error { return os.Remove(tmpFile) }, "remove "+tmpFile)

	lCleanup, loopDev, err := connectLoop(tmpFile)
	cl.AddF(lCleanup, "detach loop "+tmpFile)

	if err != nil {
		runLog("losetup", "-a")
		t.Fatalf("failed loop: %s", err)
	}

	pv, err := vm.CreatePV(loopDev)
	if err != nil {
		t.Fatalf("failed to create pv on %s: %s", loopDev, err)
	}

	cl.AddF(func() error { return vm.DeletePV(pv) }, "remove pv "+pv.Name)

	return pv
}

func TestRootLVMCreate(t *testing.T) {
	skipIfNoLoop(t)
	skipIfNoLVM(t)

	ast := assert.New(t)

	var cl = cleanList{}
	defer cl.Cleanup(t)

	vgname := "blivet-vg" + randStr(8)
	lvname := "blivet-lv" + randStr(8)

	vm := linux.VolumeManager(&linux.LVMConfig{})
	pv := loopbackPV(t, 4*GiB, &cl, vm)

	ast.True(vm.HasPV(pv.Name))

	vg, err := vm.CreateVG(vgname, 0, pv)
	if err != nil {
		t.Fatalf("failed to create %s with %s: %s", vgname, pv.Path, err)
	}

	cl.AddF(func() error { return vm.RemoveVG(vgname) }, "remove VG")

	ast.Equal(vgname, vg.Name)
	ast.True(vm.HasVG(vgname))

	size1 := 3 * blivet.ExtentSize
	size2 := 5 * blivet.ExtentSize

	lv, err := vm.CreateLV(vgname, lvname, size1, blivet.THICK)
	if err != nil {
		t.Fatalf("failed to create lv %s/%s: %s", vgname, lvname, err)
	}

	cl.AddF(func() error { return vm.RemoveLV(vgname, lvname) }, "remove LV")

	ast.Equal(lvname, lv.Name)
	ast.Equal(size1, lv.Size)
	ast.True(vm.HasLV(vgname, lvname))

	if err := vm.ExtendLV(vgname, lvname, size2); err != nil {
		t.Fatalf("failed to extend LV %s/%s: %s", vgname, lvname, err)
	}

	vgs, errScan := vm.ScanVGs(func(v blivet.VG) bool { return v.Name == vgname })
	if errScan != nil {
		t.Fatalf("failed scan volumes: %s", errScan)
	}

	foundLv := vgs[vgname].Volumes[lvname]
	ast.Equal(size2, foundLv.Size, "extended volume size incorrect")
	ast.Equal(blivet.THICK, foundLv.Type)
}

func TestRootLVMThinPool(t *testing.T) {
	skipIfNoLoop(t)
	skipIfNoLVM(t)

	ast := assert.New(t)

	var cl = cleanList{}
	defer cl.Cleanup(t)

	vgname := "blivet-vg" + randStr(8)
	poolname := "blivet-pool" + randStr(8)
	thinname := "blivet-thin" + randStr(8)

	vm := linux.VolumeManager(&linux.LVMConfig{})
	pv := loopbackPV(t, 4*GiB, &cl, vm)

	if _, err := vm.CreateVG(vgname, 0, pv); err != nil {
		t.Fatalf("failed to create %s with %s: %s", vgname, pv.Path, err)
	}

	cl.AddF(func() error { return vm.RemoveVG(vgname) }, "remove VG")

	poolSize := blivet.Size(512 * MiB)
	chunk := blivet.Size(128 * 1024)

	pool, err := vm.CreateThinPool(vgname, poolname, poolSize, chunk, false)
	if err != nil {
		t.Fatalf("failed to create thin pool %s/%s: %s", vgname, poolname, err)
	}

	cl.AddF(func() error { return vm.RemoveLV(vgname, poolname) },
		"remove thin pool")

	ast.Equal(poolname, pool.Name)
	ast.Equal(blivet.THINPOOL, pool.Type)
	ast.Equal(poolSize, pool.Size)

	thinSize := blivet.Size(200 * MiB)

	thin, err := vm.CreateThinLV(vgname, poolname, thinname, thinSize)
	if err != nil {
		runLog("lvm", "lvdisplay", "--unit=m", vgname)
		t.Fatalf("failed to create thin lv %s in %s/%s: %s",
			thinname, vgname, poolname, err)
	}

	ast.Equal(thinname, thin.Name)
	ast.Equal(blivet.THIN, thin.Type)
	ast.Equal(poolname, thin.Pool)
	ast.Equal(thinSize, thin.Size)

	// an invalid chunk size is refused before lvm runs
	_, err = vm.CreateThinPool(vgname, poolname+"x", poolSize,
		blivet.Size(100*1024), false)
	ast.NotNil(err)
}

func TestRootLVMCrypt(t *testing.T) {
	skipIfNoLoop(t)
	skipIfNoLVM(t)

	if err := hasCommand("cryptsetup"); err != nil {
		t.Skip(err)
	}

	ast := assert.New(t)

	var cl = cleanList{}
	defer cl.Cleanup(t)

	vgname := "blivet-vg" + randStr(8)
	lvname := "blivet-luks" + randStr(8)
	secret := randStr(16)

	vm := linux.VolumeManager(&linux.LVMConfig{})
	pv := loopbackPV(t, 1*GiB, &cl, vm)

	if _, err := vm.CreateVG(vgname, 0, pv); err != nil {
		t.Fatalf("failed to create %s with %s: %s", vgname, pv.Path, err)
	}

	cl.AddF(func() error { return vm.RemoveVG(vgname) }, "remove VG")

	if _, err := vm.CreateLV(vgname, lvname, 64*MiB, blivet.THICK); err != nil {
		t.Fatalf("failed to create lv %s/%s: %s", vgname, lvname, err)
	}

	cl.AddF(func() error { return vm.RemoveLV(vgname, lvname) }, "remove LV")

	if err := vm.CryptFormat(vgname, lvname, secret); err != nil {
		t.Fatalf("failed to luksFormat %s/%s: %s", vgname, lvname, err)
	}

	ptName := lvname + "_pt"
	if err := vm.CryptOpen(vgname, lvname, ptName, secret); err != nil {
		t.Fatalf("failed to open %s/%s: %s", vgname, lvname, err)
	}

	cl.AddF(func() error { return vm.CryptClose(vgname, lvname, ptName) },
		"close crypt")

	_, err := os.Stat("/dev/mapper/" + ptName)
	ast.Nil(err, "decrypted mapping did not show up")
}

func TestRootScanDisk(t *testing.T) {
	skipIfNoLoop(t)

	ast := assert.New(t)

	var cl = cleanList{}
	defer cl.Cleanup(t)

	tmpFile := getTempFile(1 * GiB)
	cl.AddF(func() error { return os.Remove(tmpFile) }, "remove "+tmpFile)

	lCleanup, loopDev, err := connectLoop(tmpFile)
	cl.AddF(lCleanup, "detach loop "+tmpFile)

	if err != nil {
		t.Fatalf("failed loop: %s", err)
	}

	lSys := linux.System()

	disk, err := lSys.ScanDisk(loopDev)
	if err != nil {
		t.Fatalf("failed first scan of %s: %s", loopDev, err)
	}

	ast.Equal(blivet.Size(1*GiB), disk.Size)
	ast.Equal(blivet.TableNone, disk.Table)
	ast.Equal(0, len(disk.Partitions))
	ast.NotEqual(0, len(disk.FreeSpaces()))
}
