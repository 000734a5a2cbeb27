//go:build linux
// +build linux

package linux

import (
	"fmt"
	"path"

	blivet "github.com/ryanlerch/blivet"
)

// VolumeManager returns the linux implementation of blivet.VolumeManager,
// driving the lvm2 tools. The provided config owns the device filter used
// on every invocation; passing nil uses an empty one.
func VolumeManager(config *LVMConfig) blivet.VolumeManager {
	if config == nil {
		config = &LVMConfig{}
	}

	return &linuxLVM{config: config}
}

type linuxLVM struct {
	config *LVMConfig
}

// lvm runs the lvm multi-call binary with the config args appended.
func (ls *linuxLVM) lvm(args ...string) error {
	cmd := append([]string{"lvm"}, args...)
	cmd = append(cmd, ls.config.ConfigArgs(false)...)

	return runCommand(cmd...)
}

func (ls *linuxLVM) lvmSettled(args ...string) error {
	if err := ls.lvm(args...); err != nil {
		return err
	}

	return udevSettle()
}

// mibString formats a size as the whole-MiB argument lvm wants. Rounding
// direction is the caller's call: up when a size must hold at least the
// requested bytes, down when it must fit inside them.
func mibString(size blivet.Size, roundUp bool) string {
	return fmt.Sprintf("%dm", size.Convert(blivet.Mebibyte, roundUp))
}

// kibString formats a size in whole KiB. Extent and chunk sizes can be
// legal below 1MiB, so those arguments take the finer unit.
func kibString(size blivet.Size) string {
	return fmt.Sprintf("%dk", size.Convert(blivet.Kibibyte, false))
}

func (ls *linuxLVM) ScanPVs(filter blivet.PVFilter) (blivet.PVSet, error) {
	pvs := blivet.PVSet{}

	pvdatum, err := getPvReport(ls.config)
	if err != nil {
		return pvs, err
	}

	for _, pvd := range pvdatum {
		pv := blivet.PV{
			Path:     pvd.Path,
			Name:     path.Base(pvd.Path),
			UUID:     pvd.UUID,
			VGName:   pvd.VGName,
			Size:     pvd.Size,
			FreeSize: pvd.Free,
		}
		if filter(pv) {
			pvs[pv.Name] = pv
		}
	}

	return pvs, nil
}

func (ls *linuxLVM) ScanVGs(filter blivet.VGFilter) (blivet.VGSet, error) {
	vgs := blivet.VGSet{}

	vgdatum, err := getVgReport(ls.config)
	if err != nil {
		return vgs, err
	}

	lvdatum, err := getLvReport(ls.config)
	if err != nil {
		return vgs, err
	}

	pvdatum, err := getPvReport(ls.config)
	if err != nil {
		return vgs, err
	}

	for _, vgd := range vgdatum {
		vg := blivet.VG{
			Name:       vgd.Name,
			Size:       vgd.Size,
			ExtentSize: vgd.ExtentSize,
			FreeSpace:  vgd.Free,
			Volumes:    blivet.LVSet{},
			PVs:        blivet.PVSet{},
		}

		for _, lvd := range lvdatum {
			if lvd.VGName != vg.Name {
				continue
			}

			lv := lvd.toLV()
			vg.Volumes[lv.Name] = lv
		}

		for _, pvd := range pvdatum {
			if pvd.VGName != vg.Name {
				continue
			}

			vg.PVs[path.Base(pvd.Path)] = blivet.PV{
				Path:     pvd.Path,
				Name:     path.Base(pvd.Path),
				UUID:     pvd.UUID,
				VGName:   pvd.VGName,
				Size:     pvd.Size,
				FreeSize: pvd.Free,
			}
		}

		if filter(vg) {
			vgs[vg.Name] = vg
		}
	}

	return vgs, nil
}

func (ls *linuxLVM) CreatePV(diskName string) (blivet.PV, error) {
	kname, dpath, err := getKnameAndPathForBlockDevice(diskName)
	if err != nil {
		return blivet.PV{}, err
	}

	// force the data alignment since we cannot get lvm to tell us what
	// the pe_start will be in advance.
	err = ls.lvmSettled("pvcreate", "--zero=y",
		"--dataalignment="+kibString(blivet.PEStart), dpath)
	if err != nil {
		return blivet.PV{}, err
	}

	pvdatum, err := getPvReport(ls.config, dpath)
	if err != nil {
		return blivet.PV{}, err
	}

	if len(pvdatum) != 1 {
		return blivet.PV{},
			fmt.Errorf("found %d pvs on %s after pvcreate", len(pvdatum), dpath)
	}

	pvd := pvdatum[0]

	return blivet.PV{
		Path:     pvd.Path,
		Name:     kname,
		UUID:     pvd.UUID,
		VGName:   pvd.VGName,
		Size:     pvd.Size,
		FreeSize: pvd.Free,
	}, nil
}

func (ls *linuxLVM) DeletePV(pv blivet.PV) error {
	return ls.lvmSettled("pvremove", "--force", "--force", "--yes", pv.Path)
}

func (ls *linuxLVM) HasPV(name string) bool {
	pvs, err := ls.ScanPVs(func(p blivet.PV) bool { return p.Name == name })
	if err != nil {
		return false
	}

	_, ok := pvs[name]

	return ok
}

func (ls *linuxLVM) CreateVG(name string, extentSize blivet.Size,
	pvs ...blivet.PV) (blivet.VG, error) {
	args := []string{"vgcreate"}

	if extentSize != 0 {
		args = append(args, "-s", kibString(extentSize))
	}

	args = append(args, name)
	for _, pv := range pvs {
		args = append(args, pv.Path)
	}

	if err := ls.lvmSettled(args...); err != nil {
		return blivet.VG{}, err
	}

	vgs, err := ls.ScanVGs(func(v blivet.VG) bool { return v.Name == name })
	if err != nil {
		return blivet.VG{}, err
	}

	vg, ok := vgs[name]
	if !ok {
		return blivet.VG{}, fmt.Errorf("vg %s not found after vgcreate", name)
	}

	return vg, nil
}

func (ls *linuxLVM) ExtendVG(vgName string, pvs ...blivet.PV) error {
	args := []string{"vgextend", vgName}
	for _, pv := range pvs {
		args = append(args, pv.Path)
	}

	return ls.lvmSettled(args...)
}

func (ls *linuxLVM) RemoveVG(vgName string) error {
	return ls.lvmSettled("vgremove", "--force", vgName)
}

func (ls *linuxLVM) HasVG(vgName string) bool {
	vgs, err := ls.ScanVGs(func(v blivet.VG) bool { return v.Name == vgName })
	if err != nil {
		return false
	}

	_, ok := vgs[vgName]

	return ok
}

func (ls *linuxLVM) CreateLV(vgName string, name string, size blivet.Size,
	lvType blivet.LVType) (blivet.LV, error) {
	if lvType == blivet.THIN || lvType == blivet.THINPOOL {
		return blivet.LV{},
			fmt.Errorf("use CreateThinPool/CreateThinLV for %s volumes", lvType)
	}

	if err := ls.checkLVSize(size); err != nil {
		return blivet.LV{}, err
	}

	// lvm refuses odd sizes; hand it whole extents.
	size = blivet.ClampSize(size, blivet.ExtentSize, true)

	err := ls.lvmSettled("lvcreate",
		"-L", mibString(size, true),
		"-n", name,
		"--yes",
		vgName)
	if err != nil {
		return blivet.LV{}, err
	}

	return ls.findLV(vgName, name)
}

func (ls *linuxLVM) CreateThinPool(vgName string, name string,
	size blivet.Size, chunkSize blivet.Size,
	discard bool) (blivet.LV, error) {
	if err := ls.checkLVSize(size); err != nil {
		return blivet.LV{}, err
	}

	size = blivet.ClampSize(size, blivet.ExtentSize, true)
	metadataSize := blivet.ThinPoolPadding(size, blivet.ExtentSize)

	if !blivet.ValidThinPoolMetadataSize(metadataSize) {
		return blivet.LV{},
			fmt.Errorf("computed metadata size %s for pool %s/%s is out of range",
				metadataSize, vgName, name)
	}

	args := []string{"lvcreate",
		"--thinpool", vgLv(vgName, name),
		"--size", mibString(size, true),
		"--poolmetadatasize", mibString(metadataSize, false),
	}

	if chunkSize != 0 {
		if !blivet.ValidThinPoolChunkSize(chunkSize, discard) {
			return blivet.LV{},
				fmt.Errorf("chunk size %s is not valid (discard=%t)",
					chunkSize, discard)
		}

		args = append(args, "--chunksize", kibString(chunkSize))
	}

	if err := ls.lvmSettled(args...); err != nil {
		return blivet.LV{}, err
	}

	return ls.findLV(vgName, name)
}

func (ls *linuxLVM) CreateThinLV(vgName string, poolName string, name string,
	virtualSize blivet.Size) (blivet.LV, error) {
	if err := ls.checkLVSize(virtualSize); err != nil {
		return blivet.LV{}, err
	}

	virtualSize = blivet.ClampSize(virtualSize, blivet.ExtentSize, true)

	err := ls.lvmSettled("lvcreate",
		"--thinpool", vgLv(vgName, poolName),
		"--virtualsize", mibString(virtualSize, true),
		"-n", name,
		"--yes")
	if err != nil {
		return blivet.LV{}, err
	}

	return ls.findLV(vgName, name)
}

func (ls *linuxLVM) RemoveLV(vgName string, lvName string) error {
	return ls.lvmSettled("lvremove", "--force", vgLv(vgName, lvName))
}

func (ls *linuxLVM) ExtendLV(vgName string, lvName string,
	newSize blivet.Size) error {
	if err := ls.checkLVSize(newSize); err != nil {
		return err
	}

	newSize = blivet.ClampSize(newSize, blivet.ExtentSize, true)

	return ls.lvmSettled("lvresize", "--force",
		"-L", mibString(newSize, true),
		vgLv(vgName, lvName))
}

func (ls *linuxLVM) HasLV(vgName string, name string) bool {
	_, err := ls.findLV(vgName, name)
	return err == nil
}

func (ls *linuxLVM) CryptFormat(vgName string, lvName string,
	key string) error {
	return runCommandStdin(key,
		"cryptsetup", "luksFormat", "--key-file=-", lvPath(vgName, lvName))
}

func (ls *linuxLVM) CryptOpen(vgName string, lvName string,
	decryptedName string, key string) error {
	return runCommandStdin(key,
		"cryptsetup", "open", "--type=luks", "--key-file=-",
		lvPath(vgName, lvName), decryptedName)
}

func (ls *linuxLVM) CryptClose(vgName string, lvName string,
	decryptedName string) error {
	return runCommand("cryptsetup", "close", decryptedName)
}

// checkLVSize bounds a requested lv size by what the running platform's
// lvm can address.
func (ls *linuxLVM) checkLVSize(size blivet.Size) error {
	platform, err := Platform()
	if err != nil {
		return err
	}

	if max := blivet.MaxLVSize(platform); size > max {
		return fmt.Errorf("size %s is over the %s platform lv limit %s",
			size, platform, max)
	}

	return nil
}

func (ls *linuxLVM) findLV(vgName string, lvName string) (blivet.LV, error) {
	lvdatum, err := getLvReport(ls.config, vgLv(vgName, lvName))
	if err != nil {
		return blivet.LV{}, err
	}

	for _, lvd := range lvdatum {
		if lvd.Name == lvName && lvd.VGName == vgName {
			return lvd.toLV(), nil
		}
	}

	return blivet.LV{}, fmt.Errorf("lv %s not found", vgLv(vgName, lvName))
}
