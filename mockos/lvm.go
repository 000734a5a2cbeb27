package mockos

import (
	"fmt"
	"path"

	blivet "github.com/ryanlerch/blivet"
)

type mockLVM struct {
	VGs     blivet.VGSet
	PVs     blivet.PVSet
	sys     blivet.System
	freePVs blivet.PVSet
}

// LVM returns a mock volume manager on top of the given system. It starts
// with no PVs or VGs; space accounting follows the same extent rounding
// the real tools apply.
func LVM(sys blivet.System) blivet.VolumeManager {
	return &mockLVM{
		VGs:     blivet.VGSet{},
		PVs:     blivet.PVSet{},
		sys:     sys,
		freePVs: blivet.PVSet{},
	}
}

func (lvm *mockLVM) ScanPVs(filter blivet.PVFilter) (blivet.PVSet, error) {
	pvs := blivet.PVSet{}

	for n, pv := range lvm.PVs {
		if filter == nil || filter(pv) {
			pvs[n] = pv
		}
	}

	return pvs, nil
}

func (lvm *mockLVM) ScanVGs(filter blivet.VGFilter) (blivet.VGSet, error) {
	vgs := blivet.VGSet{}

	for n, vg := range lvm.VGs {
		if filter == nil || filter(vg) {
			vgs[n] = vg
		}
	}

	return vgs, nil
}

func findPartition(disks blivet.DiskSet, name string) (blivet.Partition, bool) {
	for _, d := range disks {
		for _, p := range d.Partitions {
			if p.Name == name {
				return p, true
			}
		}
	}

	return blivet.Partition{}, false
}

func (lvm *mockLVM) CreatePV(diskName string) (blivet.PV, error) {
	disks, _ := lvm.sys.ScanAllDisks(nil)

	var size blivet.Size

	if d, ok := disks[diskName]; ok {
		size = d.Size
	} else if p, ok := findPartition(disks, diskName); ok {
		size = p.Size()
	} else {
		return blivet.PV{}, fmt.Errorf("disk %s does not exist", diskName)
	}

	if _, ok := lvm.PVs[diskName]; ok {
		return blivet.PV{}, fmt.Errorf("pv %s already exists", diskName)
	}

	pv := blivet.PV{
		Name:     diskName,
		UUID:     blivet.GenGUID().String(),
		Path:     path.Join("/dev", diskName),
		Size:     size,
		FreeSize: size,
	}

	lvm.freePVs[pv.Name] = pv
	lvm.PVs[pv.Name] = pv

	return pv, nil
}

func (lvm *mockLVM) DeletePV(pv blivet.PV) error {
	if _, ok := lvm.PVs[pv.Name]; !ok {
		return fmt.Errorf("pv %s does not exist", pv.Name)
	}

	// PV must not be used by any vg to delete
	if _, ok := lvm.freePVs[pv.Name]; !ok {
		return fmt.Errorf("pv %s is in use", pv.Name)
	}

	delete(lvm.PVs, pv.Name)
	delete(lvm.freePVs, pv.Name)

	return nil
}

func (lvm *mockLVM) HasPV(name string) bool {
	_, ok := lvm.PVs[name]
	return ok
}

func validExtentSize(size blivet.Size) bool {
	for _, e := range blivet.PossiblePhysicalExtents() {
		if e == size {
			return true
		}
	}

	return false
}

func (lvm *mockLVM) CreateVG(name string, extentSize blivet.Size,
	pvs ...blivet.PV) (blivet.VG, error) {
	if _, ok := lvm.VGs[name]; ok {
		return blivet.VG{}, fmt.Errorf("vg %s already exists", name)
	}

	if extentSize == 0 {
		extentSize = blivet.ExtentSize
	}

	if !validExtentSize(extentSize) {
		return blivet.VG{}, fmt.Errorf("%s is not a valid extent size", extentSize)
	}

	pvSet := blivet.PVSet{}
	size := blivet.Size(0)

	for _, pv := range pvs {
		if _, ok := lvm.freePVs[pv.Name]; !ok {
			// pv already used by some other vg
			return blivet.VG{}, fmt.Errorf("pv %s already in use", pv.Name)
		}

		// move the PV from the free list into this vg
		delete(lvm.freePVs, pv.Name)
		pv.VGName = name
		pvSet[pv.Name] = pv
		lvm.PVs[pv.Name] = pv

		size += pv.Size
	}

	vg := blivet.VG{
		Name:       name,
		Size:       size,
		ExtentSize: extentSize,
		Volumes:    blivet.LVSet{},
		FreeSpace:  size,
		PVs:        pvSet,
	}
	lvm.VGs[name] = vg

	return vg, nil
}

func (lvm *mockLVM) ExtendVG(vgName string, pvs ...blivet.PV) error {
	vg, ok := lvm.VGs[vgName]
	if !ok {
		return fmt.Errorf("vg %s does not exist", vgName)
	}

	for _, pv := range pvs {
		if _, ok := lvm.freePVs[pv.Name]; !ok {
			// pv already used by some other vg
			return fmt.Errorf("pv %s already in use", pv.Name)
		}
	}

	// Delete all the added pvs from the free list
	for _, pv := range pvs {
		delete(lvm.freePVs, pv.Name)
		pv.VGName = vgName
		vg.PVs[pv.Name] = pv
		lvm.PVs[pv.Name] = pv
		vg.Size += pv.Size
		vg.FreeSpace += pv.Size
	}

	lvm.VGs[vgName] = vg

	return nil
}

func (lvm *mockLVM) RemoveVG(vgName string) error {
	vg, ok := lvm.VGs[vgName]
	if !ok {
		return fmt.Errorf("vg %s does not exist", vgName)
	}

	for _, pv := range vg.PVs {
		// Return all the pvs from this vg to the free list
		pv.VGName = ""
		lvm.freePVs[pv.Name] = pv
		lvm.PVs[pv.Name] = pv
	}

	// Delete this VG from lvm
	delete(lvm.VGs, vg.Name)

	return nil
}

func (lvm *mockLVM) HasVG(vgName string) bool {
	_, ok := lvm.VGs[vgName]
	return ok
}

func (lvm *mockLVM) CryptFormat(vgName string, lvName string, key string) error {
	vg, lv, err := lvm.findLV(vgName, lvName)
	if err != nil {
		return err
	}

	lv.Encrypted = true
	vg.Volumes[lvName] = lv

	return nil
}

func (lvm *mockLVM) CryptOpen(vgName string, lvName string,
	decryptedName string, key string) error {
	_, lv, err := lvm.findLV(vgName, lvName)
	if err != nil {
		return err
	}

	if !lv.Encrypted {
		return fmt.Errorf("lv %s/%s is not encrypted", vgName, lvName)
	}

	return nil
}

func (lvm *mockLVM) CryptClose(vgName string, lvName string,
	decryptedName string) error {
	_, _, err := lvm.findLV(vgName, lvName)
	return err
}

// checkLVSize bounds a requested size by the platform lv limit.
func (lvm *mockLVM) checkLVSize(size blivet.Size) error {
	platform, err := lvm.sys.Platform()
	if err != nil {
		return err
	}

	if max := blivet.MaxLVSize(platform); size > max {
		return fmt.Errorf("size %s is over the %s platform lv limit %s",
			size, platform, max)
	}

	return nil
}

func (lvm *mockLVM) CreateLV(vgName string, name string, size blivet.Size,
	lvType blivet.LVType) (blivet.LV, error) {
	if lvType == blivet.THIN || lvType == blivet.THINPOOL {
		return blivet.LV{},
			fmt.Errorf("use CreateThinPool/CreateThinLV for %s volumes", lvType)
	}

	vg, ok := lvm.VGs[vgName]
	if !ok {
		return blivet.LV{}, fmt.Errorf("vg %s does not exist", vgName)
	}

	if _, ok := vg.Volumes[name]; ok {
		return blivet.LV{}, fmt.Errorf("lv %s already exists", name)
	}

	if len(vg.Volumes) >= blivet.MaxLVSlots {
		return blivet.LV{}, fmt.Errorf("vg %s already has %d volumes",
			vgName, blivet.MaxLVSlots)
	}

	if err := lvm.checkLVSize(size); err != nil {
		return blivet.LV{}, err
	}

	size = blivet.ClampSize(size, vg.ExtentSize, true)
	needed := blivet.PVSpace(size, vg.ExtentSize)

	if vg.FreeSpace < needed {
		return blivet.LV{}, fmt.Errorf("vg %s does not have enough space", vgName)
	}

	lv := blivet.LV{
		Name:   name,
		Path:   path.Join("/dev", vgName, name),
		VGName: vgName,
		Size:   size,
		Type:   lvType,
		Active: true,
	}

	// Add the lv to vg and discount the freespace
	vg.Volumes[name] = lv
	vg.FreeSpace -= needed
	lvm.VGs[vgName] = vg

	return lv, nil
}

func (lvm *mockLVM) CreateThinPool(vgName string, name string,
	size blivet.Size, chunkSize blivet.Size, discard bool) (blivet.LV, error) {
	vg, ok := lvm.VGs[vgName]
	if !ok {
		return blivet.LV{}, fmt.Errorf("vg %s does not exist", vgName)
	}

	if _, ok := vg.Volumes[name]; ok {
		return blivet.LV{}, fmt.Errorf("lv %s already exists", name)
	}

	if len(vg.Volumes) >= blivet.MaxLVSlots {
		return blivet.LV{}, fmt.Errorf("vg %s already has %d volumes",
			vgName, blivet.MaxLVSlots)
	}

	if err := lvm.checkLVSize(size); err != nil {
		return blivet.LV{}, err
	}

	if chunkSize == 0 {
		chunkSize = blivet.ThinPoolMinChunkSize
	}

	if !blivet.ValidThinPoolChunkSize(chunkSize, discard) {
		return blivet.LV{},
			fmt.Errorf("chunk size %s is not valid (discard=%t)",
				chunkSize, discard)
	}

	size = blivet.ClampSize(size, vg.ExtentSize, true)
	padding := blivet.ThinPoolPadding(size, vg.ExtentSize)

	if !blivet.ValidThinPoolMetadataSize(padding) {
		return blivet.LV{},
			fmt.Errorf("computed metadata size %s for pool %s/%s is out of range",
				padding, vgName, name)
	}

	needed := blivet.PVSpace(size+padding, vg.ExtentSize)

	if vg.FreeSpace < needed {
		return blivet.LV{}, fmt.Errorf("vg %s does not have enough space", vgName)
	}

	lv := blivet.LV{
		Name:   name,
		VGName: vgName,
		Size:   size,
		Type:   blivet.THINPOOL,
		Active: true,
	}

	vg.Volumes[name] = lv
	vg.FreeSpace -= needed
	lvm.VGs[vgName] = vg

	return lv, nil
}

func (lvm *mockLVM) CreateThinLV(vgName string, poolName string, name string,
	virtualSize blivet.Size) (blivet.LV, error) {
	vg, pool, err := lvm.findLV(vgName, poolName)
	if err != nil {
		return blivet.LV{}, err
	}

	if pool.Type != blivet.THINPOOL {
		return blivet.LV{},
			fmt.Errorf("lv %s/%s is not a thin pool", vgName, poolName)
	}

	if _, ok := vg.Volumes[name]; ok {
		return blivet.LV{}, fmt.Errorf("lv %s already exists", name)
	}

	if len(vg.Volumes) >= blivet.MaxLVSlots {
		return blivet.LV{}, fmt.Errorf("vg %s already has %d volumes",
			vgName, blivet.MaxLVSlots)
	}

	if err := lvm.checkLVSize(virtualSize); err != nil {
		return blivet.LV{}, err
	}

	virtualSize = blivet.ClampSize(virtualSize, vg.ExtentSize, true)

	// a thin volume is overcommittable, no space is charged up front
	lv := blivet.LV{
		Name:   name,
		Path:   path.Join("/dev", vgName, name),
		VGName: vgName,
		Size:   virtualSize,
		Type:   blivet.THIN,
		Pool:   poolName,
		Active: true,
	}

	vg.Volumes[name] = lv
	lvm.VGs[vgName] = vg

	return lv, nil
}

func (lvm *mockLVM) RemoveLV(vgName string, lvName string) error {
	vg, lv, err := lvm.findLV(vgName, lvName)
	if err != nil {
		return err
	}

	if lv.Type == blivet.THINPOOL {
		// removing a pool removes the thin volumes it backs
		for name, tlv := range vg.Volumes {
			if tlv.Pool == lvName {
				delete(vg.Volumes, name)
			}
		}
	}

	delete(vg.Volumes, lvName)

	// thin volumes never held space in the vg
	if lv.Type != blivet.THIN {
		reclaim := blivet.PVSpace(lv.Size, vg.ExtentSize)
		if lv.Type == blivet.THINPOOL {
			reclaim = blivet.PVSpace(
				lv.Size+blivet.ThinPoolPadding(lv.Size, vg.ExtentSize),
				vg.ExtentSize)
		}

		vg.FreeSpace += reclaim
	}

	lvm.VGs[vgName] = vg

	return nil
}

func (lvm *mockLVM) ExtendLV(vgName string, lvName string,
	newSize blivet.Size) error {
	vg, lv, err := lvm.findLV(vgName, lvName)
	if err != nil {
		return err
	}

	if err := lvm.checkLVSize(newSize); err != nil {
		return err
	}

	newSize = blivet.ClampSize(newSize, vg.ExtentSize, true)

	if newSize < lv.Size {
		return fmt.Errorf("lv size cannot be reduced")
	}

	if lv.Type == blivet.THIN {
		lv.Size = newSize
		vg.Volumes[lvName] = lv
		lvm.VGs[vgName] = vg

		return nil
	}

	needed := blivet.PVSpace(newSize, vg.ExtentSize) -
		blivet.PVSpace(lv.Size, vg.ExtentSize)

	if vg.FreeSpace < needed {
		return fmt.Errorf("vg %s does not have enough space", vg.Name)
	}

	vg.FreeSpace -= needed
	lv.Size = newSize
	vg.Volumes[lvName] = lv
	lvm.VGs[vgName] = vg

	return nil
}

func (lvm *mockLVM) HasLV(vgName string, name string) bool {
	_, _, err := lvm.findLV(vgName, name)
	return err == nil
}

func (lvm *mockLVM) findLV(vgName string, lvName string) (blivet.VG, blivet.LV, error) {
	vg, ok := lvm.VGs[vgName]
	if !ok {
		return blivet.VG{}, blivet.LV{}, fmt.Errorf("vg %s does not exist", vgName)
	}

	lv, ok := vg.Volumes[lvName]
	if !ok {
		return vg, blivet.LV{}, fmt.Errorf("lv %s/%s not found", vgName, lvName)
	}

	return vg, lv, nil
}
