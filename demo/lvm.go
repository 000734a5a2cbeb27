package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ryanlerch/blivet"
	"github.com/ryanlerch/blivet/linux"
	"github.com/urfave/cli/v2"
)

//nolint:gochecknoglobals
var lvmRejectFlag = cli.StringSliceFlag{
	Name:  "reject",
	Usage: "Hide this device path from lvm commands. May be given multiple times.",
}

//nolint:gochecknoglobals
var lvmCommands = cli.Command{
	Name:  "lvm",
	Usage: "lvm commands",
	Subcommands: []*cli.Command{
		{
			Name:   "dump-vgs",
			Usage:  "Scan system and dump blivet VGs.  Optionally give a vg name.",
			Action: lvmDumpVGs,
			Flags:  []cli.Flag{&lvmRejectFlag},
		},
		{
			Name:   "dump-pvs",
			Usage:  "Scan system and dump blivet PVs.  Optionally give a pv name.",
			Action: lvmDumpPVs,
			Flags:  []cli.Flag{&lvmRejectFlag},
		},
		{
			Name:   "show-lvs",
			Usage:  "Scan system and show LVs across all VGs (human)",
			Action: lvmShowLVs,
			Flags:  []cli.Flag{&lvmRejectFlag},
		},
	},
}

func lvmVolumeManager(c *cli.Context) blivet.VolumeManager {
	cfg := &linux.LVMConfig{}
	for _, r := range c.StringSlice("reject") {
		cfg.AddFilterReject(r)
	}

	return linux.VolumeManager(cfg)
}

func lvmDumpVGs(c *cli.Context) error {
	var filter blivet.VGFilter

	if c.Args().Len() == 0 {
		filter = func(v blivet.VG) bool { return true }
	} else if c.Args().Len() == 1 {
		filter = func(v blivet.VG) bool { return v.Name == c.Args().First() }
	} else {
		return fmt.Errorf("too many args. Really just want 1. Got %d", c.Args().Len())
	}

	vmgr := lvmVolumeManager(c)

	vgset, err := vmgr.ScanVGs(filter)
	if err != nil {
		return err
	}

	jbytes, err := json.MarshalIndent(&vgset, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(jbytes))

	return nil
}

func lvmDumpPVs(c *cli.Context) error {
	var filter blivet.PVFilter

	if c.Args().Len() == 0 {
		filter = func(p blivet.PV) bool { return true }
	} else if c.Args().Len() == 1 {
		filter = func(p blivet.PV) bool { return p.Name == c.Args().First() }
	} else {
		return fmt.Errorf("too many args. Really just want 1. Got %d", c.Args().Len())
	}

	vmgr := lvmVolumeManager(c)

	pvset, err := vmgr.ScanPVs(filter)
	if err != nil {
		return err
	}

	jbytes, err := json.MarshalIndent(&pvset, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(jbytes))

	return nil
}

func lvmShowLVs(c *cli.Context) error {
	vmgr := lvmVolumeManager(c)

	vgset, err := vmgr.ScanVGs(func(v blivet.VG) bool { return true })
	if err != nil {
		return err
	}

	data := [][]string{{"VG", "LV", "SIZE", "TYPE", "POOL", "CRYPT"}}

	names := []string{}
	for n := range vgset {
		names = append(names, n)
	}

	sort.Strings(names)

	for _, n := range names {
		vg := vgset[n]

		lvNames := []string{}
		for ln := range vg.Volumes {
			lvNames = append(lvNames, ln)
		}

		sort.Strings(lvNames)

		for _, ln := range lvNames {
			lv := vg.Volumes[ln]
			data = append(data, []string{
				vg.Name, lv.Name, lv.Size.String(),
				lv.Type.String(), lv.Pool,
				fmt.Sprintf("%t", lv.Encrypted),
			})
		}
	}

	printTextTable(data)

	return nil
}
