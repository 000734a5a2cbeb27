package main

import (
	"fmt"
	"os"

	"github.com/ryanlerch/blivet"
	"github.com/ryanlerch/blivet/linux"
	"github.com/urfave/cli/v2"
)

const mySecret = "passw0rd"

//nolint:gochecknoglobals
var miscCommands = cli.Command{
	Name:  "misc",
	Usage: "miscellaneous test/debug",
	Subcommands: []*cli.Command{
		{
			Name:   "updown",
			Usage:  "Create a pv, vg, lv on the given device, take it all down",
			Action: miscUpDown,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "skip-lvm",
					Value: false,
					Usage: "Do not do lvm operations",
				},
				&cli.BoolFlag{
					Name:  "skip-pvcreate",
					Value: false,
					Usage: "Do not do pvcreate separately from vgcreate",
				},
				&cli.BoolFlag{
					Name:  "skip-thin",
					Value: false,
					Usage: "Do not create a thin pool and thin volume",
				},
				&cli.BoolFlag{
					Name:  "skip-luks",
					Value: false,
					Usage: fmt.Sprintf("Do not setup luks (password is '%s')", mySecret),
				},
				&cli.BoolFlag{
					Name:  "skip-teardown",
					Value: false,
					Usage: "Do not tear down on final run - pv, vg, lv, luks will all be still up.",
				},
				&cli.IntFlag{
					Name:  "loops",
					Value: 1,
					Usage: "Number of up/down cycles to run",
				},
			},
		},
	},
}

func pathExists(fpath string) bool {
	_, err := os.Stat(fpath)
	if err != nil && os.IsNotExist(err) {
		return false
	}

	return true
}

//nolint: gocognit, gocyclo, funlen
func miscUpDown(c *cli.Context) error {
	fname := c.Args().First()

	var err error
	var numRuns = c.Int("loops")
	var doCreatePV = !c.Bool("skip-pvcreate")
	var doLvm = !c.Bool("skip-lvm")
	var doThin = !c.Bool("skip-thin")
	var doLuks = !c.Bool("skip-luks")
	var skipTeardown = c.Bool("skip-teardown")
	var pv blivet.PV
	var vg blivet.VG
	var lv blivet.LV

	if fname == "" {
		return fmt.Errorf("must provide a disk or partition device")
	}

	mysys := linux.System()
	myvmgr := linux.VolumeManager(&linux.LVMConfig{})

	disk, err := mysys.ScanDisk(fname)

	if err != nil {
		return fmt.Errorf("failed to scan %s: %s", fname, err)
	}

	fmt.Printf("numruns=%d createpv=%t lvm=%t thin=%t luks=%t\n%s\n",
		numRuns, doCreatePV, doLvm, doThin, doLuks, disk.Details())

	luksSuffix := "_crypt"

	for i := 0; i < numRuns; i++ {
		fmt.Printf("[%d] starting %s\n", i, disk.Path)

		if !doLvm {
			continue
		}

		if doCreatePV {
			pv, err = myvmgr.CreatePV(disk.Path)
			if err != nil {
				fmt.Printf("failed to createPV(%s): %s", disk.Path, err)
				return err
			}

			fmt.Printf("[%d] created PV %s: %v\n", i, disk.Path, pv.UUID)
		} else {
			pv = blivet.PV{Name: disk.Name, Path: disk.Path}
		}

		vg, err = myvmgr.CreateVG("myvg0", blivet.ExtentSize, pv)
		if err != nil {
			fmt.Printf("Failed creating vg on %s\n", pv.Name)

			return err
		}

		fmt.Printf("[%d] created VG %s (extent %s)\n", i, vg.Name, vg.ExtentSize)

		lv, err = myvmgr.CreateLV(vg.Name, "mylv0", 100*blivet.Mebibyte, blivet.THICK) //nolint: gomnd
		if err != nil {
			fmt.Printf("Failed creating lv %s on %s\n", "mylv0", "myvg0")

			return err
		}

		fmt.Printf("[%d] created LV %s/%s (%d) luks=%t\n",
			i, vg.Name, lv.Name, lv.Size/blivet.Mebibyte, doLuks)

		if doThin {
			pool, err := myvmgr.CreateThinPool(vg.Name, "mypool0",
				200*blivet.Mebibyte, 0, false) //nolint: gomnd
			if err != nil {
				fmt.Printf("Failed creating thin pool on %s\n", vg.Name)

				return err
			}

			thin, err := myvmgr.CreateThinLV(vg.Name, pool.Name, "mythin0",
				500*blivet.Mebibyte) //nolint: gomnd
			if err != nil {
				fmt.Printf("Failed creating thin lv in %s/%s\n", vg.Name, pool.Name)

				return err
			}

			fmt.Printf("[%d] created thin LV %s/%s (%s virtual in %s)\n",
				i, vg.Name, thin.Name, thin.Size, pool.Name)
		}

		luksName := vg.Name + "_" + lv.Name + luksSuffix

		if doLuks {
			if err = myvmgr.CryptFormat(vg.Name, lv.Name, mySecret); err != nil {
				fmt.Printf("Failed to CryptFormat %s/%s", vg.Name, lv.Name)
				return err
			}

			if err = myvmgr.CryptOpen(vg.Name, lv.Name, luksName, mySecret); err != nil {
				fmt.Printf("Failed to CryptOpen %s/%s %s", vg.Name, lv.Name, luksName)
				return err
			}

			if !pathExists("/dev/mapper/" + luksName) {
				return fmt.Errorf("luks device %s did not appear", luksName)
			}

			fmt.Printf("[%d] created luks device %s\n", i, luksName)
		}

		if skipTeardown && i+1 == numRuns {
			fmt.Printf("Leaving everything up on final run.\n")
			continue
		}

		if doLuks {
			if err = myvmgr.CryptClose(vg.Name, lv.Name, luksName); err != nil {
				return err
			}
		}

		err = myvmgr.RemoveVG(vg.Name)
		if err != nil {
			fmt.Printf("Failed removing vg %s: %s\n", vg.Name, err)
			return err
		}

		err = myvmgr.DeletePV(pv)
		if err != nil {
			fmt.Printf("failed to DeletePV(%s): %s\n", disk.Path, err)
			return err
		}

		fmt.Printf("[%d] deleted PV %s\n", i, disk.Path)
	}

	return nil
}
