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
var diskCommands = cli.Command{
	Name:  "disk",
	Usage: "disk / partition commands",
	Subcommands: []*cli.Command{
		{
			Name:   "dump",
			Usage:  "Scan disks on the system and dump data (json)",
			Action: diskScan,
		},
		{
			Name:   "show",
			Usage:  "Scan disks on the system and dump data (human)",
			Action: diskShow,
		},
	},
}

func diskScan(c *cli.Context) error {
	var err error
	var jbytes []byte

	mysys := linux.System()
	matchAll := func(d blivet.Disk) bool {
		return true
	}

	if c.Args().Len() == 1 {
		// a single argument will only output 1 disk, not an array of one disk.
		disk, err := mysys.ScanDisk(c.Args().First())
		if err != nil {
			return err
		}

		if jbytes, err = json.MarshalIndent(&disk, "", "  "); err != nil {
			return err
		}

		fmt.Printf("%s\n", string(jbytes))

		return nil
	}

	var disks blivet.DiskSet
	if c.Args().Len() == 0 {
		disks, err = mysys.ScanAllDisks(matchAll)
	} else {
		disks, err = mysys.ScanDisks(matchAll, c.Args().Slice()...)
	}

	if err != nil {
		return err
	}

	if jbytes, err = json.MarshalIndent(disks, "", "  "); err != nil {
		return err
	}

	fmt.Printf("%s\n", string(jbytes))

	return nil
}

func diskShow(c *cli.Context) error {
	mysys := linux.System()
	disks, err := getDiskSet(mysys, c.Args().Slice()...)

	if err != nil {
		return err
	}

	oDisks := []string{}
	for _, d := range disks {
		oDisks = append(oDisks, d.Name)
	}

	sort.Strings(oDisks)

	for _, n := range oDisks {
		d := disks[n]
		fmt.Printf("%s\n%s\n", d.String(), d.Details())
	}

	return nil
}

func getDiskSet(mysys blivet.System, paths ...string) (blivet.DiskSet, error) {
	matchAll := func(d blivet.Disk) bool {
		return true
	}

	return getDiskSetFilter(mysys, matchAll, paths...)
}

func getDiskSetFilter(mysys blivet.System, matcher blivet.DiskFilter, paths ...string) (blivet.DiskSet, error) {
	if len(paths) == 0 || (len(paths) == 1 && paths[0] == "all") {
		return mysys.ScanAllDisks(matcher)
	}

	return mysys.ScanDisks(matcher, paths...)
}
