package main

import (
	"fmt"

	"github.com/ryanlerch/blivet"
	"github.com/ryanlerch/blivet/linux"
	"github.com/urfave/cli/v2"
)

//nolint:gochecknoglobals
var sizesCommands = cli.Command{
	Name:  "sizes",
	Usage: "size and space estimation helpers",
	Subcommands: []*cli.Command{
		{
			Name:   "extents",
			Usage:  "List the valid physical extent sizes",
			Action: sizesExtents,
		},
		{
			Name:   "clamp",
			Usage:  "Clamp a size to a granularity: clamp <size> [granularity]",
			Action: sizesClamp,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "up",
					Value: false,
					Usage: "Round up instead of down",
				},
			},
		},
		{
			Name:   "pv-space",
			Usage:  "Show physical space consumed by a LV: pv-space <size> [extent-size]",
			Action: sizesPVSpace,
		},
		{
			Name:   "thin-pool",
			Usage:  "Show the metadata sizing for a thin pool: thin-pool <data-size> [extent-size]",
			Action: sizesThinPool,
		},
		{
			Name:   "chunk",
			Usage:  "Check a thin pool chunk size: chunk <size>",
			Action: sizesChunk,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "discard",
					Value: false,
					Usage: "Require discard passdown support",
				},
			},
		},
		{
			Name:   "platform",
			Usage:  "Show the LV size limit for a machine: platform [machine]",
			Action: sizesPlatform,
		},
	},
}

func sizeArg(c *cli.Context, pos int, def blivet.Size) (blivet.Size, error) {
	if c.Args().Len() <= pos {
		if def == 0 {
			return 0, fmt.Errorf("missing size argument %d", pos+1)
		}

		return def, nil
	}

	return blivet.ParseSize(c.Args().Get(pos))
}

func sizesExtents(c *cli.Context) error {
	data := [][]string{{"EXTENT", "BYTES"}}

	for _, e := range blivet.PossiblePhysicalExtents() {
		data = append(data, []string{e.String(), fmt.Sprintf("%d", uint64(e))})
	}

	printTextTable(data)

	return nil
}

func sizesClamp(c *cli.Context) error {
	size, err := sizeArg(c, 0, 0)
	if err != nil {
		return err
	}

	gran, err := sizeArg(c, 1, blivet.ExtentSize)
	if err != nil {
		return err
	}

	fmt.Println(blivet.ClampSize(size, gran, c.Bool("up")))

	return nil
}

func sizesPVSpace(c *cli.Context) error {
	size, err := sizeArg(c, 0, 0)
	if err != nil {
		return err
	}

	extent, err := sizeArg(c, 1, blivet.ExtentSize)
	if err != nil {
		return err
	}

	fmt.Println(blivet.PVSpace(size, extent))

	return nil
}

func sizesThinPool(c *cli.Context) error {
	size, err := sizeArg(c, 0, 0)
	if err != nil {
		return err
	}

	extent, err := sizeArg(c, 1, blivet.ExtentSize)
	if err != nil {
		return err
	}

	pad := blivet.ThinPoolPadding(size, extent)
	fromTotal := blivet.ThinPoolPaddingFromTotal(size, extent)

	printTextTable([][]string{
		{"DATA SIZE", "METADATA", "METADATA (FROM TOTAL)", "VALID"},
		{
			size.String(), pad.String(), fromTotal.String(),
			fmt.Sprintf("%t", blivet.ValidThinPoolMetadataSize(pad)),
		},
	})

	return nil
}

func sizesChunk(c *cli.Context) error {
	size, err := sizeArg(c, 0, 0)
	if err != nil {
		return err
	}

	discard := c.Bool("discard")
	if !blivet.ValidThinPoolChunkSize(size, discard) {
		return fmt.Errorf("%s is not a valid chunk size (discard=%t)", size, discard)
	}

	fmt.Printf("%s is a valid chunk size (discard=%t)\n", size, discard)

	return nil
}

func sizesPlatform(c *cli.Context) error {
	var machine string
	var err error

	if c.Args().Len() >= 1 {
		machine = c.Args().First()
	} else if machine, err = linux.Machine(); err != nil {
		return err
	}

	class := blivet.ClassifyMachine(machine)
	fmt.Printf("machine=%s class=%s max-lv-size=%s\n",
		machine, class, blivet.MaxLVSize(class))

	return nil
}
