package blivet

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a count of bytes. Arithmetic, modulo and comparison come straight
// from the underlying integer; negative values are unrepresentable.
type Size uint64

// Binary units for Size values.
const (
	Byte Size = 1 << (10 * iota)
	Kibibyte
	Mebibyte
	Gibibyte
	Tebibyte
	Pebibyte
	Exbibyte
)

//nolint:gochecknoglobals
var sizeUnits = []struct {
	unit Size
	name string
}{
	{Exbibyte, "EiB"},
	{Pebibyte, "PiB"},
	{Tebibyte, "TiB"},
	{Gibibyte, "GiB"},
	{Mebibyte, "MiB"},
	{Kibibyte, "KiB"},
}

// Convert returns s counted in the given unit, rounding up or down to a
// whole number of units. Rounding direction matters only at presentation
// boundaries such as composing command line arguments.
func (s Size) Convert(unit Size, roundUp bool) uint64 {
	if unit == 0 {
		panic("blivet: Size.Convert called with zero unit")
	}

	if roundUp {
		return uint64((s + unit - 1) / unit)
	}

	return uint64(s / unit)
}

// String formats s with the largest binary unit that divides it evenly,
// falling back to a plain byte count.
func (s Size) String() string {
	if s == 0 {
		return "0B"
	}

	for _, u := range sizeUnits {
		if s%u.unit == 0 {
			return fmt.Sprintf("%d%s", uint64(s/u.unit), u.name)
		}
	}

	return fmt.Sprintf("%dB", uint64(s))
}

// ParseSize parses a size string like "512", "64KiB" or "4 MiB".
// A bare number is a byte count.
func ParseSize(val string) (Size, error) {
	str := strings.TrimSpace(val)
	if str == "" {
		return 0, fmt.Errorf("empty size string")
	}

	unit := Byte
	num := str

	for _, u := range sizeUnits {
		if strings.HasSuffix(str, u.name) {
			unit = u.unit
			num = strings.TrimSpace(strings.TrimSuffix(str, u.name))

			break
		}
	}

	if unit == Byte {
		num = strings.TrimSpace(strings.TrimSuffix(num, "B"))
	}

	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse size '%s': %s", val, err)
	}

	return Size(n) * unit, nil
}
