package blivet

const (
	minPhysicalExtent = 1 * Kibibyte
	maxPhysicalExtent = 16 * Gibibyte
)

// PossiblePhysicalExtents returns the physical extent sizes a volume group
// can be created with, smallest first. Each entry is double the previous,
// from 1KiB through 16GiB inclusive.
func PossiblePhysicalExtents() []Size {
	extents := []Size{}

	for pe := minPhysicalExtent; pe <= maxPhysicalExtent; pe *= 2 {
		extents = append(extents, pe)
	}

	return extents
}

// ClampSize rounds size to a multiple of gran, up or down. A size that is
// already aligned is returned unchanged. Passing a zero gran is a caller
// bug and panics.
func ClampSize(size Size, gran Size, roundUp bool) Size {
	if gran == 0 {
		panic("blivet: ClampSize called with zero granularity")
	}

	delta := size % gran
	if delta == 0 {
		return size
	}

	if roundUp {
		return size + (gran - delta)
	}

	return size - delta
}

// PVSpace returns the physical volume space consumed by a logical volume of
// the given size: the size rounded up to the extent size, plus one extent
// for the lv's metadata. A zero size consumes nothing.
//
// This estimates a single linear device. Striped and mirrored layouts cost
// more and are the allocation planner's problem.
func PVSpace(size Size, extentSize Size) Size {
	if size == 0 {
		return size
	}

	return ClampSize(size, extentSize, true) + extentSize
}
