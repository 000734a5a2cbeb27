package blivet

// Limits the dm-thin metadata format puts on pool geometry.
const (
	// ThinPoolMinMetadataSize is the smallest usable metadata volume.
	ThinPoolMinMetadataSize = 2 * Mebibyte

	// ThinPoolMaxMetadataSize is the largest metadata volume the format
	// can address.
	ThinPoolMaxMetadataSize = 16 * Gibibyte

	// ThinPoolMinChunkSize is the smallest pool chunk size, and the unit
	// non-discard chunk sizes must be a multiple of.
	ThinPoolMinChunkSize = 64 * Kibibyte

	// ThinPoolMaxChunkSize is the largest pool chunk size.
	ThinPoolMaxChunkSize = 1 * Gibibyte
)

// divCeil divides with the remainder rounded up. Integer division here
// keeps the pool padding ratios exact; binary floating point can land a
// hair below an extent boundary and change the clamped result.
func divCeil(size Size, div Size) Size {
	return (size + div - 1) / div
}

// ThinPoolPadding returns the metadata space to set aside for a thin pool
// whose data area is dataSize: a fifth of the data size, aligned up to
// extentSize, capped at the format's metadata ceiling.
func ThinPoolPadding(dataSize Size, extentSize Size) Size {
	return capPoolPad(divCeil(dataSize, 5), extentSize)
}

// ThinPoolPaddingFromTotal returns the metadata share of totalSize when
// totalSize already includes the padding. The pad was budgeted as a fifth
// of the data area, so it is a sixth of the combined total.
func ThinPoolPaddingFromTotal(totalSize Size, extentSize Size) Size {
	return capPoolPad(divCeil(totalSize, 6), extentSize)
}

func capPoolPad(pad Size, extentSize Size) Size {
	clamped := ClampSize(pad, extentSize, true)
	ceiling := ClampSize(ThinPoolMaxMetadataSize, extentSize, true)

	if clamped > ceiling {
		return ceiling
	}

	return clamped
}

// ValidThinPoolMetadataSize reports whether size can be used as a thin
// pool metadata volume size.
func ValidThinPoolMetadataSize(size Size) bool {
	return ThinPoolMinMetadataSize <= size && size <= ThinPoolMaxMetadataSize
}

// ValidThinPoolChunkSize reports whether size can be used as a thin pool
// chunk size. To support discard the chunk size must be a power of two;
// otherwise it need only be a multiple of the 64KiB minimum.
func ValidThinPoolChunkSize(size Size, discard bool) bool {
	if size < ThinPoolMinChunkSize || size > ThinPoolMaxChunkSize {
		return false
	}

	if discard {
		return size&(size-1) == 0
	}

	return size%ThinPoolMinChunkSize == 0
}
