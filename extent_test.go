package blivet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	blivet "github.com/ryanlerch/blivet"
)

func TestPossiblePhysicalExtents(t *testing.T) {
	assert := assert.New(t)
	extents := blivet.PossiblePhysicalExtents()

	assert.Len(extents, 25)
	assert.Equal(1*blivet.Kibibyte, extents[0])
	assert.Equal(16*blivet.Gibibyte, extents[len(extents)-1])

	for i := 1; i < len(extents); i++ {
		assert.Equal(extents[i-1]*2, extents[i])
	}
}

func TestClampSizeAlignedIsFixedPoint(t *testing.T) {
	assert := assert.New(t)

	for _, size := range []blivet.Size{
		0,
		4 * blivet.Mebibyte,
		40 * blivet.Mebibyte,
		10 * blivet.Gibibyte,
	} {
		assert.Equal(size, blivet.ClampSize(size, 4*blivet.Mebibyte, true))
		assert.Equal(size, blivet.ClampSize(size, 4*blivet.Mebibyte, false))
	}
}

func TestClampSizeUp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(4*blivet.Mebibyte,
		blivet.ClampSize(1*blivet.Byte, 4*blivet.Mebibyte, true))
	assert.Equal(8*blivet.Mebibyte,
		blivet.ClampSize(4*blivet.Mebibyte+1, 4*blivet.Mebibyte, true))
	assert.Equal(100*blivet.Kibibyte,
		blivet.ClampSize(99*blivet.Kibibyte+1, 4*blivet.Kibibyte, true))
}

func TestClampSizeDown(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(blivet.Size(0),
		blivet.ClampSize(1*blivet.Byte, 4*blivet.Mebibyte, false))
	assert.Equal(4*blivet.Mebibyte,
		blivet.ClampSize(4*blivet.Mebibyte+1, 4*blivet.Mebibyte, false))
	assert.Equal(96*blivet.Kibibyte,
		blivet.ClampSize(99*blivet.Kibibyte, 4*blivet.Kibibyte, false))
}

func TestClampSizeBounds(t *testing.T) {
	assert := assert.New(t)

	grans := []blivet.Size{
		1 * blivet.Kibibyte,
		64 * blivet.Kibibyte,
		4 * blivet.Mebibyte,
		16 * blivet.Gibibyte,
	}
	sizes := []blivet.Size{
		1,
		511,
		63 * blivet.Kibibyte,
		100 * blivet.Mebibyte,
		100*blivet.Mebibyte + 17,
		3 * blivet.Tebibyte,
	}

	for _, g := range grans {
		for _, s := range sizes {
			up := blivet.ClampSize(s, g, true)
			down := blivet.ClampSize(s, g, false)

			assert.GreaterOrEqual(up, s)
			assert.LessOrEqual(down, s)
			assert.Equal(blivet.Size(0), up%g)
			assert.Equal(blivet.Size(0), down%g)
		}
	}
}

func TestClampSizeZeroGranularityPanics(t *testing.T) {
	assert := assert.New(t)
	assert.Panics(func() {
		blivet.ClampSize(100*blivet.Mebibyte, 0, true)
	})
}

func TestPVSpaceZero(t *testing.T) {
	assert := assert.New(t)

	for _, g := range blivet.PossiblePhysicalExtents() {
		assert.Equal(blivet.Size(0), blivet.PVSpace(0, g))
	}
}

func TestPVSpaceAligned(t *testing.T) {
	assert := assert.New(t)

	// an aligned lv costs its own size plus one extent of metadata.
	assert.Equal(10*blivet.Gibibyte+4*blivet.Mebibyte,
		blivet.PVSpace(10*blivet.Gibibyte, 4*blivet.Mebibyte))
}

func TestPVSpaceUnaligned(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(8*blivet.Mebibyte,
		blivet.PVSpace(1*blivet.Byte, 4*blivet.Mebibyte))
	assert.Equal(16*blivet.Mebibyte,
		blivet.PVSpace(10*blivet.Mebibyte, 4*blivet.Mebibyte))
}
