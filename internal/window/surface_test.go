package window

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/render"
)

func TestTriangleVertices(t *testing.T) {
	verts := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	c := color.RGBA{R: 128, G: 64, B: 0, A: 128}

	vs, is := triangleVertices(verts, []int{0, 1, 2, 0, 2, 9, 0, 2, 3}, c)
	require.Len(t, vs, 6, "the triangle with an out of range index is dropped")
	assert.Equal(t, []uint16{0, 1, 2, 3, 4, 5}, is)
	assert.Equal(t, float32(10), vs[4].DstX)
	assert.Equal(t, float32(1), vs[0].SrcX)

	// Premultiplied input comes out straight.
	assert.InDelta(t, 1.0, vs[0].ColorR, 0.01)
	assert.InDelta(t, 0.5, vs[0].ColorA, 0.01)
}

func TestValidIndices(t *testing.T) {
	assert.True(t, validIndices([]int{0, 1, 2}, 3))
	assert.False(t, validIndices([]int{0, 1, 3}, 3))
	assert.False(t, validIndices([]int{-1, 1, 2}, 3))
}

func TestLineWidthFloor(t *testing.T) {
	assert.Equal(t, 1.0, lineWidth(render.Style{}))
	assert.Equal(t, 2.5, lineWidth(render.Style{LineWidth: 2.5}))
}

func TestSurfaceMeasure(t *testing.T) {
	face, err := NewFace(14)
	require.NoError(t, err)
	s := NewSurface(face)

	w, h := s.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)

	short, _ := s.Measure("Vega")
	long, lh := s.Measure("Vega and Deneb")
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)
	assert.Greater(t, lh, 10.0)
	assert.Less(t, lh, 28.0)

	w, h = s.Measure("")
	assert.Zero(t, w)
	assert.Zero(t, h)
}
