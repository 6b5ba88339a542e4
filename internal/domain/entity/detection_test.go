package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundingBoxRect(t *testing.T) {
	b := BoundingBox{XMin: 10.4, YMin: 20.6, XMax: 50.9, YMax: 80}
	require.Equal(t, image.Rect(10, 20, 50, 80), b.Rect())
}

func TestBoundingBoxCenter(t *testing.T) {
	b := BoundingBox{XMin: 10, YMin: 20, XMax: 18, YMax: 26}
	x, y := b.Center()
	require.Equal(t, 14.0, x)
	require.Equal(t, 23.0, y)
}
