package bvh

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// ErrUnknownSplitter is returned by SplitterByName for unrecognised names.
var ErrUnknownSplitter = errors.New("unknown splitter")

// Splitter partitions a node's primitive indices in place along axis and
// returns how many belong to the left child. Returning 0 or len(order)
// makes the builder fall back to an even split.
type Splitter interface {
	Split(order []int32, centroids []math.Vec3, axis int, bounds geometry.AABB) int
}

// MidpointSplit partitions around the midpoint of the node bounds:
// primitives whose centroid lies below it go left.
type MidpointSplit struct{}

func (MidpointSplit) Split(order []int32, centroids []math.Vec3, axis int, bounds geometry.AABB) int {
	split := bounds.Center().Axis(axis)
	i, j := 0, len(order)-1
	for i <= j {
		if centroids[order[i]].Axis(axis) < split {
			i++
			continue
		}
		order[i], order[j] = order[j], order[i]
		j--
	}
	return i
}

// MedianSplit sorts by centroid and splits at the middle element. Equal
// centroids are ordered by primitive index.
type MedianSplit struct{}

func (MedianSplit) Split(order []int32, centroids []math.Vec3, axis int, _ geometry.AABB) int {
	slices.SortFunc(order, func(a, b int32) int {
		if c := cmp.Compare(centroids[a].Axis(axis), centroids[b].Axis(axis)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return len(order) / 2
}

// SplitterByName maps a configuration name to a splitter.
func SplitterByName(name string) (Splitter, error) {
	switch name {
	case "", "midpoint":
		return MidpointSplit{}, nil
	case "median":
		return MedianSplit{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownSplitter)
	}
}
