package graph

import (
	"encoding/binary"
	"math"

	"github.com/azybler/bike_router/pkg/geo"
)

const (
	// SectorsPerSide is the number of grid cells along each axis.
	SectorsPerSide = 128
	// SectorCount is the total number of grid cells.
	SectorCount = SectorsPerSide * SectorsPerSide

	sectorBytes         = 6
	offsetSectorStart   = 0
	offsetSectorCount   = 4
	sectorsFileSize     = SectorCount * sectorBytes
	lastSectorIndexAxis = SectorsPerSide - 1
)

// Sector is the half-open node id range [StartNodeID, EndNodeID) of one grid cell.
type Sector struct {
	StartNodeID int
	EndNodeID   int
}

// Sectors is the uniform 128×128 grid over the network bounds. Cells are
// stored row-major (south to north, then west to east), each holding the
// contiguous range of node ids located in it.
type Sectors struct {
	buf    []byte
	bounds geo.Bounds
	width  float64 // cell width in metres
	height float64 // cell height in metres
}

// NewSectors wraps the contents of sectors.bin.
func NewSectors(buf []byte, bounds geo.Bounds) Sectors {
	return Sectors{
		buf:    buf,
		bounds: bounds,
		width:  bounds.Width() / SectorsPerSide,
		height: bounds.Height() / SectorsPerSide,
	}
}

// Sector returns the node range of the cell at index (row*128 + col).
func (s Sectors) Sector(index int) Sector {
	off := index * sectorBytes
	start := int(int32(binary.BigEndian.Uint32(s.buf[off+offsetSectorStart:])))
	count := int(binary.BigEndian.Uint16(s.buf[off+offsetSectorCount:]))
	return Sector{StartNodeID: start, EndNodeID: start + count}
}

// InArea returns the sectors whose cell intersects the square of half-side
// distance centred on center, in row-major order. Cells outside the grid are
// clamped away. A negative or NaN distance covers no cell.
func (s Sectors) InArea(center geo.PointCH, distance float64) []Sector {
	if !(distance >= 0) {
		return nil
	}
	minCol := s.clampedIndex(center.E-distance-s.bounds.MinE, s.width)
	maxCol := s.clampedIndex(center.E+distance-s.bounds.MinE, s.width)
	minRow := s.clampedIndex(center.N-distance-s.bounds.MinN, s.height)
	maxRow := s.clampedIndex(center.N+distance-s.bounds.MinN, s.height)

	sectors := make([]Sector, 0, (maxCol-minCol+1)*(maxRow-minRow+1))
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			sectors = append(sectors, s.Sector(row*SectorsPerSide+col))
		}
	}
	return sectors
}

// CellOf returns the index of the cell containing p, clamped to the grid.
func (s Sectors) CellOf(p geo.PointCH) int {
	col := s.clampedIndex(p.E-s.bounds.MinE, s.width)
	row := s.clampedIndex(p.N-s.bounds.MinN, s.height)
	return row*SectorsPerSide + col
}

func (s Sectors) clampedIndex(offset, cellSize float64) int {
	i := math.Floor(offset / cellSize)
	switch {
	case i < 0:
		return 0
	case i > lastSectorIndexAxis:
		return lastSectorIndexAxis
	}
	return int(i)
}
