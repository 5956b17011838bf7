package graph

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/geo"
)

// Names of the files making up a graph directory.
const (
	NodesFile      = "nodes.bin"
	SectorsFile    = "sectors.bin"
	EdgesFile      = "edges.bin"
	ProfileIDsFile = "profile_ids.bin"
	ElevationFile  = "elevation.bin"
	AttributesFile = "attributes.bin"

	attributeSetBytes = 8
)

// Buffers holds the raw contents of the graph files.
type Buffers struct {
	Nodes      []byte
	Sectors    []byte
	Edges      []byte
	ProfileIDs []byte
	Elevations []byte
	Attributes []byte
}

func (b *Buffers) byName() map[string]*[]byte {
	return map[string]*[]byte{
		NodesFile:      &b.Nodes,
		SectorsFile:    &b.Sectors,
		EdgesFile:      &b.Edges,
		ProfileIDsFile: &b.ProfileIDs,
		ElevationFile:  &b.Elevations,
		AttributesFile: &b.Attributes,
	}
}

// Load memory-maps the graph files found in dir and builds the graph.
// The returned graph must be closed to release the mappings.
func Load(dir string, bounds geo.Bounds) (*Graph, error) {
	var bufs Buffers
	targets := bufs.byName()
	mapped := make(map[string]*mappedFile, len(targets))

	results := make(chan struct {
		name string
		m    *mappedFile
	}, len(targets))

	var eg errgroup.Group
	for name := range targets {
		eg.Go(func() error {
			m, err := openMapped(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("%w: %s: %w", errs.ErrIO, name, err)
			}
			results <- struct {
				name string
				m    *mappedFile
			}{name, m}
			return nil
		})
	}
	err := eg.Wait()
	close(results)
	for r := range results {
		mapped[r.name] = r.m
		*targets[r.name] = r.m.data
	}

	closeAll := func() {
		for _, m := range mapped {
			m.Close()
		}
	}
	if err != nil {
		closeAll()
		return nil, err
	}

	g, err := New(bufs, bounds)
	if err != nil {
		closeAll()
		return nil, err
	}
	for _, m := range mapped {
		g.mapped = append(g.mapped, m)
	}
	return g, nil
}

// New builds a graph over in-memory file contents. The buffers are not
// copied and must not be modified afterwards.
func New(b Buffers, bounds geo.Bounds) (*Graph, error) {
	if err := validateSizes(b); err != nil {
		return nil, err
	}

	sets := make([]AttributeSet, len(b.Attributes)/attributeSetBytes)
	for i := range sets {
		s, err := NewAttributeSet(binary.BigEndian.Uint64(b.Attributes[i*attributeSetBytes:]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: set %d: %w", errs.ErrIO, AttributesFile, i, err)
		}
		sets[i] = s
	}

	g := &Graph{
		nodes:         NewNodes(b.Nodes),
		sectors:       NewSectors(b.Sectors, bounds),
		edges:         NewEdges(b.Edges, b.ProfileIDs, b.Elevations),
		attributeSets: sets,
		bounds:        bounds,
	}
	if err := g.validate(len(b.Elevations) / sampleBytes); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	return g, nil
}

func validateSizes(b Buffers) error {
	check := func(name string, size, stride int) error {
		if size%stride != 0 {
			return fmt.Errorf("%w: %s: size %d is not a multiple of %d", errs.ErrIO, name, size, stride)
		}
		return nil
	}
	if len(b.Sectors) != sectorsFileSize {
		return fmt.Errorf("%w: %s: size %d, want %d", errs.ErrIO, SectorsFile, len(b.Sectors), sectorsFileSize)
	}
	for _, c := range []struct {
		name         string
		size, stride int
	}{
		{NodesFile, len(b.Nodes), nodeBytes},
		{EdgesFile, len(b.Edges), edgeBytes},
		{ProfileIDsFile, len(b.ProfileIDs), profileIDBytes},
		{ElevationFile, len(b.Elevations), sampleBytes},
		{AttributesFile, len(b.Attributes), attributeSetBytes},
	} {
		if err := check(c.name, c.size, c.stride); err != nil {
			return err
		}
	}
	if edges, ids := len(b.Edges)/edgeBytes, len(b.ProfileIDs)/profileIDBytes; edges != ids {
		return fmt.Errorf("%w: %s holds %d ids for %d edges", errs.ErrIO, ProfileIDsFile, ids, edges)
	}
	return nil
}

// validate checks the cross-file invariants once, so that accessors never
// index outside the buffers.
func (g *Graph) validate(sampleCount int) error {
	nodeCount := g.nodes.Count()
	edgeCount := g.edges.Count()

	next := 0
	for i := 0; i < SectorCount; i++ {
		s := g.sectors.Sector(i)
		if s.StartNodeID != next {
			return fmt.Errorf("sector %d starts at node %d, want %d", i, s.StartNodeID, next)
		}
		next = s.EndNodeID
	}
	if next != nodeCount {
		return fmt.Errorf("sectors cover %d nodes, graph has %d", next, nodeCount)
	}

	for id := 0; id < nodeCount; id++ {
		if end := g.nodes.firstEdgeID(id) + g.nodes.OutDegree(id); end > edgeCount {
			return fmt.Errorf("node %d references edge %d beyond %d edges", id, end-1, edgeCount)
		}
	}

	for id := 0; id < edgeCount; id++ {
		if t := g.edges.TargetNodeID(id); t >= nodeCount {
			return fmt.Errorf("edge %d targets node %d beyond %d nodes", id, t, nodeCount)
		}
		if a := g.edges.AttributesIndex(id); a >= len(g.attributeSets) {
			return fmt.Errorf("edge %d references attribute set %d beyond %d", id, a, len(g.attributeSets))
		}
		if err := g.validateProfile(id, sampleCount); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) validateProfile(id, sampleCount int) error {
	n := SampleCount(g.edges.rawLength(id))
	var words int
	switch g.edges.ProfileType(id) {
	case ProfileNone:
		return nil
	case ProfileRaw:
		words = n
	case ProfileDeltaQ4_4:
		words = 1 + (n-1+1)/2
	case ProfileDeltaQ0_4:
		words = 1 + (n-1+3)/4
	}
	first := int(g.edges.profileID(id) & (1<<firstSampleBits - 1))
	if first+words > sampleCount {
		return fmt.Errorf("edge %d profile [%d,%d) exceeds %d samples", id, first, first+words, sampleCount)
	}
	return nil
}

// WriteDir writes the buffers as a graph directory. Each file is written to a
// temporary name first and renamed into place.
func (b Buffers) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	for name, data := range b.byName() {
		if err := writeAtomic(filepath.Join(dir, name), *data); err != nil {
			return fmt.Errorf("%w: %s: %w", errs.ErrIO, name, err)
		}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
