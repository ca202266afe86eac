package datastructure

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"

	"github.com/adiatma-s/cchkit/pkg/util"
)

// WriteGraphFile stores the graph, its arc weights and the node
// coordinates as bzip2-compressed text: a header line "n m", then one
// "lat lon" line per node and one "tail head weight" line per arc.
func WriteGraphFile(filename string, g *Graph, weights []uint32, lat, lon []float64) error {
	if len(weights) != g.NumberOfArcs() {
		return util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"%d weights for %d arcs", len(weights), g.NumberOfArcs())
	}
	if len(lat) != g.NumberOfVertices() || len(lon) != g.NumberOfVertices() {
		return util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"coordinate arrays (%d lat, %d lon) must match node count %d",
			len(lat), len(lon), g.NumberOfVertices())
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d\n", g.NumberOfVertices(), g.NumberOfArcs())
	for v := 0; v < g.NumberOfVertices(); v++ {
		latF := strconv.FormatFloat(lat[v], 'f', -1, 64)
		lonF := strconv.FormatFloat(lon[v], 'f', -1, 64)
		fmt.Fprintf(w, "%s %s\n", latF, lonF)
	}
	for a := 0; a < g.NumberOfArcs(); a++ {
		fmt.Fprintf(w, "%d %d %d\n", g.GetTail(Index(a)), g.GetHead(Index(a)), weights[a])
	}

	return w.Flush()
}

// ReadGraphFile loads a graph written by WriteGraphFile.
func ReadGraphFile(filename string) (*Graph, []uint32, []float64, []float64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var n, m int
	if _, err := fmt.Sscanf(line, "%d %d", &n, &m); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("graph header: %w", err)
	}

	lat := make([]float64, n)
	lon := make([]float64, n)
	for v := 0; v < n; v++ {
		line, err = util.ReadLine(br)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			return nil, nil, nil, nil, fmt.Errorf("node %d: expected 2 fields, got %d", v, len(tokens))
		}
		if lat[v], err = strconv.ParseFloat(tokens[0], 64); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("node %d lat: %w", v, err)
		}
		if lon[v], err = strconv.ParseFloat(tokens[1], 64); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("node %d lon: %w", v, err)
		}
	}

	tail := make([]Index, m)
	head := make([]Index, m)
	weights := make([]uint32, m)
	for a := 0; a < m; a++ {
		line, err = util.ReadLine(br)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		tokens := strings.Fields(line)
		if len(tokens) != 3 {
			return nil, nil, nil, nil, fmt.Errorf("arc %d: expected 3 fields, got %d", a, len(tokens))
		}
		if tail[a], err = parseArcIndex(tokens[0]); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("arc %d tail: %w", a, err)
		}
		if head[a], err = parseArcIndex(tokens[1]); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("arc %d head: %w", a, err)
		}
		w, err := strconv.ParseUint(tokens[2], 10, 32)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("arc %d weight: %w", a, err)
		}
		weights[a] = uint32(w)
	}

	g, err := NewGraph(n, tail, head)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return g, weights, lat, lon, nil
}

func parseArcIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}
