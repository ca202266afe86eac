package hierarchy

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"

	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/util"
)

// WriteToFile persists the hierarchy as bzip2-compressed text so that a
// customization run can skip the elimination sweep entirely.
func (h *Hierarchy) WriteToFile(filename string) error {
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

	fmt.Fprintf(w, "%d %d %d %d\n",
		h.nodeCount, h.inputArcCount, h.CCHArcCount(), h.TriangleCount())

	writeIndexLine(w, h.order)
	writeIndexLine(w, h.firstOut)
	writeIndexLine(w, h.arcTail)
	writeIndexLine(w, h.arcHead)
	writeIndexLine(w, h.firstIn)
	writeIndexLine(w, h.inTailArc)
	writeIndexLine(w, h.triFirst)
	writeIndexLine(w, h.triApexTail)
	writeIndexLine(w, h.triApexHead)
	writeIndexLine(w, h.fwdInputFirst)
	writeIndexLine(w, h.fwdInputArc)
	writeIndexLine(w, h.bwdInputFirst)
	writeIndexLine(w, h.bwdInputArc)
	writeIndexLine(w, h.inputToCCHArc)
	writeIndexLine(w, h.treeParent)

	return w.Flush()
}

func writeIndexLine(w *bufio.Writer, arr []da.Index) {
	for i, v := range arr {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	w.WriteByte('\n')
}

// ReadFromFile loads a hierarchy written by WriteToFile.
func ReadFromFile(filename string) (*Hierarchy, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}
	var nodeCount, inputArcCount, cchArcCount, triangleCount int
	if _, err := fmt.Sscanf(line, "%d %d %d %d",
		&nodeCount, &inputArcCount, &cchArcCount, &triangleCount); err != nil {
		return nil, fmt.Errorf("hierarchy header: %w", err)
	}

	h := &Hierarchy{
		nodeCount:     nodeCount,
		inputArcCount: inputArcCount,
	}

	sections := []struct {
		name string
		dst  *[]da.Index
		want int
	}{
		{"order", &h.order, nodeCount},
		{"firstOut", &h.firstOut, nodeCount + 1},
		{"arcTail", &h.arcTail, cchArcCount},
		{"arcHead", &h.arcHead, cchArcCount},
		{"firstIn", &h.firstIn, nodeCount + 1},
		{"inTailArc", &h.inTailArc, cchArcCount},
		{"triFirst", &h.triFirst, cchArcCount + 1},
		{"triApexTail", &h.triApexTail, triangleCount},
		{"triApexHead", &h.triApexHead, triangleCount},
		{"fwdInputFirst", &h.fwdInputFirst, cchArcCount + 1},
		{"fwdInputArc", &h.fwdInputArc, -1},
		{"bwdInputFirst", &h.bwdInputFirst, cchArcCount + 1},
		{"bwdInputArc", &h.bwdInputArc, -1},
		{"inputToCCHArc", &h.inputToCCHArc, inputArcCount},
		{"treeParent", &h.treeParent, nodeCount},
	}
	for _, sec := range sections {
		arr, err := readIndexLine(br)
		if err != nil {
			return nil, fmt.Errorf("hierarchy section %s: %w", sec.name, err)
		}
		if sec.want >= 0 && len(arr) != sec.want {
			return nil, fmt.Errorf("hierarchy section %s: expected %d entries, got %d",
				sec.name, sec.want, len(arr))
		}
		*sec.dst = arr
	}

	h.rank = make([]da.Index, nodeCount)
	for r, v := range h.order {
		if int(v) >= nodeCount {
			return nil, fmt.Errorf("hierarchy order: node %d out of range", v)
		}
		h.rank[v] = da.Index(r)
	}
	return h, nil
}

func readIndexLine(br *bufio.Reader) ([]da.Index, error) {
	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}
	tokens := strings.Fields(line)
	arr := make([]da.Index, len(tokens))
	for i, token := range tokens {
		v, err := parseIndex(token)
		if err != nil {
			return nil, err
		}
		arr[i] = v
	}
	return arr, nil
}

func parseIndex(s string) (da.Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return da.Index(u), nil
}
