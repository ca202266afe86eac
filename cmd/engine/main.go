package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/engine"
	"github.com/adiatma-s/cchkit/pkg/logger"
	"github.com/adiatma-s/cchkit/pkg/util"
)

var (
	graphFile     = flag.String("graph", "./data/road.graph.bz2", "input graph file")
	hierarchyFile = flag.String("hierarchy", "", "prebuilt hierarchy file; empty builds from scratch")
)

// reads "source target" pairs from stdin and prints the distance and node
// path for each.
func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	graph, weights, lat, lon, err := datastructure.ReadGraphFile(*graphFile)
	if err != nil {
		panic(err)
	}

	params, err := util.ReadParams()
	if err != nil {
		panic(err)
	}

	var e *engine.Engine
	if *hierarchyFile != "" {
		e, err = engine.NewEngineFromFile(graph, *hierarchyFile, weights, params, logger)
	} else {
		e, err = engine.NewEngine(graph, lat, lon, weights, params, logger)
	}
	if err != nil {
		panic(err)
	}

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		source, target, ok := splitPair(sc.Text())
		if !ok {
			fmt.Println("expected: <source> <target>")
			continue
		}

		dist, path, found, err := e.ShortestPath(
			datastructure.Index(source), datastructure.Index(target))
		if err != nil {
			logger.Sugar().Errorf("query %d -> %d: %v", source, target, err)
			continue
		}
		if !found {
			fmt.Printf("%d -> %d: unreachable\n", source, target)
			continue
		}
		fmt.Printf("%d -> %d: distance %d via %v\n", source, target, dist, path)
	}
}

func splitPair(line string) (uint64, uint64, bool) {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return 0, 0, false
	}
	s, err1 := strconv.ParseUint(tokens[0], 10, 32)
	t, err2 := strconv.ParseUint(tokens[1], 10, 32)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return s, t, true
}
