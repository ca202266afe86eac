package main

import (
	"flag"

	"github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/hierarchy"
	"github.com/adiatma-s/cchkit/pkg/logger"
	"github.com/adiatma-s/cchkit/pkg/orderer"
	"github.com/adiatma-s/cchkit/pkg/util"
)

var (
	graphFile = flag.String("graph", "./data/road.graph.bz2", "input graph file")
	outFile   = flag.String("out", "./data/road.cch.bz2", "output hierarchy file")
)

// computes the nested dissection order and builds the metric-independent
// hierarchy once; customization and queries run from the saved file.
func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	graph, _, lat, lon, err := datastructure.ReadGraphFile(*graphFile)
	if err != nil {
		panic(err)
	}
	logger.Sugar().Infof("read graph: %d nodes, %d arcs",
		graph.NumberOfVertices(), graph.NumberOfArcs())

	params, err := util.ReadParams()
	if err != nil {
		panic(err)
	}

	tail := make([]datastructure.Index, graph.NumberOfArcs())
	head := make([]datastructure.Index, graph.NumberOfArcs())
	for a := range tail {
		tail[a] = graph.GetTail(datastructure.Index(a))
		head[a] = graph.GetHead(datastructure.Index(a))
	}

	nd := orderer.NewNestedDissectionOrderer(params, logger)
	order, err := nd.ComputeOrder(graph.NumberOfVertices(), tail, head, lat, lon)
	if err != nil {
		panic(err)
	}

	h, err := hierarchy.Build(order, tail, head, false, hierarchy.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	if err := h.WriteToFile(*outFile); err != nil {
		panic(err)
	}
	logger.Sugar().Infof("wrote hierarchy to %s", *outFile)
}
