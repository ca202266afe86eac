package main

import (
	"flag"
	"time"

	"github.com/adiatma-s/cchkit/pkg/customizer"
	"github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/hierarchy"
	"github.com/adiatma-s/cchkit/pkg/logger"
	"github.com/adiatma-s/cchkit/pkg/metrics"
	"github.com/adiatma-s/cchkit/pkg/util"
)

var (
	graphFile     = flag.String("graph", "./data/road.graph.bz2", "input graph file")
	hierarchyFile = flag.String("hierarchy", "./data/road.cch.bz2", "hierarchy file")
)

// customizes the hierarchy with the weights stored in the graph file and
// reports sequential vs parallel customization times.
func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	_, weights, _, _, err := datastructure.ReadGraphFile(*graphFile)
	if err != nil {
		panic(err)
	}
	h, err := hierarchy.ReadFromFile(*hierarchyFile)
	if err != nil {
		panic(err)
	}

	params, err := util.ReadParams()
	if err != nil {
		panic(err)
	}

	m, err := metrics.NewMetric(h, weights)
	if err != nil {
		panic(err)
	}
	start := time.Now()
	if err := customizer.Customize(m); err != nil {
		panic(err)
	}
	logger.Sugar().Infof("sequential customization took %s", time.Since(start))

	mp, err := metrics.NewMetric(h, weights)
	if err != nil {
		panic(err)
	}
	start = time.Now()
	if err := customizer.ParallelCustomize(mp, params.CustomizerWorkers); err != nil {
		panic(err)
	}
	logger.Sugar().Infof("parallel customization took %s", time.Since(start))

	pm := customizer.PerfectCustomize(m)
	keptUp, keptDown := 0, 0
	for a := 0; a < h.CCHArcCount(); a++ {
		if pm.KeepUpward(datastructure.Index(a)) {
			keptUp++
		}
		if pm.KeepDownward(datastructure.Index(a)) {
			keptDown++
		}
	}
	logger.Sugar().Infof("perfect customization keeps %d upward and %d downward of %d arcs",
		keptUp, keptDown, h.CCHArcCount())
}
