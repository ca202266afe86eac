package util

import (
	"fmt"

	"github.com/spf13/viper"
)

// Params holds the tunables of the preprocessing phases. Every field has a
// default that works for road networks; a config.yaml in ./data/ can
// override them.
type Params struct {
	InertialFlowSlopes int     // number of straight-line slopes tried per bisection
	SourceSinkFraction float64 // fraction of nodes fixed as flow sources/sinks
	DissectionLeafSize int     // recursion stops below this many nodes
	FlowWorkers        int     // concurrent min-cut computations per bisection
	CustomizerWorkers  int     // default worker count for parallel customization, 0 = GOMAXPROCS
}

func DefaultParams() Params {
	return Params{
		InertialFlowSlopes: 4,
		SourceSinkFraction: 0.25,
		DissectionLeafSize: 32,
		FlowWorkers:        4,
		CustomizerWorkers:  0,
	}
}

// ReadParams loads Params from ./data/config.yaml, falling back to the
// defaults for anything the file does not set. A missing file is not an
// error; a malformed one is.
func ReadParams() (Params, error) {
	def := DefaultParams()

	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.SetDefault("orderer.inertial_flow_slopes", def.InertialFlowSlopes)
	viper.SetDefault("orderer.source_sink_fraction", def.SourceSinkFraction)
	viper.SetDefault("orderer.dissection_leaf_size", def.DissectionLeafSize)
	viper.SetDefault("orderer.flow_workers", def.FlowWorkers)
	viper.SetDefault("customizer.workers", def.CustomizerWorkers)

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return def, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return Params{
		InertialFlowSlopes: viper.GetInt("orderer.inertial_flow_slopes"),
		SourceSinkFraction: viper.GetFloat64("orderer.source_sink_fraction"),
		DissectionLeafSize: viper.GetInt("orderer.dissection_leaf_size"),
		FlowWorkers:        viper.GetInt("orderer.flow_workers"),
		CustomizerWorkers:  viper.GetInt("customizer.workers"),
	}, nil
}
