// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package dcpl

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Options is the generic, config-file-friendly shape a caller outside
// the wire codec (a CLI flag set, a YAML config document) uses to
// describe a creation property list without building PropertyList's
// pointer fields directly.
type Options struct {
	AllocTime  string `mapstructure:"allocTime"`
	FillTime   string `mapstructure:"fillTime"`
	Layout     string `mapstructure:"layout"`
	ChunkDims  []int  `mapstructure:"chunkDims"`
	TrackTimes bool   `mapstructure:"trackTimes"`
}

// FromOptions decodes a generic map -- as loaded from a YAML config
// file or assembled from CLI flags -- into a PropertyList, starting
// from the library defaults and overriding only the fields Options
// sets.
func FromOptions(raw map[string]interface{}) (PropertyList, error) {
	pl := Default()
	if len(raw) == 0 {
		return pl, nil
	}

	var opts Options
	config := mapstructure.DecoderConfig{Result: &opts}
	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return PropertyList{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return PropertyList{}, fmt.Errorf("dcpl: decoding options: %v", err)
	}

	if opts.AllocTime != "" {
		pl.AllocTime = AllocTime(opts.AllocTime)
	}
	if opts.FillTime != "" {
		pl.FillTime = FillTime(opts.FillTime)
	}
	if opts.TrackTimes {
		pl.TrackTimes = true
	}

	switch LayoutClass(opts.Layout) {
	case "":
		// Default() already set contiguous layout.
	case LayoutContiguous:
		pl.Layout = &Layout{Class: LayoutContiguous}
	case LayoutCompact:
		pl.Layout = &Layout{Class: LayoutCompact}
	case LayoutChunked:
		dims := make([]uint64, len(opts.ChunkDims))
		for i, d := range opts.ChunkDims {
			dims[i] = uint64(d)
		}
		pl.Layout = &Layout{Class: LayoutChunked, Dims: dims}
	default:
		return PropertyList{}, fmt.Errorf("dcpl: unrecognized layout option %q", opts.Layout)
	}

	if err := ValidateLayout(*pl.Layout); err != nil {
		return PropertyList{}, err
	}
	return pl, nil
}
