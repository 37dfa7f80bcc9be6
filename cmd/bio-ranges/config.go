// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/granges/encoding/bed"
	"github.com/grailbio/granges/interval"
	"github.com/grailbio/granges/ranges"
	"gopkg.in/yaml.v3"
)

// config holds the options shared by every subcommand.  It can be loaded
// from a YAML file (-config); flags set on the command line take precedence.
type config struct {
	Strandedness    string `yaml:"strandedness"`
	Slack           int64  `yaml:"slack"`
	MaxDistance     int64  `yaml:"max_distance"`
	KeepUnmatched   bool   `yaml:"keep_unmatched"`
	How             string `yaml:"how"`
	K               int    `yaml:"k"`
	Direction       string `yaml:"direction"`
	ExcludeOverlaps bool   `yaml:"exclude_overlaps"`
	Strict          bool   `yaml:"strict"`
	Parallelism     int    `yaml:"parallelism"`
	OneBased        bool   `yaml:"one_based"`
	Region          string `yaml:"region"`
	LabelByName     bool   `yaml:"label_by_name"`
}

var defaultConfig = config{
	Strandedness: ranges.DefaultOpts.Strandedness.String(),
	MaxDistance:  ranges.DefaultOpts.MaxDistance,
	How:          ranges.DefaultOpts.How.String(),
	K:            ranges.DefaultOpts.K,
	Direction:    ranges.DefaultOpts.Direction.String(),
}

// bindConfigFlags registers one flag per config field on fs.  The current
// field values become the flag defaults.
func bindConfigFlags(fs *flag.FlagSet, c *config) {
	fs.StringVar(&c.Strandedness, "strandedness", c.Strandedness, "How strand takes part in comparisons: 'ignore', 'same' or 'opposite'. For single-input commands, 'same' and 'opposite' both mean per-strand")
	fs.Int64Var(&c.Slack, "slack", c.Slack, "Merge/cluster intervals separated by at most this many bases; for overlap and join, widen the second input's intervals by this much on each side")
	fs.Int64Var(&c.MaxDistance, "max-distance", c.MaxDistance, "Nearest: ignore neighbors farther than this; negative = unlimited")
	fs.BoolVar(&c.KeepUnmatched, "keep-unmatched", c.KeepUnmatched, "Overlap, join, nearest: also report first-input intervals without a match")
	fs.StringVar(&c.How, "how", c.How, "Overlap: report 'all' matches, only the 'first' (leftmost) one, or only 'containment' matches")
	fs.IntVar(&c.K, "k", c.K, "Nearest: number of neighbors to report")
	fs.StringVar(&c.Direction, "direction", c.Direction, "Nearest: 'either', 'upstream' or 'downstream', relative to the first input's strand")
	fs.BoolVar(&c.ExcludeOverlaps, "exclude-overlaps", c.ExcludeOverlaps, "Nearest: ignore overlapping intervals")
	fs.BoolVar(&c.Strict, "strict", c.Strict, "Fail if a sequence/strand of the first input is absent from the second")
	fs.IntVar(&c.Parallelism, "parallelism", c.Parallelism, "Maximum number of groups processed at once; 0 = runtime.NumCPU()")
	fs.BoolVar(&c.OneBased, "one-based", c.OneBased, "Input start coordinates are 1-based")
	fs.StringVar(&c.Region, "region", c.Region, "Only load intervals overlapping this region. Format as <seq>:<1-based first pos>-<last pos>, <seq>:<1-based pos>, or just <seq>")
	fs.BoolVar(&c.LabelByName, "label-by-name", c.LabelByName, "Group intervals by the BED name column as well as by sequence, so only same-named intervals are compared")
}

// readConfig decodes a YAML options file over c.  Unknown keys are errors.
func readConfig(ctx context.Context, path string, c *config) (err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return errors.E(err, path)
	}
	defer file.CloseAndReport(ctx, f, &err)
	dec := yaml.NewDecoder(f.Reader(ctx))
	dec.KnownFields(true)
	if err = dec.Decode(c); err != nil && err != io.EOF {
		return errors.E(errors.Invalid, err, path)
	}
	return nil
}

// resolveConfig returns the defaults, overlaid with the file at configPath
// (if any), overlaid with the flags explicitly set in fs.
func resolveConfig(ctx context.Context, configPath string, fs *flag.FlagSet) (config, error) {
	cfg := defaultConfig
	if configPath != "" {
		if err := readConfig(ctx, configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	overrides := flag.NewFlagSet("overrides", flag.ContinueOnError)
	bindConfigFlags(overrides, &cfg)
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err == nil && overrides.Lookup(f.Name) != nil {
			err = overrides.Set(f.Name, f.Value.String())
		}
	})
	return cfg, err
}

// options converts the config to engine and reader options.
func (c config) options() (opts ranges.Opts, bedOpts bed.Opts, err error) {
	opts = ranges.DefaultOpts
	if opts.Strandedness, err = ranges.ParseStrandedness(c.Strandedness); err != nil {
		return
	}
	if opts.How, err = ranges.ParseHow(c.How); err != nil {
		return
	}
	if opts.Direction, err = ranges.ParseDirection(c.Direction); err != nil {
		return
	}
	opts.Slack = c.Slack
	opts.MaxDistance = c.MaxDistance
	opts.KeepUnmatched = c.KeepUnmatched
	opts.K = c.K
	opts.ExcludeOverlaps = c.ExcludeOverlaps
	opts.Strict = c.Strict
	opts.Parallelism = c.Parallelism
	if err = opts.Validate(); err != nil {
		return
	}
	bedOpts.OneBased = c.OneBased
	bedOpts.LabelByName = c.LabelByName
	if c.Region != "" {
		var region interval.Region
		if region, err = interval.ParseRegionString(c.Region); err != nil {
			return
		}
		bedOpts.Region = &region
	}
	return
}
