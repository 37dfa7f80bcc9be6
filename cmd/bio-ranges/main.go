// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

/*
bio-ranges computes overlap, set and proximity relationships between BED
interval files.

Examples:
  bio-ranges overlap -strandedness same a.bed b.bed
  bio-ranges nearest -k 3 -direction upstream -max-distance 10000 genes.bed peaks.bed
  bio-ranges merge -slack 100 reads.bed.gz
  bio-ranges complement -genome hg38.genome targets.bed
*/

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

type operation struct {
	name  string
	short string
	// nInputs is the number of BED inputs: 1, or 2 for operations comparing
	// a first input (A) against a second (B).
	nInputs int
}

var operations = []operation{
	{"overlap", "Report the intervals of B overlapping each interval of A", 2},
	{"join", "Report every overlapping A/B pair, with the overlap length", 2},
	{"intersect", "Report the intersection of every overlapping A/B pair", 2},
	{"subtract", "Remove from each interval of A the bases covered by B", 2},
	{"nearest", "Report the intervals of B closest to each interval of A", 2},
	{"coverage", "Report how much of each interval of A is covered by B", 2},
	{"merge", "Merge overlapping or nearby intervals", 1},
	{"cluster", "Report the merged cluster each interval belongs to", 1},
	{"complement", "Report the gaps between intervals", 1},
	{"window", "Split each interval into sliding windows", 1},
	{"tile", "Report the genome-aligned tiles each interval overlaps", 1},
}

const outputHelp = `
Output is tab-separated, with 0-based half-open coordinates.
  overlap, join, nearest: A seq/start/end/strand, B seq/start/end/strand
    (". -1 -1 ." if unmatched), overlap length, signed distance.
  intersect, subtract, merge, complement, window, tile: BED6 with the
    contributing A row numbers (0-based, comma-separated) as the name and
    their count as the score.
  coverage: A seq/start/end/strand, number of B intervals, covered bases,
    length, covered fraction.
  cluster: A seq/start/end/strand, cluster number.`

func newCmd(op operation) *cmdline.Command {
	argsName := "a.bed"
	if op.nInputs == 2 {
		argsName = "a.bed b.bed"
	}
	cmd := &cmdline.Command{
		Name:     op.name,
		Short:    op.short,
		Long:     op.short + ".\n" + outputHelp,
		ArgsName: argsName,
	}
	inv := &invocation{cfg: defaultConfig}
	bindConfigFlags(&cmd.Flags, &inv.cfg)
	configPath := cmd.Flags.String("config", "", "YAML file of options, keyed by flag name with '_' for '-'. Flags override it")
	outPath := cmd.Flags.String("out", "", "Output path; standard output if empty")
	switch op.name {
	case "window":
		cmd.Flags.Int64Var(&inv.width, "width", 1000, "Window width")
		cmd.Flags.Int64Var(&inv.step, "step", 1000, "Distance between window starts")
	case "tile":
		cmd.Flags.Int64Var(&inv.width, "width", 1000, "Tile width")
	case "complement":
		cmd.Flags.StringVar(&inv.genomePath, "genome", "", "Optional file of '<seq> <length>' lines bounding each sequence")
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != op.nInputs {
			return env.UsageErrorf("%s takes %d BED path(s), but got %v", op.name, op.nInputs, argv)
		}
		ctx := vcontext.Background()
		cfg, err := resolveConfig(ctx, *configPath, &cmd.Flags)
		if err != nil {
			return err
		}
		run := *inv
		run.cfg = cfg
		return run.runToPath(ctx, op.name, argv, *outPath, env.Stdout)
	})
	return cmd
}

func newCmdRoot() *cmdline.Command {
	root := &cmdline.Command{
		Name:     "bio-ranges",
		Short:    "Genomic interval algebra on BED files",
		Long:     fmt.Sprintf("bio-ranges runs interval set operations on BED files.\n%s", outputHelp),
		LookPath: false,
	}
	for _, op := range operations {
		root.Children = append(root.Children, newCmd(op))
	}
	return root
}

func main() {
	shutdown := grail.Init()
	defer shutdown()
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newCmdRoot())
}
