// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ostree [command] (flags)",
	Short: "order-statistic tree benchmarking/introspection tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		benchCmd,
		lsCmd,
	)

	benchCmd.Flags().IntVar(
		&benchConfig.initial, "initial", benchConfig.initial, "number of keys inserted before the run")
	benchCmd.Flags().IntVarP(
		&benchConfig.ops, "ops", "n", benchConfig.ops, "number of operations to run")
	benchCmd.Flags().Uint64Var(
		&benchConfig.seed, "seed", benchConfig.seed, "random seed")
	benchCmd.Flags().IntVar(
		&benchConfig.readPercent, "read-percent", benchConfig.readPercent,
		"Percent (0-100) of operations that are reads (select, rank, lookup, next)")
	benchCmd.Flags().Float64Var(
		&benchConfig.maxOpsPerSec, "max-ops-per-sec", 0,
		"rate limit for operations (0 means unlimited)")
	benchCmd.Flags().BoolVar(
		&benchConfig.plot, "plot", true, "plot the tree height over the run")

	lsCmd.Flags().StringVar(
		&lsConfig.sort, "sort", "natural", "sort order: insertion, name or natural")
	lsCmd.Flags().StringSliceVar(
		&lsConfig.extensions, "ext", nil, "only list files with these extensions (e.g. .png)")
	lsCmd.Flags().IntVar(
		&lsConfig.preload, "preload", -1,
		"load the first entry and this many neighbours on each side (-1 disables)")
	lsCmd.Flags().BoolVar(
		&lsConfig.metrics, "metrics", false, "print the list's Prometheus metrics")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
