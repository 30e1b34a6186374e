// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package filelist

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ostree/internal/base"
	"github.com/cockroachdb/ostree/vfs"
	"github.com/cockroachdb/redact"
)

// Logger defines an interface for writing log messages.
type Logger = base.Logger

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger = base.DefaultLogger

// SortMode determines the order of the entries in a List.
type SortMode int8

const (
	// SortInsertion keeps entries in the order they were added.
	SortInsertion SortMode = iota
	// SortName orders entries byte-wise by path.
	SortName
	// SortNatural orders entries by path, ignoring case and comparing runs of
	// digits numerically.
	SortNatural
)

var sortModeNames = [...]string{
	SortInsertion: "insertion",
	SortName:      "name",
	SortNatural:   "natural",
}

// String implements fmt.Stringer.
func (m SortMode) String() string {
	if int(m) < len(sortModeNames) && m >= 0 {
		return sortModeNames[m]
	}
	return "unknown"
}

// SafeFormat implements redact.SafeFormatter.
func (m SortMode) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString(redact.SafeString(m.String()))
}

// ParseSortMode parses the name of a sort mode.
func ParseSortMode(s string) (SortMode, error) {
	for m, name := range sortModeNames {
		if strings.EqualFold(s, name) {
			return SortMode(m), nil
		}
	}
	return 0, errors.Newf("unknown sort mode %q", s)
}

// Options holds the optional parameters for a List.
type Options struct {
	// FS is the file system that entries are listed and loaded through.
	FS vfs.FS

	// Sort determines the order of the entries.
	Sort SortMode

	// Logger is used to report skipped files and failed loads.
	Logger Logger

	// LoadConcurrency bounds the number of files Preload reads at once.
	LoadConcurrency int

	// Extensions restricts Scan to files with one of these extensions,
	// compared case-insensitively and including the leading dot (".png"). An
	// empty list accepts every regular file.
	Extensions []string

	// Metrics are recorded by Preload when set.
	Metrics LoaderMetrics
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified. Returns the new options.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.FS == nil {
		o.FS = vfs.Default
	}
	if o.Logger == nil {
		o.Logger = DefaultLogger{}
	}
	if o.LoadConcurrency <= 0 {
		o.LoadConcurrency = 4
	}
	return o
}

func (o *Options) matchesExtension(name string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	for _, ext := range o.Extensions {
		if len(name) >= len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext) {
			return true
		}
	}
	return false
}
