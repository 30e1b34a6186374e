// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors/oserror"
	"github.com/stretchr/testify/require"
)

func runFSDataDriven(t *testing.T, path string, fs *MemFS) {
	datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
		var err error
		switch td.Cmd {
		case "mkdirall":
			err = fs.MkdirAll(td.CmdArgs[0].String())
		case "write":
			err = fs.WriteFile(td.CmdArgs[0].String(), []byte(td.Input))
		case "remove":
			err = fs.Remove(td.CmdArgs[0].String())
		case "read":
			var b []byte
			b, err = ReadAll(fs, td.CmdArgs[0].String())
			if err == nil {
				return string(b)
			}
		case "stat":
			var fi os.FileInfo
			fi, err = fs.Stat(td.CmdArgs[0].String())
			if err == nil {
				return fmt.Sprintf("name=%s size=%d dir=%t", fi.Name(), fi.Size(), fi.IsDir())
			}
		case "list":
			var names []string
			names, err = fs.List(td.CmdArgs[0].String())
			if err == nil {
				slices.Sort(names)
				return strings.Join(names, "\n")
			}
		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
		if err != nil {
			return fmt.Sprintf("error: %v not-exist=%t", err, oserror.IsNotExist(err))
		}
		return ""
	})
}

func TestMemFSDataDriven(t *testing.T) {
	runFSDataDriven(t, "testdata/mem_fs", NewMem())
}

func TestMemFSString(t *testing.T) {
	fs := NewMem()
	require.NoError(t, fs.MkdirAll("a/b"))
	require.NoError(t, fs.WriteFile("a/b/x.png", []byte("hello")))
	require.NoError(t, fs.WriteFile("a/y.jpg", []byte("hi")))

	want := strings.Join([]string{
		"          /",
		"            a/",
		"              b/",
		"       5        x.png",
		"       2      y.jpg",
		"",
	}, "\n")
	require.Equal(t, want, fs.String())
}

func TestMemFSOpenKeepsReplacedData(t *testing.T) {
	fs := NewMem()
	require.NoError(t, fs.WriteFile("f", []byte("old")))
	f, err := fs.Open("f")
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile("f", []byte("new contents")))
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "old", string(b))
	require.NoError(t, f.Close())

	b, err = ReadAll(fs, "f")
	require.NoError(t, err)
	require.Equal(t, "new contents", string(b))
}

func TestDefaultFS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	names, err := Default.List(dir)
	require.NoError(t, err)
	slices.Sort(names)
	require.Equal(t, []string{"a.txt", "sub"}, names)

	fi, err := Default.Stat(Default.PathJoin(dir, "sub"))
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	b, err := ReadAll(Default, Default.PathJoin(dir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))
	require.Equal(t, "a.txt", Default.PathBase(Default.PathJoin(dir, "a.txt")))

	_, err = Default.Open(Default.PathJoin(dir, "missing"))
	require.True(t, oserror.IsNotExist(err))
}
