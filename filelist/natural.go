// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package filelist

// naturalCompare orders a and b the way a person would: case is ignored and
// runs of decimal digits compare by numeric value, so "img2" sorts before
// "img10". Runs with the same value but more leading zeros sort after the
// shorter run. Strings that are equal under these rules fall back to byte-wise
// comparison so that the order is total.
func naturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ei, ej := digitRunEnd(a, i), digitRunEnd(b, j)
			if c := compareDigitRuns(a[i:ei], b[j:ej]); c != 0 {
				return c
			}
			i, j = ei, ej
			continue
		}
		if la, lb := lower(ca), lower(cb); la != lb {
			if la < lb {
				return -1
			}
			return +1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return +1
	case a < b:
		return -1
	case a > b:
		return +1
	}
	return 0
}

func compareDigitRuns(a, b string) int {
	ta, tb := trimZeros(a), trimZeros(b)
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return +1
	case ta < tb:
		return -1
	case ta > tb:
		return +1
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return +1
	}
	return 0
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

func digitRunEnd(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
