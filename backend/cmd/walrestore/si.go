package main

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrSiOverflow = errors.New("size overflows uint64")

var siMap = map[string]uint64{
	"k": 1 << 10,
	"m": 1 << 20,
	"g": 1 << 30,
}

// `parseUint64Si()` parses sizes like `16m`.  The suffixes are binary SI.
func parseUint64Si(s string) (uint64, error) {
	s = strings.ToLower(s)

	m := uint64(1)
	for suf, mult := range siMap {
		if strings.HasSuffix(s, suf) {
			m = mult
			s = s[0 : len(s)-len(suf)]
			break
		}
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint64/m {
		return 0, ErrSiOverflow
	}
	return v * m, nil
}
