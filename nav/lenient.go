//go:build !strict

package nav

const strictRanges = false
