//go:build strict

package nav

const strictRanges = true
