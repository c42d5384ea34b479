// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"errors"
	"strconv"
	"strings"
)

// IntPrefixDefault parses the leading base-10 integer of s, after trimming
// surrounding whitespace, ignoring anything that follows it. It returns def
// when s has no leading integer. Values past the int range saturate.
//
//	utils.IntPrefixDefault("42", 0)    // 42
//	utils.IntPrefixDefault("12abc", 0) // 12
//	utils.IntPrefixDefault("5.9", 0)   // 5
//	utils.IntPrefixDefault("x", 7)     // 7
func IntPrefixDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}
	n, err := strconv.ParseInt(s[:end], 10, strconv.IntSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	return int(n)
}
