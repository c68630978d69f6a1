package utils

import (
	"slices"
	"strings"
)

// CompareIDs orders record ids. Two all-digit ids compare numerically
// ("9" < "10"); any other pair compares lexicographically.
func CompareIDs(a, b string) int {
	if isDigits(a) && isDigits(b) {
		a = strings.TrimLeft(a, "0")
		b = strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a, b)
}

// SortIDs sorts ids in place in CompareIDs order.
func SortIDs(ids []string) {
	slices.SortFunc(ids, CompareIDs)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
