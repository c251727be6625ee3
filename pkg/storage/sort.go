package storage

import (
	"slices"
	"strings"
)

// SortNewestFirst orders objects by LastModified descending, then by key.
func SortNewestFirst(objects []Object) {
	slices.SortFunc(objects, func(a, b Object) int {
		if c := b.LastModified.Compare(a.LastModified); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
}
