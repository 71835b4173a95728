package search

import (
	"sort"
	"time"
)

// sortResults reorders results in place by the given key. Missing
// timestamps sort last regardless of direction, matching the reference
// design's "timestamp keys place missing timestamps last" rule: a nil
// timestamp is never treated as "smaller" or "larger" than a present one in
// a direction-flippable sense, it is simply pushed to the tail.
func sortResults(results []SearchResult, by SortBy, dir SortDirection) {
	cmp := func(i, j int) int {
		switch by {
		case SortByModified:
			return compareTime(results[i].Modified, results[j].Modified)
		case SortByAccessed:
			return compareTime(results[i].Accessed, results[j].Accessed)
		case SortByCreated:
			return compareTime(results[i].Created, results[j].Created)
		default: // SortByPath
			return compareString(results[i].File, results[j].File)
		}
	}

	less := func(i, j int) bool {
		c := cmp(i, j)
		if c == 0 {
			return false
		}
		if dir == SortDescending {
			// Missing-last must hold in both directions: if j's key is
			// missing, i (present) sorts first regardless of dir.
			if isMissing(results, by, j) {
				return true
			}
			if isMissing(results, by, i) {
				return false
			}
			return c > 0
		}
		return c < 0
	}
	sort.SliceStable(results, less)
}

func isMissing(results []SearchResult, by SortBy, idx int) bool {
	switch by {
	case SortByModified:
		return results[idx].Modified == nil
	case SortByAccessed:
		return results[idx].Accessed == nil
	case SortByCreated:
		return results[idx].Created == nil
	default:
		return false
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareTime orders a before b, with a nil timestamp always comparing as
// "after" any present timestamp, and two nils comparing equal.
func compareTime(a, b *time.Time) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	switch {
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}
