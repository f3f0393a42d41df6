package binning

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"platter/internal/catalog"
)

// ranking is the single source of truth for item order within a scope. Both
// single-item assignment and full-scope rebin sort through it; anything else
// would let the two paths disagree on an item's rank.
//
// The canonical key is (artist sort name, title, item id) ascending. Names
// collate case-insensitively the way humans file records; the persistent id
// breaks ties so the order is total.

func newRankCollator() *collate.Collator {
	return collate.New(language.Und, collate.Loose)
}

// SortItems sorts items into canonical rank order in place.
func SortItems(items []*catalog.MediaItem) {
	coll := newRankCollator()
	sort.SliceStable(items, func(i, j int) bool {
		return rankLess(coll, items[i], items[j])
	})
}

// RankIndex returns the zero-based rank the target item holds within the
// scope's item list, inserting it in sorted position when it is not yet a
// member (a genuinely new item, or one whose classification change has not
// been reloaded). The second return is the possibly extended list.
func RankIndex(items []*catalog.MediaItem, target *catalog.MediaItem) (int, []*catalog.MediaItem) {
	for i, item := range items {
		if item.ID == target.ID {
			return i, items
		}
	}
	items = append(items, target)
	SortItems(items)
	for i, item := range items {
		if item.ID == target.ID {
			return i, items
		}
	}
	return len(items) - 1, items
}

func rankLess(coll *collate.Collator, a, b *catalog.MediaItem) bool {
	if c := coll.CompareString(a.ArtistSortName, b.ArtistSortName); c != 0 {
		return c < 0
	}
	if c := coll.CompareString(a.Title, b.Title); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}
