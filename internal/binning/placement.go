package binning

import "platter/internal/catalog"

// chooseBinByCapacity maps a zero-based rank index to a logical bin by
// walking the ordered bin list and accumulating each bin's effective
// capacity. When the rank exceeds the total capacity, placement pins to the
// last bin instead of failing: overflow is reported, never blocking. The
// second return flags that overflow. A nil bin means the universe is empty.
func chooseBinByCapacity(zone *catalog.StorageZone, bins []*catalog.LogicalBin, rank int) (*catalog.LogicalBin, bool) {
	if len(bins) == 0 {
		return nil, false
	}

	remaining := rank
	for _, bin := range bins {
		capacity := bin.EffectiveCapacity(zone)
		if remaining < capacity {
			return bin, false
		}
		remaining -= capacity
	}

	return bins[len(bins)-1], true
}
