package indexer

import "fmt"

// BlockRange is an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// SplitRange splits [from, to] into contiguous chunks no larger than maxSpan
// blocks. Boundaries are deterministic: identical inputs always produce
// identical chunks.
func SplitRange(from, to, maxSpan uint64) ([]BlockRange, error) {
	if maxSpan == 0 {
		return nil, fmt.Errorf("max span must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0, (to-from)/maxSpan+1)
	start := from
	for start <= to {
		end := to
		if remaining := to - start + 1; remaining > maxSpan {
			end = start + maxSpan - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}
