package negation

import "sort"

// Boundary is a scope over tokens [Start, End).
type Boundary struct {
	Start int
	End   int
}

// TerminationBoundaries tiles [0, length) using sentence starts and termination
// starts as cut points. Positions outside (0, length) are ignored.
func TerminationBoundaries(sentenceStarts []int, terminationStarts []int, length int) []Boundary {
	if length <= 0 {
		return []Boundary{}
	}

	cuts := make([]int, 0, len(sentenceStarts)+len(terminationStarts)+1)
	for _, positions := range [][]int{sentenceStarts, terminationStarts} {
		for _, pos := range positions {
			if pos > 0 && pos < length {
				cuts = append(cuts, pos)
			}
		}
	}
	cuts = append(cuts, length)
	sort.Ints(cuts)

	boundaries := make([]Boundary, 0, len(cuts))
	prev := 0
	for _, cut := range cuts {
		if cut == prev {
			continue
		}
		boundaries = append(boundaries, Boundary{Start: prev, End: cut})
		prev = cut
	}
	return boundaries
}
