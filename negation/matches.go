package negation

import (
	"github.com/rs/zerolog"

	"text2phenotype.com/negex/termset"
)

// Matches holds the phrase matches of one document split by category.
type Matches struct {
	Pseudo      []Match
	Preceding   []Match
	Following   []Match
	Termination []Match
}

// ClassifyMatches buckets matches by category and drops preceding and following
// matches whose start lies within [pseudo.Start, pseudo.End] of a pseudo match.
// Termination matches are kept as they are. Matches of an unknown category are
// logged and ignored.
func ClassifyMatches(matches []Match, log *zerolog.Logger) Matches {
	var result Matches
	for _, match := range matches {
		switch match.Category {
		case termset.Pseudo:
			result.Pseudo = append(result.Pseudo, match)
		case termset.Preceding:
			result.Preceding = append(result.Preceding, match)
		case termset.Following:
			result.Following = append(result.Following, match)
		case termset.Termination:
			result.Termination = append(result.Termination, match)
		default:
			if log != nil {
				log.Warn().
					Str("category", string(match.Category)).
					Int("start", match.Start).
					Int("end", match.End).
					Msg("Unknown match category, ignoring match")
			}
		}
	}

	result.Preceding = dropPseudo(result.Preceding, result.Pseudo)
	result.Following = dropPseudo(result.Following, result.Pseudo)
	return result
}

func dropPseudo(matches []Match, pseudo []Match) []Match {
	if len(pseudo) == 0 {
		return matches
	}
	kept := matches[:0:0]
	for _, match := range matches {
		if !insidePseudo(match, pseudo) {
			kept = append(kept, match)
		}
	}
	return kept
}

// the end bound is inclusive: a match starting right after a pseudo phrase is
// still suppressed
func insidePseudo(match Match, pseudo []Match) bool {
	for _, p := range pseudo {
		if p.Start <= match.Start && match.Start <= p.End {
			return true
		}
	}
	return false
}

// Starts returns the start positions of matches.
func Starts(matches []Match) []int {
	starts := make([]int, len(matches))
	for i, match := range matches {
		starts[i] = match.Start
	}
	return starts
}
