package naming

// maxSuggestDistance bounds how far a candidate may be from a name to be suggested.
const maxSuggestDistance = 3

// Distance returns the edit distance between a and b: the fewest single
// rune insertions, deletions and substitutions turning one into the other.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	// Two rows over the shorter string.
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// Suggest returns the candidate closest to name after normalisation, or ""
// when none is close enough. Ties keep the earlier candidate.
func Suggest(name string, candidates []string) string {
	key := Key(name)
	limit := min(maxSuggestDistance, len([]rune(key))/2)

	best, bestDistance := "", limit+1

	for _, cand := range candidates {
		if cand == name {
			continue
		}

		if d := Distance(key, Key(cand)); d < bestDistance {
			best, bestDistance = cand, d
		}
	}

	return best
}
