package merge

// ResolveName picks the lake name from the names carried by the consumed
// fragments: the most frequently occurring non-empty string wins, ties go
// to the lexicographically smallest so the result never depends on
// iteration order. When every fragment name is empty the survey layer's
// basin name is used; that too may be empty, and downstream consumers must
// handle a missing name.
func ResolveName(names []string, fallback string) string {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		counts[n]++
	}

	best := ""
	bestCount := 0
	for n, c := range counts {
		if c > bestCount || (c == bestCount && n < best) {
			best = n
			bestCount = c
		}
	}

	if best == "" {
		return fallback
	}
	return best
}
