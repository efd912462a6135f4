// Package levenshtein computes edit distances for typo suggestions.
package levenshtein

// Distance returns the Levenshtein edit distance between a and b,
// counted in runes. It keeps a single row of the DP table.
func Distance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) < len(br) {
		ar, br = br, ar
	}
	if len(br) == 0 {
		return len(ar)
	}

	row := make([]int, len(br)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		diag := row[0] // row[i-1][j-1]
		row[0] = i
		for j := 1; j <= len(br); j++ {
			above := row[j]
			if ar[i-1] == br[j-1] {
				row[j] = diag
			} else {
				row[j] = 1 + min(diag, above, row[j-1])
			}
			diag = above
		}
	}
	return row[len(br)]
}
