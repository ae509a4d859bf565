package pipeline

import (
	"strings"

	"recyvoice/internal/util"
)

// similarity scores two normalized names on a 0-100 scale. Identical strings
// score 100. Containment scores by the length ratio of the shorter to the
// longer string with staged floors, so "plastic bottle" against "plastic
// bottles" lands near the top while a short fragment inside a long name
// bottoms out at 65. Everything else blends word overlap with character
// positional agreement. The constants are empirical; they travel with the
// acceptance threshold of 65 and must move together.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containmentScore(a, b)
	}

	word := wordOverlapScore(a, b)
	char := charAgreementScore(a, b)
	return 0.65*word + 0.35*char
}

func containmentScore(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	ratio := float64(shorter) / float64(longer)
	score := 100 * ratio
	switch {
	case ratio >= 0.75:
		if score < 88 {
			score = 88
		}
	case ratio >= 0.5:
		if score < 75 {
			score = 75
		}
	default:
		score = 65
	}
	return score
}

// wordOverlapScore counts shared words, with a small bonus for shared words
// sitting at corresponding positions.
func wordOverlapScore(a, b string) float64 {
	aw := util.Tokenize(a)
	bw := util.Tokenize(b)
	if len(aw) == 0 || len(bw) == 0 {
		return 0
	}

	positions := map[string]int{}
	for i, w := range bw {
		if _, seen := positions[w]; !seen {
			positions[w] = i
		}
	}

	overlap := 0
	bonus := 0.0
	for i, w := range aw {
		j, ok := positions[w]
		if !ok {
			continue
		}
		overlap++
		if abs(i-j) <= 1 {
			bonus += 4
		}
	}
	if overlap == 0 {
		return 0
	}

	longest := len(aw)
	if len(bw) > longest {
		longest = len(bw)
	}
	score := 100*float64(overlap)/float64(longest) + bonus
	if score > 100 {
		score = 100
	}
	return score
}

// charAgreementScore counts characters matching at the same index,
// normalized by the longer string's length.
func charAgreementScore(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	shortest := len(ar)
	longest := len(br)
	if shortest > longest {
		shortest, longest = longest, shortest
	}
	if longest == 0 {
		return 0
	}

	matches := 0
	for i := 0; i < shortest; i++ {
		if ar[i] == br[i] {
			matches++
		}
	}
	return 100 * float64(matches) / float64(longest)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
