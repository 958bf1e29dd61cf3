package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// ScoreBar renders a rubric score as a bar followed by "score/max",
// e.g. [██████░░] 3/4.
func ScoreBar(score, max float64, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 0.0
	if max > 0 {
		pct = score / max
	}
	pct = min(max0(pct), 1)

	filled := int(pct*float64(width) + 0.5)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %s", ScoreStyle(score, max).Render(bar), formatScore(score, max))
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func formatScore(score, max float64) string {
	return fmt.Sprintf("%g/%g", score, max)
}
