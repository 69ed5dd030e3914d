package alpha

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/repnotes/internal/models"
)

// Text renders the working sets of a session as workout text. Consecutive
// sets with the same reps and load share one line, up to
// models.MaxSetsPerLine per line, and every set is marked
// done. Bodyweight sets without added load are written without a weight.
// Exercises with no working sets are left out.
func Text(s Session) string {
	var blocks []string
	for _, ex := range s.Exercises {
		lines := setLines(ex.Working())
		if len(lines) == 0 {
			continue
		}
		blocks = append(blocks, "- "+ex.Name+"\n"+strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func setLines(sets []Set) []string {
	var lines []string
	for i := 0; i < len(sets); {
		j := i + 1
		for j < len(sets) && j-i < models.MaxSetsPerLine &&
			sets[j].Reps == sets[i].Reps && sets[j].Weight == sets[i].Weight {
			j++
		}
		n := j - i
		line := fmt.Sprintf("%dx%d", n, sets[i].Reps)
		if sets[i].Weight > 0 {
			line += "x" + strconv.FormatFloat(sets[i].Weight, 'f', -1, 64) + "kg"
		}
		lines = append(lines, line+" "+strings.Repeat("+", n))
		i = j
	}
	return lines
}
