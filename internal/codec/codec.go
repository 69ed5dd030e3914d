package codec

import "github.com/claude/repnotes/internal/models"

// Result is a decoded workout: exercises and the progress derived from the
// same text.
type Result struct {
	Exercises []models.Exercise `json:"exercises"`
	Progress  models.Progress   `json:"progress"`
}

// Decode parses text with a default Builder. See Builder.Decode.
func Decode(text string, existing []models.Exercise) Result {
	return NewBuilder().Decode(text, existing)
}

// Decode parses text, builds exercises (keeping identity from existing by
// position) and reconciles progress.
func (b *Builder) Decode(text string, existing []models.Exercise) Result {
	pw := Parse(text)
	exercises := b.Build(pw, existing)
	return Result{
		Exercises: exercises,
		Progress:  Reconcile(pw, exercises),
	}
}

// Encode is the inverse of Decode.
func Encode(r Result) string {
	return Generate(r.Exercises, r.Progress)
}
