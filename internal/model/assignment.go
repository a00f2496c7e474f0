package model

// Confidence classifies how an assignment was decided.
type Confidence string

const (
	// ConfidenceExact comes from an unambiguous file name pattern or an explicit binding.
	ConfidenceExact Confidence = "exact"

	// ConfidenceHeuristic comes from tag similarity or token overlap scoring.
	ConfidenceHeuristic Confidence = "heuristic"

	// ConfidenceForced comes from a single-file/single-record fallback.
	ConfidenceForced Confidence = "forced"
)

// Assignment pairs one candidate file with one resolved record.
type Assignment struct {
	File       *CandidateFile
	Record     Record
	Confidence Confidence

	// Stage names the matching step that produced the assignment.
	Stage string

	// Score is the stage-specific score, zero when not applicable.
	Score float64

	// CacheHit marks a file reused from a previous run.
	CacheHit bool
}
