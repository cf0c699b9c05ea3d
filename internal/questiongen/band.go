package questiongen

// Band is the prompt level chosen from a mastery score.
type Band struct {
	Stage         string
	MinDifficulty int
	MaxDifficulty int
}

var (
	BandBasic    = Band{Stage: "Basic Introduction", MinDifficulty: 1, MaxDifficulty: 2}
	BandAdvanced = Band{Stage: "Advanced Improvement", MinDifficulty: 3, MaxDifficulty: 4}
	BandMastery  = Band{Stage: "Mastery Challenge", MinDifficulty: 5, MaxDifficulty: 5}
)

// BandFor maps a score in [0, 1000] to its band.
func BandFor(score int) Band {
	switch {
	case score < 300:
		return BandBasic
	case score < 700:
		return BandAdvanced
	default:
		return BandMastery
	}
}
