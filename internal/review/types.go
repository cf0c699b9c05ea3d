// Package review produces the periodic phase review: a learning-path
// summary generated every few answers from the learner's mistakes.
package review

// Review is the structured phase review returned alongside a submit.
type Review struct {
	Gap          string  `json:"gap"`
	MermaidGraph string  `json:"mermaid_graph"`
	PathType     string  `json:"path_type"`
	Content      Content `json:"content"`
	// Count is the number of answers the review was generated after.
	Count int `json:"count"`
}

// Content is the teaching material of a review.
type Content struct {
	VideoScript              string   `json:"video_script"`
	Practices                []string `json:"practices"`
	CoreConceptClarification string   `json:"core_concept_clarification"`
	MethodologySummary       string   `json:"methodology_summary"`
	ExtensionQ               string   `json:"extension_q"`
	ApplicationCase          string   `json:"application_case"`
}

// Path types by average score.
const (
	PathStruggling = "Struggling Student"
	PathAverage    = "Average Student"
	PathTop        = "Top Student"
)

// PathTypeFor classifies a learner by average score.
func PathTypeFor(avg int) string {
	switch {
	case avg < 300:
		return PathStruggling
	case avg < 700:
		return PathAverage
	default:
		return PathTop
	}
}
