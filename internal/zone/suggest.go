package zone

import "github.com/pedinu/api/internal/textfold"

// SuggestStatus is the outcome of Suggest.
type SuggestStatus int

const (
	Matched SuggestStatus = iota
	Ambiguous
	Unmatched
)

func (s SuggestStatus) String() string {
	switch s {
	case Matched:
		return "Matched"
	case Ambiguous:
		return "Ambiguous"
	case Unmatched:
		return "Unmatched"
	default:
		return "Unknown"
	}
}

// Suggestion holds the zone the customer most likely meant.
type Suggestion struct {
	Status     SuggestStatus
	Zone       *Zone  // when Matched
	Candidates []Zone // when Ambiguous
}

// Generic words that appear in many neighborhood names and say little about
// which one was meant.
var stopwords = map[string]bool{
	"bairro": true,
	"vila":   true,
	"jardim": true,
	"jd":     true,
	"parque": true,
	"de":     true,
	"da":     true,
	"do":     true,
	"dos":    true,
	"das":    true,
	"e":      true,
}

const (
	distinctiveWeight = 5
	genericWeight     = 1
)

// Suggest scores zones by token overlap with the typed text. The highest
// score wins; a tie between several zones is Ambiguous.
func Suggest(zones []Zone, text string) Suggestion {
	input := make(map[string]bool)
	for _, tok := range textfold.Tokens(text) {
		input[tok] = true
	}
	if len(input) == 0 {
		return Suggestion{Status: Unmatched}
	}

	type scoredZone struct {
		zone  Zone
		score int
	}

	var scored []scoredZone
	for _, z := range zones {
		score := 0
		for _, tok := range textfold.Tokens(z.NeighborhoodName) {
			if !input[tok] {
				continue
			}
			if stopwords[tok] {
				score += genericWeight
			} else {
				score += distinctiveWeight
			}
		}
		if score > 0 {
			scored = append(scored, scoredZone{zone: z, score: score})
		}
	}

	if len(scored) == 0 {
		return Suggestion{Status: Unmatched}
	}

	maxScore := 0
	for _, s := range scored {
		if s.score > maxScore {
			maxScore = s.score
		}
	}

	var top []Zone
	for _, s := range scored {
		if s.score == maxScore {
			top = append(top, s.zone)
		}
	}

	if len(top) == 1 {
		return Suggestion{Status: Matched, Zone: &top[0]}
	}
	return Suggestion{Status: Ambiguous, Candidates: top}
}
