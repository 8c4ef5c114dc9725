package matching

import (
	"sort"
	"strings"

	"github.com/Kiefer-Networks/licence-manager/internal/directory"
	"github.com/Kiefer-Networks/licence-manager/internal/models"
)

const (
	// fuzzyWordWeight and fuzzyPartialWeight split the fuzzy score between
	// whole-word overlap and partial substring containment.
	fuzzyWordWeight    = 0.7
	fuzzyPartialWeight = 0.3

	// FuzzyMinScore is the minimum fuzzy score for a name match to become
	// a suggestion.
	FuzzyMinScore = 0.3
)

// nameTokens splits a display name into case-folded word tokens.
func nameTokens(name string) []string {
	folded := directory.Fold(name)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
}

// NameScore scores the similarity of two display names in [0, 1]:
// word-set Jaccard overlap weighted at 0.7 plus substring-containment
// partial-word scoring weighted at 0.3.
func NameScore(a, b string) float64 {
	tokensA := nameTokens(a)
	tokensB := nameTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	jaccard := float64(intersection) / float64(union)

	return fuzzyWordWeight*jaccard + fuzzyPartialWeight*partialScore(setA, setB)
}

// partialScore measures how many tokens of either name appear as a
// substring of some token of the other, normalized by the larger set.
func partialScore(setA, setB map[string]struct{}) float64 {
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}

	matched := 0
	for t := range setA {
		if containsToken(setB, t) {
			matched++
		}
	}
	for t := range setB {
		if containsToken(setA, t) {
			matched++
		}
	}
	return float64(matched) / float64(2*larger)
}

func containsToken(set map[string]struct{}, token string) bool {
	for t := range set {
		if strings.Contains(t, token) || strings.Contains(token, t) {
			return true
		}
	}
	return false
}

// NameCandidate is one fuzzy-match candidate above the score threshold.
type NameCandidate struct {
	Employee *models.Employee
	Score    float64
}

// RankNameCandidates scores a display name against every given employee
// and returns candidates above minScore, best first. Ties are broken
// deterministically by employee ID so repeated runs pick the same winner.
func RankNameCandidates(displayName string, employees []*models.Employee, minScore float64) []NameCandidate {
	var candidates []NameCandidate
	for _, e := range employees {
		score := NameScore(displayName, e.DisplayName)
		if score > minScore {
			candidates = append(candidates, NameCandidate{Employee: e, Score: score})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Employee.ID.String() < candidates[j].Employee.ID.String()
	})
	return candidates
}
