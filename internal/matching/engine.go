package matching

import (
	"strings"

	"github.com/Kiefer-Networks/licence-manager/internal/directory"
	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/Kiefer-Networks/licence-manager/internal/providers"
	"github.com/google/uuid"
)

// Fixed confidences per strategy. Ties across strategies never arise:
// the first strategy that succeeds wins regardless of score.
const (
	confidenceExternalAccount = 1.0
	confidenceExactEmail      = 1.0
	confidenceLocalPart       = 0.7
)

// Config carries the explicit configuration Classify needs. Passing it in
// keeps the engine a pure function; nothing is read from ambient state.
type Config struct {
	// CompanyDomains are the organization's email domains. A record email
	// outside these (exact or sub-domain match) is flagged external.
	// Empty disables the external check.
	CompanyDomains []string

	// FuzzyMinScore is the minimum fuzzy-name score for a suggestion.
	FuzzyMinScore float64
}

// DefaultConfig returns a Config with the standard fuzzy threshold.
func DefaultConfig(companyDomains []string) Config {
	return Config{
		CompanyDomains: companyDomains,
		FuzzyMinScore:  FuzzyMinScore,
	}
}

// Classification is the decision for one raw record: either a service or
// admin account attribution (identity matching skipped), or an employee
// assignment/suggestion, or a request for human review.
type Classification struct {
	EmployeeID          *uuid.UUID
	SuggestedEmployeeID *uuid.UUID
	MatchConfidence     float64
	MatchStatus         models.MatchStatus
	MatchMethod         models.MatchMethod

	IsServiceAccount      bool
	ServiceAccountOwnerID *uuid.UUID
	IsAdminAccount        bool
	AdminAccountOwnerID   *uuid.UUID
	IsExternalEmail       bool
}

// ServiceOrAdmin reports whether the record was classified as a non-human
// or administrative account. Those records skip identity matching and
// their match status is left untouched.
func (c Classification) ServiceOrAdmin() bool {
	return c.IsServiceAccount || c.IsAdminAccount
}

// Classify decides which employee (if any) a raw seat record belongs to.
// Pure function over the record plus the run's read-only snapshots.
// Strategies run in fixed priority order; the first that succeeds wins and
// later ones are never consulted.
func Classify(record providers.RawRecord, dir *directory.Snapshot, reg *Registry, cfg Config) Classification {
	var result Classification

	email := record.EffectiveEmail()

	// Service/admin account checks short-circuit identity matching.
	if email != "" {
		if hit, ok := reg.ServiceAccount(email); ok {
			result.IsServiceAccount = true
			result.ServiceAccountOwnerID = hit.OwnerID
		}
		if hit, ok := reg.AdminAccount(email); ok {
			result.IsAdminAccount = true
			result.AdminAccountOwnerID = hit.OwnerID
		}
	}
	if record.LicenseType != "" {
		if rule, ok := reg.LicenseTypeRule(record.LicenseType); ok {
			result.IsServiceAccount = true
			if result.ServiceAccountOwnerID == nil {
				result.ServiceAccountOwnerID = rule.OwnerID
			}
		}
	}
	if result.ServiceOrAdmin() {
		return result
	}

	matched := classifyIdentity(record, email, dir, reg, cfg, &result)

	// Domain check is independent of which strategy ran: a non-company
	// email flags the seat, and an unmatched external seat is a guest
	// rather than a review candidate.
	if email != "" && !companyDomain(email, cfg.CompanyDomains) {
		result.IsExternalEmail = true
		if !matched {
			result.MatchStatus = models.MatchStatusExternalGuest
			result.SuggestedEmployeeID = nil
		}
	}

	return result
}

// classifyIdentity runs strategies 2-5 in priority order. Returns true
// when a match or suggestion was produced.
func classifyIdentity(record providers.RawRecord, email string, dir *directory.Snapshot, reg *Registry, cfg Config, result *Classification) bool {
	// External account map: manual links for vendors without emails.
	if employeeID, ok := reg.ExternalAccount(record.ExternalID); ok {
		result.EmployeeID = &employeeID
		result.MatchConfidence = confidenceExternalAccount
		result.MatchStatus = models.MatchStatusAutoMatched
		result.MatchMethod = models.MatchMethodExternalAccount
		return true
	}

	if email != "" {
		// Exact email.
		if employee, ok := dir.ByEmail(email); ok {
			result.EmployeeID = &employee.ID
			result.MatchConfidence = confidenceExactEmail
			result.MatchStatus = models.MatchStatusAutoMatched
			result.MatchMethod = models.MatchMethodExactEmail
			return true
		}

		// Local part.
		candidates := dir.ByLocalPart(directory.LocalPart(email))
		switch len(candidates) {
		case 0:
			// fall through to the no-match default below
		case 1:
			result.SuggestedEmployeeID = &candidates[0].ID
			result.MatchConfidence = confidenceLocalPart
			result.MatchStatus = models.MatchStatusSuggested
			result.MatchMethod = models.MatchMethodLocalPart
			return true
		default:
			// Ambiguous local part: more than one employee shares it, so
			// no suggestion is safe.
			result.MatchStatus = models.MatchStatusExternalReview
			return false
		}

		result.MatchStatus = models.MatchStatusExternalReview
		return false
	}

	// No usable email: fuzzy name match against active employees.
	minScore := cfg.FuzzyMinScore
	if minScore <= 0 {
		minScore = FuzzyMinScore
	}
	if record.DisplayName != "" {
		candidates := RankNameCandidates(record.DisplayName, dir.Active(), minScore)
		if len(candidates) > 0 {
			best := candidates[0]
			result.SuggestedEmployeeID = &best.Employee.ID
			result.MatchConfidence = best.Score
			result.MatchStatus = models.MatchStatusSuggested
			result.MatchMethod = models.MatchMethodFuzzyName
			return true
		}
	}

	result.MatchStatus = models.MatchStatusExternalReview
	return false
}

// companyDomain reports whether an email's domain is one of the configured
// company domains or a sub-domain of one. No configured domains means
// every email counts as internal.
func companyDomain(email string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	domain := directory.Domain(email)
	if domain == "" {
		return true
	}
	for _, d := range domains {
		folded := directory.Fold(d)
		if domain == folded || strings.HasSuffix(domain, "."+folded) {
			return true
		}
	}
	return false
}
