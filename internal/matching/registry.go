// Package matching implements the license identity-matching engine:
// service/admin account detection, external account links, email and fuzzy
// name matching, and external-domain classification.
package matching

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Kiefer-Networks/licence-manager/internal/directory"
	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/google/uuid"
)

// PatternHit is the result of matching an email against a pattern registry.
type PatternHit struct {
	Pattern     string
	OwnerID     *uuid.UUID
	DisplayName string
}

type globPattern struct {
	raw string
	re  *regexp.Regexp
	hit PatternHit
}

// patternMatcher holds one registry's patterns with exact entries in a
// case-folded lookup table and wildcard entries precompiled to regexps.
// Exact patterns are always checked before globs so a precise pattern wins
// over an accidental wildcard overlap.
type patternMatcher struct {
	exact map[string]PatternHit
	globs []globPattern
}

func newPatternMatcher() *patternMatcher {
	return &patternMatcher{exact: make(map[string]PatternHit)}
}

func (m *patternMatcher) add(pattern string, ownerID *uuid.UUID, displayName string) error {
	folded := directory.Fold(pattern)
	hit := PatternHit{Pattern: pattern, OwnerID: ownerID, DisplayName: displayName}

	if !strings.ContainsAny(folded, "*?") {
		m.exact[folded] = hit
		return nil
	}

	re, err := globToRegexp(folded)
	if err != nil {
		return fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	m.globs = append(m.globs, globPattern{raw: pattern, re: re, hit: hit})
	return nil
}

func (m *patternMatcher) match(email string) (PatternHit, bool) {
	folded := directory.Fold(email)
	if folded == "" {
		return PatternHit{}, false
	}
	if hit, ok := m.exact[folded]; ok {
		return hit, true
	}
	for _, g := range m.globs {
		if g.re.MatchString(folded) {
			return g.hit, true
		}
	}
	return PatternHit{}, false
}

// globToRegexp compiles a glob (* and ? wildcards) into an anchored regexp.
// Input is already case-folded, so no case-insensitive flag is needed.
func globToRegexp(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, c := range glob {
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// RegistryStore is the subset of the database used to load a Registry.
type RegistryStore interface {
	ListServiceAccountPatterns(ctx context.Context) ([]*models.ServiceAccountPattern, error)
	ListAdminAccountPatterns(ctx context.Context) ([]*models.AdminAccountPattern, error)
	ListLicenseTypeRules(ctx context.Context) ([]*models.LicenseTypeRule, error)
	ListExternalAccountMappings(ctx context.Context, vendorType models.VendorType) ([]*models.ExternalAccountMapping, error)
}

// Registry is the read-only rule state for one reconciliation run: the
// three pattern registries plus the external identity map for the vendor
// type being reconciled. Built once per run; safe for concurrent reads.
type Registry struct {
	service          *patternMatcher
	admin            *patternMatcher
	licenseTypeRules map[string]*models.LicenseTypeRule
	external         map[string]uuid.UUID
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		service:          newPatternMatcher(),
		admin:            newPatternMatcher(),
		licenseTypeRules: make(map[string]*models.LicenseTypeRule),
		external:         make(map[string]uuid.UUID),
	}
}

// AddServiceAccountPattern registers a service-account email pattern.
func (r *Registry) AddServiceAccountPattern(pattern string, ownerID *uuid.UUID, displayName string) error {
	return r.service.add(pattern, ownerID, displayName)
}

// AddAdminAccountPattern registers an admin-account email pattern.
func (r *Registry) AddAdminAccountPattern(pattern string, ownerID *uuid.UUID, displayName string) error {
	return r.admin.add(pattern, ownerID, displayName)
}

// AddLicenseTypeRule registers an exact license-type service-account rule.
func (r *Registry) AddLicenseTypeRule(rule *models.LicenseTypeRule) {
	r.licenseTypeRules[directory.Fold(rule.LicenseType)] = rule
}

// AddExternalAccount registers a vendor-username to employee link.
func (r *Registry) AddExternalAccount(externalUsername string, employeeID uuid.UUID) {
	r.external[directory.Fold(externalUsername)] = employeeID
}

// ServiceAccount matches an email against the service-account patterns.
func (r *Registry) ServiceAccount(email string) (PatternHit, bool) {
	return r.service.match(email)
}

// AdminAccount matches an email against the admin-account patterns.
func (r *Registry) AdminAccount(email string) (PatternHit, bool) {
	return r.admin.match(email)
}

// LicenseTypeRule returns the rule for an exact license-type string.
func (r *Registry) LicenseTypeRule(licenseType string) (*models.LicenseTypeRule, bool) {
	rule, ok := r.licenseTypeRules[directory.Fold(licenseType)]
	return rule, ok
}

// ExternalAccount returns the linked employee for a vendor username.
func (r *Registry) ExternalAccount(externalUsername string) (uuid.UUID, bool) {
	id, ok := r.external[directory.Fold(externalUsername)]
	return id, ok
}

// LoadRegistry batch-loads all rule state for one vendor type. One load
// per run keeps classification free of per-record database round-trips.
func LoadRegistry(ctx context.Context, store RegistryStore, vendorType models.VendorType) (*Registry, error) {
	r := NewRegistry()

	servicePatterns, err := store.ListServiceAccountPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load service account patterns: %w", err)
	}
	for _, p := range servicePatterns {
		if err := r.AddServiceAccountPattern(p.Pattern, p.OwnerID, p.DisplayName); err != nil {
			return nil, err
		}
	}

	adminPatterns, err := store.ListAdminAccountPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load admin account patterns: %w", err)
	}
	for _, p := range adminPatterns {
		if err := r.AddAdminAccountPattern(p.Pattern, p.OwnerID, p.DisplayName); err != nil {
			return nil, err
		}
	}

	rules, err := store.ListLicenseTypeRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load license type rules: %w", err)
	}
	for _, rule := range rules {
		r.AddLicenseTypeRule(rule)
	}

	mappings, err := store.ListExternalAccountMappings(ctx, vendorType)
	if err != nil {
		return nil, fmt.Errorf("load external account mappings: %w", err)
	}
	for _, m := range mappings {
		r.AddExternalAccount(m.ExternalUsername, m.EmployeeID)
	}

	return r, nil
}
