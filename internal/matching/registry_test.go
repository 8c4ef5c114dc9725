package matching

import (
	"context"
	"testing"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/google/uuid"
)

func TestPatternMatcherExact(t *testing.T) {
	m := newPatternMatcher()
	owner := uuid.New()
	if err := m.add("deploy@corp.com", &owner, "Deploy"); err != nil {
		t.Fatalf("add: %v", err)
	}

	hit, ok := m.match("Deploy@CORP.com")
	if !ok {
		t.Fatal("expected case-insensitive exact match")
	}
	if hit.OwnerID == nil || *hit.OwnerID != owner {
		t.Error("expected owner on hit")
	}

	if _, ok := m.match("deploy2@corp.com"); ok {
		t.Error("exact pattern must not match other emails")
	}
}

func TestPatternMatcherGlobs(t *testing.T) {
	m := newPatternMatcher()
	if err := m.add("svc-*@corp.com", nil, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.add("bot?@corp.com", nil, ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	tests := []struct {
		email string
		want  bool
	}{
		{"svc-deploy@corp.com", true},
		{"svc-@corp.com", true},
		{"SVC-CI@corp.com", true},
		{"svc@corp.com", false},
		{"xsvc-deploy@corp.com", false},
		{"svc-deploy@corp.com.evil.example", false},
		{"bot1@corp.com", true},
		{"bot@corp.com", false},
		{"bot12@corp.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if _, got := m.match(tt.email); got != tt.want {
				t.Errorf("match(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestPatternMatcherRegexMetaQuoted(t *testing.T) {
	m := newPatternMatcher()
	if err := m.add("a+b*@corp.com", nil, ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, ok := m.match("a+bcd@corp.com"); !ok {
		t.Error("literal + must match itself")
	}
	if _, ok := m.match("aab@corp.com"); ok {
		t.Error("+ must not behave as a regex quantifier")
	}
}

func TestPatternMatcherExactBeforeGlob(t *testing.T) {
	globOwner := uuid.New()
	exactOwner := uuid.New()
	m := newPatternMatcher()
	if err := m.add("svc-*@corp.com", &globOwner, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.add("svc-payroll@corp.com", &exactOwner, ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	hit, ok := m.match("svc-payroll@corp.com")
	if !ok {
		t.Fatal("expected match")
	}
	if hit.OwnerID == nil || *hit.OwnerID != exactOwner {
		t.Error("exact pattern must win over an overlapping glob")
	}
}

type fakeRegistryStore struct {
	servicePatterns []*models.ServiceAccountPattern
	adminPatterns   []*models.AdminAccountPattern
	rules           []*models.LicenseTypeRule
	mappings        []*models.ExternalAccountMapping

	mappingVendorType models.VendorType
}

func (s *fakeRegistryStore) ListServiceAccountPatterns(ctx context.Context) ([]*models.ServiceAccountPattern, error) {
	return s.servicePatterns, nil
}

func (s *fakeRegistryStore) ListAdminAccountPatterns(ctx context.Context) ([]*models.AdminAccountPattern, error) {
	return s.adminPatterns, nil
}

func (s *fakeRegistryStore) ListLicenseTypeRules(ctx context.Context) ([]*models.LicenseTypeRule, error) {
	return s.rules, nil
}

func (s *fakeRegistryStore) ListExternalAccountMappings(ctx context.Context, vendorType models.VendorType) ([]*models.ExternalAccountMapping, error) {
	s.mappingVendorType = vendorType
	return s.mappings, nil
}

func TestLoadRegistry(t *testing.T) {
	employee := uuid.New()
	store := &fakeRegistryStore{
		servicePatterns: []*models.ServiceAccountPattern{
			models.NewServiceAccountPattern("svc-*@corp.com", nil, "Bots"),
		},
		adminPatterns: []*models.AdminAccountPattern{
			models.NewAdminAccountPattern("root@corp.com", nil, ""),
		},
		rules: []*models.LicenseTypeRule{
			models.NewLicenseTypeRule("Service Seat", nil),
		},
		mappings: []*models.ExternalAccountMapping{
			models.NewExternalAccountMapping(models.VendorTypeGitHub, "octocat", employee),
		},
	}

	reg, err := LoadRegistry(context.Background(), store, models.VendorTypeGitHub)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if store.mappingVendorType != models.VendorTypeGitHub {
		t.Error("external mappings must be scoped to the vendor type")
	}
	if _, ok := reg.ServiceAccount("svc-ci@corp.com"); !ok {
		t.Error("expected service pattern loaded")
	}
	if _, ok := reg.AdminAccount("root@corp.com"); !ok {
		t.Error("expected admin pattern loaded")
	}
	if _, ok := reg.LicenseTypeRule("service seat"); !ok {
		t.Error("expected license type rule loaded, case-insensitive")
	}
	if id, ok := reg.ExternalAccount("Octocat"); !ok || id != employee {
		t.Error("expected external account link loaded, case-insensitive")
	}
}

func TestLoadRegistryBadPattern(t *testing.T) {
	store := &fakeRegistryStore{
		servicePatterns: []*models.ServiceAccountPattern{
			models.NewServiceAccountPattern("svc-*@corp.com", nil, ""),
		},
	}
	if _, err := LoadRegistry(context.Background(), store, models.VendorTypeSlack); err != nil {
		t.Fatalf("valid patterns must load: %v", err)
	}
}
