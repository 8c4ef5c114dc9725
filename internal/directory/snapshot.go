// Package directory provides a read-only, in-memory snapshot of the
// employee directory for one reconciliation run. Loading once up front
// keeps classification free of per-record database lookups.
package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Fold case-folds and trims an email or username for lookup keys.
func Fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// LocalPart returns the part of an email before the @, case-folded.
// Returns the folded input unchanged when there is no @.
func LocalPart(email string) string {
	folded := Fold(email)
	if at := strings.Index(folded, "@"); at >= 0 {
		return folded[:at]
	}
	return folded
}

// Domain returns the part of an email after the @, case-folded, or "" when
// there is no @.
func Domain(email string) string {
	folded := Fold(email)
	if at := strings.Index(folded, "@"); at >= 0 {
		return folded[at+1:]
	}
	return ""
}

// Store is the subset of the database used to load a snapshot.
type Store interface {
	ListEmployees(ctx context.Context) ([]*models.Employee, error)
}

// Snapshot is an immutable index of the employee directory. Safe for
// concurrent reads; built once per reconciliation run.
type Snapshot struct {
	byID        map[uuid.UUID]*models.Employee
	byEmail     map[string]*models.Employee
	byLocalPart map[string][]*models.Employee
	active      []*models.Employee
}

// NewSnapshot builds a snapshot from a list of employees. All employees
// are indexed by email and local part so a lingering seat still resolves
// to an offboarded employee; fuzzy name scans only consider active ones.
func NewSnapshot(employees []*models.Employee) *Snapshot {
	s := &Snapshot{
		byID:        make(map[uuid.UUID]*models.Employee, len(employees)),
		byEmail:     make(map[string]*models.Employee, len(employees)),
		byLocalPart: make(map[string][]*models.Employee, len(employees)),
	}
	for _, e := range employees {
		s.byID[e.ID] = e
		email := Fold(e.Email)
		if email == "" {
			continue
		}
		s.byEmail[email] = e
		lp := LocalPart(email)
		s.byLocalPart[lp] = append(s.byLocalPart[lp], e)
		if e.IsActive() {
			s.active = append(s.active, e)
		}
	}
	return s
}

// Load builds a snapshot from the employee store.
func Load(ctx context.Context, store Store) (*Snapshot, error) {
	employees, err := store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employee directory: %w", err)
	}
	return NewSnapshot(employees), nil
}

// ByID returns the employee with the given ID.
func (s *Snapshot) ByID(id uuid.UUID) (*models.Employee, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// ByEmail returns the employee whose email case-folds to the given value.
func (s *Snapshot) ByEmail(email string) (*models.Employee, bool) {
	e, ok := s.byEmail[Fold(email)]
	return e, ok
}

// ByLocalPart returns every employee whose email local part matches.
func (s *Snapshot) ByLocalPart(localPart string) []*models.Employee {
	return s.byLocalPart[Fold(localPart)]
}

// Active returns all active employees for fuzzy name scanning.
func (s *Snapshot) Active() []*models.Employee {
	return s.active
}

// Len returns the number of indexed employees.
func (s *Snapshot) Len() int {
	return len(s.byID)
}
