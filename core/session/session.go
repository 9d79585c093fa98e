// Package session holds the working quote of one operator: the selected
// package, its service lines and the current equipment. Each session owns
// its lines exclusively; two sessions never share a line.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/equipment"
	"aurora-quote/core/pricing"
	"aurora-quote/core/quote"
	"aurora-quote/internal/errors"
)

// Session is one quote in progress. It is safe for concurrent use, although
// the usual owner is a single control flow.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	catalog   *catalog.Catalog

	pkg       catalog.Package
	selected  bool
	lines     []*quote.ServiceLine
	equipment equipment.Snapshot
}

// New starts an empty session over a catalog
func New(c *catalog.Catalog) *Session {
	return &Session{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		catalog:   c,
		lines:     []*quote.ServiceLine{},
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session started
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// SelectPackage replaces the working lines with the package preset and loads
// the package's default equipment. Manual edits made before are discarded.
// An unknown or empty package leaves the session with no lines and returns
// the diagnostic.
func (s *Session) SelectPackage(id catalog.PackageID) *diagnostics.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, diag := quote.ResolvePreset(s.catalog, id)
	pkg, ok := s.catalog.Package(id)
	if !ok {
		pkg = catalog.Package{ID: id}
	}

	s.pkg = pkg
	s.selected = ok
	s.lines = lines
	s.equipment = pkg.DefaultEquipment
	quote.ApplyEquipment(s.lines, s.inputs())
	return diag
}

// Package returns the selected package id, empty when none is selected
func (s *Session) Package() catalog.PackageID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected {
		return ""
	}
	return s.pkg.ID
}

// Lines returns a copy of the working lines
func (s *Session) Lines() []*quote.ServiceLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return quote.Clone(s.lines)
}

// Equipment returns the current equipment snapshot
func (s *Session) Equipment() equipment.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment
}

func (s *Session) inputs() quote.Inputs {
	return quote.InputsFor(s.catalog, s.pkg, s.equipment)
}

// UpdateEquipment stores a new snapshot and re-derives every auto line.
// It returns the ids of lines whose quantity changed.
func (s *Session) UpdateEquipment(snap equipment.Snapshot) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := make(map[string]int, len(s.lines))
	for _, line := range s.lines {
		before[line.ID] = line.Quantity
	}

	s.equipment = snap.Normalize()
	quote.ApplyEquipment(s.lines, s.inputs())

	changed := []string{}
	for _, line := range s.lines {
		if before[line.ID] != line.Quantity {
			changed = append(changed, line.ID)
		}
	}
	return changed
}

func (s *Session) find(id string) (*quote.ServiceLine, error) {
	line, ok := quote.Find(s.lines, id)
	if !ok {
		return nil, errors.NotFound("service", id)
	}
	return line, nil
}

// SetQuantity pins a line to a quantity chosen by the operator
func (s *Session) SetQuantity(id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.find(id)
	if err != nil {
		return err
	}
	quote.SetManualQuantity(line, qty)
	return nil
}

// Reset drops the manual override on a line and restores its preset
func (s *Session) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.find(id)
	if err != nil {
		return err
	}
	quote.ResetLineToPreset(line, s.inputs())
	return nil
}

// ResetAll restores every line to its preset
func (s *Session) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.inputs()
	for _, line := range s.lines {
		quote.ResetLineToPreset(line, in)
	}
}

// Drifted returns the ids of lines that differ from their preset
func (s *Session) Drifted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []string{}
	for _, line := range s.lines {
		if line.Drifted() {
			result = append(result, line.ID)
		}
	}
	return result
}

// Totals prices the working lines at the given rate
func (s *Session) Totals(ratePerHour float64) pricing.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.ComputeTotals(s.lines, ratePerHour)
}
