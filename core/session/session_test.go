package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/equipment"
	"aurora-quote/core/quote"
	"aurora-quote/internal/errors"
)

func quantity(t *testing.T, s *Session, id string) int {
	t.Helper()
	line, ok := quote.Find(s.Lines(), id)
	require.True(t, ok, "line %s missing", id)
	return line.Quantity
}

func TestNewSession(t *testing.T) {
	s := New(catalog.Builtin())

	_, err := uuid.Parse(s.ID())
	assert.NoError(t, err)
	assert.Empty(t, s.Package())
	assert.Empty(t, s.Lines())
	assert.False(t, s.CreatedAt().IsZero())
	assert.NotEqual(t, s.ID(), New(catalog.Builtin()).ID())
}

func TestSelectPackageLoadsDefaults(t *testing.T) {
	s := New(catalog.Builtin())

	diag := s.SelectPackage(catalog.RetailOnly)

	assert.Nil(t, diag)
	assert.Equal(t, catalog.RetailOnly, s.Package())
	assert.Equal(t, equipment.Snapshot{Regular: 1, Scanners: 1}, s.Equipment())
	assert.Equal(t, int64(44550), s.Totals(4950).TotalPrice)
	assert.Empty(t, s.Drifted())
}

func TestSelectUnknownPackage(t *testing.T) {
	s := New(catalog.Builtin())

	diag := s.SelectPackage("mystery")

	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.KindUnknownPackage, diag.Kind)
	assert.Empty(t, s.Package())
	assert.Empty(t, s.Lines())
	assert.Zero(t, s.Totals(4950).TotalPrice)
}

func TestUpdateEquipmentReportsChangedLines(t *testing.T) {
	s := New(catalog.Builtin())
	s.SelectPackage(catalog.RetailOnly)

	changed := s.UpdateEquipment(equipment.Snapshot{Regular: 3, Scanners: 1})

	assert.ElementsMatch(t, []string{"kkt_connect_extra", "kkt_firmware", "kkt_registration"}, changed)
	assert.Equal(t, 3, quantity(t, s, "kkt_registration"))
	assert.Empty(t, s.UpdateEquipment(equipment.Snapshot{Regular: 3, Scanners: 1}))
}

func TestUpdateEquipmentNormalizesSnapshot(t *testing.T) {
	s := New(catalog.Builtin())
	s.SelectPackage(catalog.RetailOnly)

	s.UpdateEquipment(equipment.Snapshot{Regular: -4, Scanners: 2})

	assert.Equal(t, equipment.Snapshot{Scanners: 2}, s.Equipment())
	assert.Equal(t, 0, quantity(t, s, "kkt_registration"))
	assert.Equal(t, 1, quantity(t, s, "scanner_extra"))
}

func TestSetQuantityAndReset(t *testing.T) {
	s := New(catalog.Builtin())
	s.SelectPackage(catalog.RetailOnly)

	require.NoError(t, s.SetQuantity("kkt_registration", 7))
	s.UpdateEquipment(equipment.Snapshot{Regular: 2, Scanners: 1})
	assert.Equal(t, 7, quantity(t, s, "kkt_registration"))
	assert.Contains(t, s.Drifted(), "kkt_registration")

	require.NoError(t, s.Reset("kkt_registration"))
	assert.Equal(t, 2, quantity(t, s, "kkt_registration"))
}

func TestUnknownLineIsNotFound(t *testing.T) {
	s := New(catalog.Builtin())
	s.SelectPackage(catalog.WholesaleOnly)

	err := s.SetQuantity("kkt_registration", 1)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	err = s.Reset("nope")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestResetAll(t *testing.T) {
	s := New(catalog.Builtin())
	s.SelectPackage(catalog.ProducerRetail)

	require.NoError(t, s.SetQuantity("training", 4))
	require.NoError(t, s.SetQuantity("integration", 0))
	s.ResetAll()

	assert.Empty(t, s.Drifted())
	assert.Equal(t, int64(89100), s.Totals(4950).TotalPrice)
}

func TestLinesAreCopies(t *testing.T) {
	s := New(catalog.Builtin())
	s.SelectPackage(catalog.RetailOnly)

	lines := s.Lines()
	lines[0].Quantity = 500

	assert.NotEqual(t, 500, s.Lines()[0].Quantity)
}

func TestSessionsAreIsolated(t *testing.T) {
	c := catalog.Builtin()
	a, b := New(c), New(c)
	a.SelectPackage(catalog.RetailOnly)
	b.SelectPackage(catalog.RetailOnly)

	require.NoError(t, a.SetQuantity("training", 10))
	a.UpdateEquipment(equipment.Snapshot{Regular: 5})

	assert.Equal(t, 1, quantity(t, b, "training"))
	assert.Equal(t, 1, quantity(t, b, "kkt_registration"))
}

func TestSelectPackageDiscardsEdits(t *testing.T) {
	s := New(catalog.Builtin())
	s.SelectPackage(catalog.RetailOnly)
	require.NoError(t, s.SetQuantity("training", 3))

	s.SelectPackage(catalog.RetailOnly)

	assert.Equal(t, 1, quantity(t, s, "training"))
	assert.Empty(t, s.Drifted())
}
