package quote

import (
	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
)

// ResolvePreset expands the catalog into fresh lines for one package.
//
// Every service offered in the package becomes a line, including services
// whose preset quantity is 0, so they can still be added by hand. An unknown
// package or a package with no services yields an empty list and a
// diagnostic for the caller to surface.
func ResolvePreset(c *catalog.Catalog, id catalog.PackageID) ([]*ServiceLine, *diagnostics.Diagnostic) {
	if _, ok := c.Package(id); !ok {
		return []*ServiceLine{}, diagnostics.UnknownPackage(id)
	}

	defs := c.ServicesFor(id)
	if len(defs) == 0 {
		return []*ServiceLine{}, diagnostics.EmptyPreset(id)
	}

	lines := make([]*ServiceLine, 0, len(defs))
	for _, def := range defs {
		mode := ModeManual
		if def.Basis.IsAuto() {
			mode = ModeAuto
		}
		qty := def.Preset[id]
		lines = append(lines, &ServiceLine{
			ID:             def.ID,
			Title:          def.Title,
			Group:          def.Group,
			UnitHours:      def.UnitHours[id],
			Basis:          def.Basis,
			Multiplier:     def.Multiplier,
			Quantity:       qty,
			Mode:           mode,
			PresetQuantity: qty,
			PresetMode:     mode,
		})
	}
	return lines, nil
}
