package catalog

import "aurora-quote/core/equipment"

// Display groups used by the built-in matrix
const (
	GroupRegistration = "Registration"
	GroupIntegration  = "Integration"
	GroupEquipment    = "Equipment"
	GroupTraining     = "Training"
)

// per-package value helpers; order is retail, wholesale, producer, producer+retail
func everywhere(retail, wholesale, producer, producerRetail int) map[PackageID]int {
	return map[PackageID]int{
		RetailOnly:     retail,
		WholesaleOnly:  wholesale,
		ProducerOnly:   producer,
		ProducerRetail: producerRetail,
	}
}

func everywhereHours(retail, wholesale, producer, producerRetail float64) map[PackageID]float64 {
	return map[PackageID]float64{
		RetailOnly:     retail,
		WholesaleOnly:  wholesale,
		ProducerOnly:   producer,
		ProducerRetail: producerRetail,
	}
}

// equipment services are offered only where registers are sold
func withRegisters(retail, producerRetail int) map[PackageID]int {
	return map[PackageID]int{RetailOnly: retail, ProducerRetail: producerRetail}
}

func withRegistersHours(retail, producerRetail float64) map[PackageID]float64 {
	return map[PackageID]float64{RetailOnly: retail, ProducerRetail: producerRetail}
}

// BuiltinContents returns the reference matrix. Its totals under default
// equipment are pinned by selfcheck.BuiltinExpectations.
func BuiltinContents() Contents {
	storefront := equipment.Snapshot{Regular: 1, Scanners: 1}

	return Contents{
		RatePerHour: DefaultRatePerHour,
		Weights:     equipment.DefaultWeights,
		Packages: []Package{
			{ID: RetailOnly, Title: "Retail only", IncludedKktUnits: 1, DefaultEquipment: storefront, Accepts: equipment.AllKinds},
			{ID: WholesaleOnly, Title: "Wholesale only"},
			{ID: ProducerOnly, Title: "Producer / importer only"},
			{ID: ProducerRetail, Title: "Producer + retail", IncludedKktUnits: 1, DefaultEquipment: storefront, Accepts: equipment.AllKinds},
		},
		Services: []ServiceDefinition{
			{
				ID: "reg_chz", Title: "Registration in the Honest Sign system", Group: GroupRegistration,
				Preset: everywhere(1, 1, 1, 1), UnitHours: everywhereHours(1, 1, 2, 2),
			},
			{
				ID: "edo_setup", Title: "EDI setup", Group: GroupIntegration,
				Preset: everywhere(1, 1, 1, 1), UnitHours: everywhereHours(1, 1, 2, 2),
			},
			{
				ID: "integration", Title: "Accounting system integration", Group: GroupIntegration,
				Preset: everywhere(1, 1, 1, 1), UnitHours: everywhereHours(2, 4, 5, 6),
			},
			{
				ID: "catalog_cards", Title: "Product card creation", Group: GroupIntegration,
				Preset: everywhere(0, 0, 1, 1), UnitHours: everywhereHours(1, 1, 1, 1),
			},
			{
				ID: "kkt_connect", Title: "Register connection (included)", Group: GroupEquipment,
				Preset: withRegisters(1, 1), UnitHours: withRegistersHours(1, 2),
				Basis: BasisKktFirst, Multiplier: 1,
			},
			{
				ID: "kkt_connect_extra", Title: "Additional register connection", Group: GroupEquipment,
				Preset: withRegisters(0, 0), UnitHours: withRegistersHours(1, 1),
				Basis: BasisKktExtra, Multiplier: 1,
			},
			{
				ID: "kkt_firmware", Title: "Register firmware update", Group: GroupEquipment,
				Preset: withRegisters(1, 1), UnitHours: withRegistersHours(1, 1),
				Basis: BasisKktStandard, Multiplier: 1,
			},
			{
				ID: "kkt_smart_setup", Title: "Smart terminal setup", Group: GroupEquipment,
				Preset: withRegisters(0, 0), UnitHours: withRegistersHours(1.5, 1.5),
				Basis: BasisKktSmart, Multiplier: 1,
			},
			{
				ID: "kkt_other_setup", Title: "Non-standard register setup", Group: GroupEquipment,
				Preset: withRegisters(0, 0), UnitHours: withRegistersHours(2, 2),
				Basis: BasisKktOther, Multiplier: 1,
			},
			{
				ID: "kkt_registration", Title: "Register re-registration for marking", Group: GroupEquipment,
				Preset: withRegisters(1, 1), UnitHours: withRegistersHours(1, 1),
				Basis: BasisKktTotal, Multiplier: 1,
			},
			{
				ID: "fn_replace", Title: "Fiscal drive replacement", Group: GroupEquipment,
				Preset: withRegisters(0, 0), UnitHours: withRegistersHours(1, 1),
			},
			{
				ID: "scanner_connect", Title: "Scanner connection", Group: GroupEquipment,
				Preset: withRegisters(1, 1), UnitHours: withRegistersHours(1, 1),
				Basis: BasisScannerFirst, Multiplier: 1,
			},
			{
				ID: "scanner_extra", Title: "Additional scanner connection", Group: GroupEquipment,
				Preset: withRegisters(0, 0), UnitHours: withRegistersHours(0.5, 0.5),
				Basis: BasisScannerExtra, Multiplier: 1,
			},
			{
				ID: "printer_connect", Title: "Label printer connection", Group: GroupEquipment,
				Preset: withRegisters(0, 0), UnitHours: withRegistersHours(0.5, 0.5),
				Basis: BasisPrinterTotal, Multiplier: 1,
			},
			{
				ID: "training", Title: "Staff training", Group: GroupTraining,
				Preset: everywhere(1, 1, 1, 1), UnitHours: everywhereHours(1, 1, 2, 2),
			},
		},
	}
}

// Builtin returns the reference catalog
func Builtin() *Catalog {
	return New(BuiltinContents())
}
