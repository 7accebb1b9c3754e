package care

// ItemKind define los tipos de servicio facturables.
// Conjunto cerrado: el motor de settlement hace match exhaustivo sobre esto.
type ItemKind string

const (
	ItemGrooming ItemKind = "grooming"
	ItemBoarding ItemKind = "boarding"
	ItemMedical  ItemKind = "medical"
)

func (k ItemKind) Valid() bool {
	switch k {
	case ItemGrooming, ItemBoarding, ItemMedical:
		return true
	default:
		return false
	}
}
