package form

// ItemType is the closed set of answer types an item can declare.
type ItemType string

const (
	ItemTypeSingleChoice      ItemType = "single_choice"
	ItemTypeMultiChoice       ItemType = "multi_choice"
	ItemTypeFreeText          ItemType = "free_text"
	ItemTypeNumber            ItemType = "number"
	ItemTypeDate              ItemType = "date"
	ItemTypeList              ItemType = "list"
	ItemTypeGeolocation       ItemType = "geolocation"
	ItemTypeSignature         ItemType = "signature"
	ItemTypeStopwatch         ItemType = "stopwatch"
	ItemTypeCountdown         ItemType = "countdown"
	ItemTypePhoto             ItemType = "photo"
	ItemTypeInspectorAutofill ItemType = "inspector_autofill"
	ItemTypeWeather           ItemType = "weather"
	ItemTypeRating            ItemType = "rating"
)

var allItemTypes = []ItemType{
	ItemTypeSingleChoice,
	ItemTypeMultiChoice,
	ItemTypeFreeText,
	ItemTypeNumber,
	ItemTypeDate,
	ItemTypeList,
	ItemTypeGeolocation,
	ItemTypeSignature,
	ItemTypeStopwatch,
	ItemTypeCountdown,
	ItemTypePhoto,
	ItemTypeInspectorAutofill,
	ItemTypeWeather,
	ItemTypeRating,
}

// AllItemTypes returns every supported item type in declaration order.
func AllItemTypes() []ItemType {
	return append([]ItemType(nil), allItemTypes...)
}

// Valid reports whether t belongs to the closed set.
func (t ItemType) Valid() bool {
	for _, candidate := range allItemTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsChoice reports whether values of t are picked from Options.
func (t ItemType) IsChoice() bool {
	return t == ItemTypeSingleChoice || t == ItemTypeMultiChoice || t == ItemTypeList
}

// ChoiceVariant refines single_choice items that fall back to builtin option
// sets when the schema leaves Options empty.
type ChoiceVariant string

const (
	ChoiceVariantNone       ChoiceVariant = ""
	ChoiceVariantConformity ChoiceVariant = "conformity"
	ChoiceVariantYesNo      ChoiceVariant = "yes_no"
	ChoiceVariantPresence   ChoiceVariant = "presence"
)

// BuiltinOptions lists the labels used when a single_choice item has no
// explicit options.
func (v ChoiceVariant) BuiltinOptions() []string {
	switch v {
	case ChoiceVariantYesNo:
		return []string{"Oui", "Non"}
	case ChoiceVariantPresence:
		return []string{"Présent", "Absent", "Défectueux"}
	default:
		return []string{"Conforme", "Non conforme"}
	}
}
