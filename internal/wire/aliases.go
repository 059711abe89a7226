package wire

import (
	"strings"

	"github.com/goliatone/go-inspectform/pkg/form"
)

type typeAlias struct {
	itemType form.ItemType
	variant  form.ChoiceVariant
}

var typeAliases = map[string]typeAlias{
	"single_choice":             {form.ItemTypeSingleChoice, form.ChoiceVariantNone},
	"radio":                     {form.ItemTypeSingleChoice, form.ChoiceVariantNone},
	"choix_unique":              {form.ItemTypeSingleChoice, form.ChoiceVariantNone},
	"conforme_non_conforme":     {form.ItemTypeSingleChoice, form.ChoiceVariantConformity},
	"conformite":                {form.ItemTypeSingleChoice, form.ChoiceVariantConformity},
	"conformity":                {form.ItemTypeSingleChoice, form.ChoiceVariantConformity},
	"oui_non":                   {form.ItemTypeSingleChoice, form.ChoiceVariantYesNo},
	"yes_no":                    {form.ItemTypeSingleChoice, form.ChoiceVariantYesNo},
	"boolean":                   {form.ItemTypeSingleChoice, form.ChoiceVariantYesNo},
	"present_absent_defectueux": {form.ItemTypeSingleChoice, form.ChoiceVariantPresence},
	"presence":                  {form.ItemTypeSingleChoice, form.ChoiceVariantPresence},
	"multi_choice":              {form.ItemTypeMultiChoice, form.ChoiceVariantNone},
	"checkbox":                  {form.ItemTypeMultiChoice, form.ChoiceVariantNone},
	"choix_multiple":            {form.ItemTypeMultiChoice, form.ChoiceVariantNone},
	"cases_a_cocher":            {form.ItemTypeMultiChoice, form.ChoiceVariantNone},
	"free_text":                 {form.ItemTypeFreeText, form.ChoiceVariantNone},
	"text":                      {form.ItemTypeFreeText, form.ChoiceVariantNone},
	"texte":                     {form.ItemTypeFreeText, form.ChoiceVariantNone},
	"textarea":                  {form.ItemTypeFreeText, form.ChoiceVariantNone},
	"texte_libre":               {form.ItemTypeFreeText, form.ChoiceVariantNone},
	"commentaire":               {form.ItemTypeFreeText, form.ChoiceVariantNone},
	"number":                    {form.ItemTypeNumber, form.ChoiceVariantNone},
	"nombre":                    {form.ItemTypeNumber, form.ChoiceVariantNone},
	"numerique":                 {form.ItemTypeNumber, form.ChoiceVariantNone},
	"date":                      {form.ItemTypeDate, form.ChoiceVariantNone},
	"list":                      {form.ItemTypeList, form.ChoiceVariantNone},
	"select":                    {form.ItemTypeList, form.ChoiceVariantNone},
	"liste":                     {form.ItemTypeList, form.ChoiceVariantNone},
	"dropdown":                  {form.ItemTypeList, form.ChoiceVariantNone},
	"liste_deroulante":          {form.ItemTypeList, form.ChoiceVariantNone},
	"geolocation":               {form.ItemTypeGeolocation, form.ChoiceVariantNone},
	"geolocalisation":           {form.ItemTypeGeolocation, form.ChoiceVariantNone},
	"gps":                       {form.ItemTypeGeolocation, form.ChoiceVariantNone},
	"signature":                 {form.ItemTypeSignature, form.ChoiceVariantNone},
	"stopwatch":                 {form.ItemTypeStopwatch, form.ChoiceVariantNone},
	"chronometre":               {form.ItemTypeStopwatch, form.ChoiceVariantNone},
	"chrono":                    {form.ItemTypeStopwatch, form.ChoiceVariantNone},
	"countdown":                 {form.ItemTypeCountdown, form.ChoiceVariantNone},
	"compte_a_rebours":          {form.ItemTypeCountdown, form.ChoiceVariantNone},
	"minuterie":                 {form.ItemTypeCountdown, form.ChoiceVariantNone},
	"timer":                     {form.ItemTypeCountdown, form.ChoiceVariantNone},
	"photo":                     {form.ItemTypePhoto, form.ChoiceVariantNone},
	"image":                     {form.ItemTypePhoto, form.ChoiceVariantNone},
	"inspector_autofill":        {form.ItemTypeInspectorAutofill, form.ChoiceVariantNone},
	"inspecteur":                {form.ItemTypeInspectorAutofill, form.ChoiceVariantNone},
	"inspector":                 {form.ItemTypeInspectorAutofill, form.ChoiceVariantNone},
	"nom_inspecteur":            {form.ItemTypeInspectorAutofill, form.ChoiceVariantNone},
	"weather":                   {form.ItemTypeWeather, form.ChoiceVariantNone},
	"meteo":                     {form.ItemTypeWeather, form.ChoiceVariantNone},
	"rating":                    {form.ItemTypeRating, form.ChoiceVariantNone},
	"etoiles":                   {form.ItemTypeRating, form.ChoiceVariantNone},
	"note":                      {form.ItemTypeRating, form.ChoiceVariantNone},
	"evaluation":                {form.ItemTypeRating, form.ChoiceVariantNone},
}

var variantAliases = map[string]form.ChoiceVariant{
	"conformity":                form.ChoiceVariantConformity,
	"conformite":                form.ChoiceVariantConformity,
	"conforme_non_conforme":     form.ChoiceVariantConformity,
	"yes_no":                    form.ChoiceVariantYesNo,
	"oui_non":                   form.ChoiceVariantYesNo,
	"presence":                  form.ChoiceVariantPresence,
	"present_absent_defectueux": form.ChoiceVariantPresence,
}

func normalizeKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	return key
}

func lookupType(raw string) (typeAlias, bool) {
	alias, ok := typeAliases[normalizeKey(raw)]
	return alias, ok
}

func lookupVariant(raw string) form.ChoiceVariant {
	return variantAliases[normalizeKey(raw)]
}
