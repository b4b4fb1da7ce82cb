package constants

import "strings"

// Canonical record field names. Extracted data from every backend (AI
// structuring, table heuristics, text fallback) is unified onto these keys.
const (
	FieldFIO            = "fio"
	FieldBirthDate      = "birth_date"
	FieldPosition       = "position"
	FieldHarmfulFactors = "harmful_factors"
	FieldOther          = "other"

	FieldOrganizationName = "organization_name"
	FieldINN              = "inn"
)

// OrganizationFields is the canonical schema for organization profiles.
var OrganizationFields = []string{
	"organization_name", "inn", "kpp", "ogrn", "okpo", "oktmo", "okato",
	"okfs", "address", "director", "phone", "email", "bank_name",
	"bank_account", "korr_account", "bik", "license", "registration_date",
	"other",
}

// PersonFields is the canonical schema for person / medical-exam entries.
var PersonFields = []string{
	"fio", "birth_date", "age", "position", "department", "workplace",
	"address", "phone", "passport", "snils", "medical_book",
	"harmful_factors", "diagnosis", "recommendations", "exam_date",
	"next_exam", "other",
}

// OrganizationIndicators are the keys whose presence in any record classifies
// the whole batch as organization-type.
var OrganizationIndicators = []string{FieldOrganizationName, FieldINN}

// Priority column orders for export. Fields present in the data are emitted
// in this order before any remaining keys.
var (
	OrganizationPriority = []string{
		"organization_name", "inn", "kpp", "address", "director",
		"phone", "email", "license",
	}
	PersonPriority = []string{
		"fio", "birth_date", "position", "department", "harmful_factors",
	}
)

// Localized sheet titles.
const (
	SheetOrganizations = "Организации"
	SheetMedicalExams  = "Медицинские осмотры"
)

var displayLabels = map[string]string{
	"organization_name": "Название организации",
	"inn":               "ИНН",
	"kpp":               "КПП",
	"ogrn":              "ОГРН",
	"okpo":              "ОКПО",
	"oktmo":             "ОКТМО",
	"okato":             "ОКАТО",
	"okfs":              "ОКФС",
	"address":           "Адрес",
	"director":          "Директор",
	"phone":             "Телефон",
	"email":             "Email",
	"bank_name":         "Банк",
	"bank_account":      "Расчетный счет",
	"korr_account":      "Корреспондентский счет",
	"bik":               "БИК",
	"license":           "Лицензия",
	"registration_date": "Дата регистрации",

	"fio":             "ФИО",
	"birth_date":      "Дата рождения",
	"age":             "Возраст",
	"position":        "Должность",
	"department":      "Отдел",
	"workplace":       "Место работы",
	"passport":        "Паспорт",
	"snils":           "СНИЛС",
	"medical_book":    "Медицинская книжка",
	"harmful_factors": "Факторы вредности",
	"diagnosis":       "Диагноз",
	"recommendations": "Рекомендации",
	"exam_date":       "Дата осмотра",
	"next_exam":       "Следующий осмотр",

	"other": "Дополнительная информация",
}

// DisplayLabel maps a canonical field name to its spreadsheet column label.
// Unknown keys fall back to a title-cased form of the key itself.
func DisplayLabel(key string) string {
	if label, ok := displayLabels[key]; ok {
		return label
	}
	return titleCase(key)
}

func titleCase(key string) string {
	parts := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// IsCanonical reports whether key belongs to either canonical schema.
func IsCanonical(key string) bool {
	for _, f := range OrganizationFields {
		if f == key {
			return true
		}
	}
	for _, f := range PersonFields {
		if f == key {
			return true
		}
	}
	return false
}
