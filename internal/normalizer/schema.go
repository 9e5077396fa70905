// Package normalizer maps each survey year's raw columns onto one canonical schema.
package normalizer

// Canonical column names.
const (
	ColYear               = "Year"
	ColOrgSize            = "OrgSize"
	ColCountry            = "Country"
	ColEmployment         = "Employment"
	ColGender             = "Gender"
	ColEdLevel            = "EdLevel"
	ColUSState            = "US_State"
	ColAge                = "Age"
	ColDevType            = "DevType"
	ColSexuality          = "Sexuality"
	ColEthnicity          = "Ethnicity"
	ColDatabaseWorkedWith = "DatabaseWorkedWith"
	ColLanguageWorkedWith = "LanguageWorkedWith"
	ColPlatformWorkedWith = "PlatformWorkedWith"
	ColYearsCodePro       = "YearsCodePro"
	ColAnnualSalary       = "AnnualSalary"

	ColYearsCodeProAvg = "YearsCodeProAvg"
	ColOrgSizeAvg      = "OrgSizeAvg"
	ColAgeAvg          = "AgeAvg"
)

// CanonicalColumns is the column order of every normalized year.
var CanonicalColumns = []string{
	ColYear, ColOrgSize, ColCountry, ColEmployment, ColGender, ColEdLevel, ColUSState, ColAge, ColDevType,
	ColSexuality, ColEthnicity, ColDatabaseWorkedWith, ColLanguageWorkedWith, ColPlatformWorkedWith,
	ColYearsCodePro, ColAnnualSalary,
}

// AverageColumns maps each derived average column to the text column it is computed from.
var AverageColumns = []struct {
	Target string
	Source string
}{
	{ColYearsCodeProAvg, ColYearsCodePro},
	{ColOrgSizeAvg, ColOrgSize},
	{ColAgeAvg, ColAge},
}

// RawColumns is CanonicalColumns followed by the average columns.
func RawColumns() []string {
	cols := append([]string{}, CanonicalColumns...)
	for _, avg := range AverageColumns {
		cols = append(cols, avg.Target)
	}

	return cols
}

// Rename maps one raw column to its canonical name.
type Rename struct {
	From string
	To   string
}

// YearSchema describes how one survey year differs from the canonical schema.
type YearSchema struct {
	Renames    []Rename
	AddColumns []string
	Year       int
}

var (
	renames2017 = []Rename{
		{"FormalEducation", ColEdLevel},
		{"CompanySize", ColOrgSize},
		{"DeveloperType", ColDevType},
		{"EmploymentStatus", ColEmployment},
		{"HaveWorkedDatabase", ColDatabaseWorkedWith},
		{"HaveWorkedLanguage", ColLanguageWorkedWith},
		{"YearsProgram", ColYearsCodePro},
		{"Salary", ColAnnualSalary},
		{"HaveWorkedPlatform", ColPlatformWorkedWith},
		{"Race", ColEthnicity},
	}
	renames2018 = []Rename{
		{"FormalEducation", ColEdLevel},
		{"CompanySize", ColOrgSize},
		{"YearsCoding", ColYearsCodePro},
		{"ConvertedSalary", ColAnnualSalary},
		{"SexualOrientation", ColSexuality},
		{"RaceEthnicity", ColEthnicity},
	}
	renames2019 = []Rename{
		{"ConvertedComp", ColAnnualSalary},
	}
	renames2021 = []Rename{
		{"ConvertedCompYearly", ColAnnualSalary},
		{"LanguageHaveWorkedWith", ColLanguageWorkedWith},
		{"DatabaseHaveWorkedWith", ColDatabaseWorkedWith},
		{"PlatformHaveWorkedWith", ColPlatformWorkedWith},
	}
)

// SchemaFor returns the rename table for a survey year. Years without a
// known table pass through unchanged apart from the canonical selection.
func SchemaFor(year int) YearSchema {
	switch {
	case year == 2017:
		return YearSchema{Year: year, Renames: renames2017, AddColumns: []string{ColAge, ColUSState, ColSexuality}}
	case year == 2018:
		return YearSchema{Year: year, Renames: renames2018, AddColumns: []string{ColUSState}}
	case year == 2019 || year == 2020:
		return YearSchema{Year: year, Renames: renames2019, AddColumns: []string{ColUSState}}
	case year >= 2021 && year <= 2024:
		return YearSchema{Year: year, Renames: renames2021, AddColumns: []string{ColUSState}}
	default:
		return YearSchema{Year: year}
	}
}
