// Package catalog holds the static report catalogs: categories, report
// types, districts, and the category→type mapping. The catalogs are
// normalized to unique identifiers with separate display labels; the
// regulatory code of each report type is kept as its own field.
package catalog

import "strings"

// Category groups report types.
type Category string

const (
	CategoryOperation Category = "operation"
	CategoryFinance   Category = "finance"
	CategoryRisk      Category = "risk"
	CategoryHR        Category = "hr"
	CategoryIT        Category = "it"
)

// ReportType identifies one report kind in the catalog.
type ReportType struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Code     string   `json:"code"`
	Category Category `json:"category"`
}

// District identifies one district of the organization.
type District struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var categories = []Category{
	CategoryOperation,
	CategoryFinance,
	CategoryRisk,
	CategoryHR,
	CategoryIT,
}

var reportTypes = []ReportType{
	{ID: "trial_balance", Label: "Trial Balance", Code: "OB_TB001", Category: CategoryFinance},
	{ID: "income_statement", Label: "Income Statement", Code: "NBE_FIN006", Category: CategoryFinance},
	{ID: "balance_sheet_institutional", Label: "Balance Sheet – Institutional", Code: "NBE_FIN004", Category: CategoryFinance},
	{ID: "breakdown_of_income_accounts", Label: "Breakdown of Income Accounts", Code: "BRE_INC001", Category: CategoryFinance},
	{ID: "breakdown_of_expenses", Label: "Breakdown of Expenses", Code: "BRE_EXP001", Category: CategoryFinance},
	{ID: "monthly_average_reserve", Label: "Monthly Average Reserve Report", Code: "NP024", Category: CategoryFinance},
	{ID: "liquidity_requirement", Label: "Liquidity Requirement Report", Code: "NBE_FIN003", Category: CategoryFinance},
	{ID: "profit_and_loss", Label: "Profit and Loss Statement", Code: "NBE_FIN010", Category: CategoryFinance},
	{ID: "balance_sheet_nbe", Label: "Balance Sheet – NBE", Code: "NBE_FIN005", Category: CategoryFinance},
	{ID: "non_performing_loans_provisions", Label: "Non-Performing Loans and Advances & Provisions", Code: "NBE_FIN008", Category: CategoryFinance},
	{ID: "loan_classification_provisioning", Label: "Loan Classification and Provisioning", Code: "NBE_FIN007", Category: CategoryFinance},
	{ID: "fixed_asset_ppe", Label: "Fixed Asset / PPE", Code: "OB_FIN003", Category: CategoryFinance},
	{ID: "capital_adequacy_on_balance", Label: "Capital Adequacy Report – On-Balance Sheet", Code: "NBE_FIN011", Category: CategoryFinance},
	{ID: "capital_adequacy_off_balance", Label: "Capital Adequacy Report – Off-Balance Sheet", Code: "NBE_FIN012", Category: CategoryFinance},
	{ID: "capital_adequacy_quarterly", Label: "Capital Adequacy Report (Quarterly) – Capital Components", Code: "NBE_FIN013", Category: CategoryFinance},
	{ID: "maturity_assets_liabilities", Label: "Maturity of Assets & Liabilities", Code: "NBE_FIN014", Category: CategoryFinance},

	{ID: "loan_disbursement_collection_outstanding", Label: "Loan and Advance Disbursement, Collection and Outstanding", Code: "NBE_LN001", Category: CategoryOperation},
	{ID: "loan_to_related_parties", Label: "Loan to Related Parties", Code: "NBE_LN002", Category: CategoryOperation},
	{ID: "borrowers_exceed_10_percent", Label: "Borrowers Exceed 10 Percent", Code: "NBE_LN003", Category: CategoryOperation},
	{ID: "personal_information_individual", Label: "Personal Information Individual", Code: "NBE_PIF001", Category: CategoryOperation},
	{ID: "insurance_activity", Label: "Insurance Activity Report", Code: "OB_INSU01", Category: CategoryOperation},
	{ID: "arrears_by_age_individual", Label: "Arrears by Age Individual", Code: "OB_ARR01", Category: CategoryOperation},
	{ID: "arrears_beneficiary", Label: "Arrears Beneficiary", Code: "OB_ARR02", Category: CategoryOperation},
}

var districts = []District{
	{ID: "district1", Label: "District1"},
	{ID: "district2", Label: "District2"},
	{ID: "arbaminch", Label: "Arbaminch"},
	{ID: "sodo", Label: "Sodo"},
	{ID: "hossana", Label: "Hossana"},
	{ID: "karate", Label: "Karate"},
	{ID: "bonga", Label: "Bonga"},
	{ID: "jemu", Label: "Jemu"},
	{ID: "dilla", Label: "Dilla"},
	{ID: "masha", Label: "Masha"},
	{ID: "tarcha", Label: "Tarcha"},
	{ID: "mizan", Label: "Mizan"},
	{ID: "hawassa_sidama", Label: "Hawassa Sidama"},
	{ID: "worabe", Label: "Worabe"},
	{ID: "sawla", Label: "Sawla"},
	{ID: "welkite", Label: "Welkite"},
	{ID: "jinka", Label: "Jinka"},
	{ID: "hawassa_ketema", Label: "Hawassa Ketema"},
	{ID: "durame", Label: "Durame"},
	{ID: "halaba", Label: "Halaba"},
}

var (
	typeIndex     map[string]ReportType
	districtIndex map[string]District
	labelIndex    map[string]District
)

func init() {
	typeIndex = make(map[string]ReportType, len(reportTypes))
	for _, rt := range reportTypes {
		typeIndex[rt.ID] = rt
	}
	districtIndex = make(map[string]District, len(districts))
	labelIndex = make(map[string]District, len(districts))
	for _, d := range districts {
		districtIndex[d.ID] = d
		labelIndex[strings.ToLower(d.Label)] = d
	}
}

// Categories returns the category catalog in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ValidCategory reports whether c is part of the catalog.
func ValidCategory(c Category) bool {
	for _, known := range categories {
		if known == c {
			return true
		}
	}
	return false
}

// Types returns the full report type catalog.
func Types() []ReportType {
	out := make([]ReportType, len(reportTypes))
	copy(out, reportTypes)
	return out
}

// TypeByID looks up a report type by identifier.
func TypeByID(id string) (ReportType, bool) {
	rt, ok := typeIndex[id]
	return rt, ok
}

// TypesByCategory returns the report types belonging to a category, in
// catalog order. Risk, HR, and IT currently map to no types.
func TypesByCategory(c Category) []ReportType {
	var out []ReportType
	for _, rt := range reportTypes {
		if rt.Category == c {
			out = append(out, rt)
		}
	}
	return out
}

// Districts returns the district catalog.
func Districts() []District {
	out := make([]District, len(districts))
	copy(out, districts)
	return out
}

// DistrictByID looks up a district by identifier.
func DistrictByID(id string) (District, bool) {
	d, ok := districtIndex[id]
	return d, ok
}

// NormalizeDistrict resolves a district given either its identifier or its
// display label (case-insensitive). Uploaded workbooks typically carry the
// label in the District column.
func NormalizeDistrict(value string) (District, bool) {
	value = strings.TrimSpace(value)
	if d, ok := districtIndex[strings.ToLower(value)]; ok {
		return d, true
	}
	d, ok := labelIndex[strings.ToLower(value)]
	return d, ok
}

// Enums is the static catalog snapshot served to clients for form
// population.
type Enums struct {
	Categories  []Category              `json:"categories"`
	ReportTypes []ReportType            `json:"report_types"`
	Mapping     map[Category][]string   `json:"category_report_mapping"`
	Districts   []District              `json:"districts"`
	Templates   map[string][]string     `json:"templates"`
}

// Snapshot assembles the enum catalog.
func Snapshot() Enums {
	mapping := make(map[Category][]string, len(categories))
	for _, c := range categories {
		ids := make([]string, 0)
		for _, rt := range TypesByCategory(c) {
			ids = append(ids, rt.ID)
		}
		mapping[c] = ids
	}
	templatesCopy := make(map[string][]string, len(templates))
	for id, cols := range templates {
		out := make([]string, len(cols))
		copy(out, cols)
		templatesCopy[id] = out
	}
	return Enums{
		Categories:  Categories(),
		ReportTypes: Types(),
		Mapping:     mapping,
		Districts:   Districts(),
		Templates:   templatesCopy,
	}
}
