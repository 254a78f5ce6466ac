package catalog

// Column names shared by every template. District drives the ownership
// checks at upload time, Date anchors the reporting period.
const (
	ColumnDistrict = "District"
	ColumnDate     = "Date"
)

// templates maps a report type id to its required columns, in template
// order. A payload is valid when every required column is present; extra
// columns are tolerated and the order is irrelevant.
var templates = map[string][]string{
	"trial_balance":                    {ColumnDistrict, ColumnDate, "Account", "Debit", "Credit"},
	"income_statement":                 {ColumnDistrict, ColumnDate, "Revenue", "Expenses", "Net_Income"},
	"balance_sheet_institutional":      {ColumnDistrict, ColumnDate, "Assets", "Liabilities", "Equity"},
	"breakdown_of_income_accounts":     {ColumnDistrict, ColumnDate, "Account_Name", "Amount"},
	"breakdown_of_expenses":            {ColumnDistrict, ColumnDate, "Account_Name", "Amount"},
	"monthly_average_reserve":          {ColumnDistrict, ColumnDate, "Required_Reserve", "Actual_Reserve"},
	"liquidity_requirement":            {ColumnDistrict, ColumnDate, "Liquid_Assets", "Total_Deposits", "Liquidity_Ratio"},
	"profit_and_loss":                  {ColumnDistrict, ColumnDate, "Revenue", "Expenses", "Net_Income"},
	"balance_sheet_nbe":                {ColumnDistrict, ColumnDate, "Assets", "Liabilities", "Equity"},
	"non_performing_loans_provisions":  {ColumnDistrict, ColumnDate, "Loan_Category", "Outstanding", "Provision"},
	"loan_classification_provisioning": {ColumnDistrict, ColumnDate, "Loan_Category", "Outstanding", "Provision"},
	"fixed_asset_ppe":                  {ColumnDistrict, ColumnDate, "Asset_Class", "Cost", "Accumulated_Depreciation", "Net_Book_Value"},
	"capital_adequacy_on_balance":      {ColumnDistrict, ColumnDate, "Asset_Class", "Amount", "Risk_Weight"},
	"capital_adequacy_off_balance":     {ColumnDistrict, ColumnDate, "Exposure_Class", "Amount", "Risk_Weight"},
	"capital_adequacy_quarterly":       {ColumnDistrict, ColumnDate, "Capital_Component", "Amount"},
	"maturity_assets_liabilities":      {ColumnDistrict, ColumnDate, "Maturity_Bucket", "Assets", "Liabilities"},

	"loan_disbursement_collection_outstanding": {ColumnDistrict, ColumnDate, "Disbursed", "Collected", "Outstanding"},
	"loan_to_related_parties":                  {ColumnDistrict, ColumnDate, "Borrower", "Relationship", "Outstanding"},
	"borrowers_exceed_10_percent":              {ColumnDistrict, ColumnDate, "Borrower", "Outstanding", "Capital_Share"},
	"personal_information_individual":          {ColumnDistrict, ColumnDate, "Borrower", "ID_Number", "Address"},
	"insurance_activity":                       {ColumnDistrict, ColumnDate, "Policy_Type", "Premium", "Claims"},
	"arrears_by_age_individual":                {ColumnDistrict, ColumnDate, "Borrower", "Days_In_Arrears", "Outstanding"},
	"arrears_beneficiary":                      {ColumnDistrict, ColumnDate, "Beneficiary", "Days_In_Arrears", "Outstanding"},
}

// RequiredColumns returns the template for a report type.
func RequiredColumns(reportTypeID string) ([]string, bool) {
	cols, ok := templates[reportTypeID]
	if !ok {
		return nil, false
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, true
}
