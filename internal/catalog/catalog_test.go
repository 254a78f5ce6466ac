package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryReportTypeHasATemplate(t *testing.T) {
	for _, rt := range Types() {
		cols, ok := RequiredColumns(rt.ID)
		require.True(t, ok, "missing template for %s", rt.ID)
		assert.Contains(t, cols, ColumnDistrict, "template %s lacks District", rt.ID)
		assert.Contains(t, cols, ColumnDate, "template %s lacks Date", rt.ID)
	}
}

func TestCatalogIdentifiersAreUnique(t *testing.T) {
	typeIDs := make(map[string]struct{})
	codes := make(map[string]struct{})
	for _, rt := range Types() {
		_, dup := typeIDs[rt.ID]
		require.False(t, dup, "duplicate report type id %s", rt.ID)
		typeIDs[rt.ID] = struct{}{}
		_, dup = codes[rt.Code]
		require.False(t, dup, "duplicate report code %s", rt.Code)
		codes[rt.Code] = struct{}{}
	}

	districtIDs := make(map[string]struct{})
	labels := make(map[string]struct{})
	for _, d := range Districts() {
		_, dup := districtIDs[d.ID]
		require.False(t, dup, "duplicate district id %s", d.ID)
		districtIDs[d.ID] = struct{}{}
		_, dup = labels[d.Label]
		require.False(t, dup, "duplicate district label %s", d.Label)
		labels[d.Label] = struct{}{}
	}
}

func TestCatalogSizes(t *testing.T) {
	assert.Len(t, Types(), 23)
	assert.Len(t, Districts(), 20)
	assert.Len(t, Categories(), 5)
}

func TestCategoryMapping(t *testing.T) {
	finance := TypesByCategory(CategoryFinance)
	operation := TypesByCategory(CategoryOperation)
	assert.Len(t, finance, 16)
	assert.Len(t, operation, 7)

	// Risk, HR and IT exist as categories but map to no report types.
	assert.Empty(t, TypesByCategory(CategoryRisk))
	assert.Empty(t, TypesByCategory(CategoryHR))
	assert.Empty(t, TypesByCategory(CategoryIT))

	for _, rt := range finance {
		assert.Equal(t, CategoryFinance, rt.Category)
	}
}

func TestNormalizeDistrict(t *testing.T) {
	byID, ok := NormalizeDistrict("hawassa_sidama")
	require.True(t, ok)
	assert.Equal(t, "Hawassa Sidama", byID.Label)

	byLabel, ok := NormalizeDistrict("  Hawassa Sidama ")
	require.True(t, ok)
	assert.Equal(t, "hawassa_sidama", byLabel.ID)

	caseInsensitive, ok := NormalizeDistrict("ARBAMINCH")
	require.True(t, ok)
	assert.Equal(t, "arbaminch", caseInsensitive.ID)

	_, ok = NormalizeDistrict("Atlantis")
	assert.False(t, ok)
}

func TestSnapshotContainsMappingAndTemplates(t *testing.T) {
	enums := Snapshot()
	require.Len(t, enums.Mapping, 5)
	assert.Len(t, enums.Mapping[CategoryFinance], 16)
	assert.Empty(t, enums.Mapping[CategoryIT])
	assert.Len(t, enums.Templates, 23)
	assert.Equal(t, []string{"District", "Date", "Assets", "Liabilities", "Equity"}, enums.Templates["balance_sheet_institutional"])
	assert.Equal(t, []string{"District", "Date", "Account", "Debit", "Credit"}, enums.Templates["trial_balance"])
}
