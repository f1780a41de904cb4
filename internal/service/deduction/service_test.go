package deduction

import (
	"context"
	"strings"
	"testing"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (deduction.RuleService, *fakeRuleRepository) {
	repo := newFakeRuleRepository()
	return NewService(passthroughTx{}, repo), repo
}

func TestRuleService_CreateRule(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	resp, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:               "EPF",
		Name:               "Provident Fund",
		Kind:               "percentage",
		Scope:              "all",
		EmployeePercentage: decPtr("11"),
		EmployerPercentage: decPtr("13"),
		EffectiveFrom:      "2020-01-01",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "EPF", resp.Code)
	assert.Equal(t, "2020-01-01", resp.EffectiveFrom)
	assert.Nil(t, resp.EffectiveUntil)
	assert.True(t, resp.IsActive)
}

func TestRuleService_CreateRule_ValidationFails(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:          "epf",
		Name:          "",
		Kind:          "bogus",
		Scope:         "all",
		EffectiveFrom: "01-01-2020",
	})
	assert.Error(t, err)
}

func TestRuleService_CreateRule_DuplicateOpenVersion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	req := deduction.CreateRuleRequest{
		Code:               "EPF",
		Name:               "Provident Fund",
		Kind:               "percentage",
		Scope:              "all",
		EmployeePercentage: decPtr("11"),
		EffectiveFrom:      "2020-01-01",
	}
	_, err := svc.CreateRule(ctx, req)
	require.NoError(t, err)

	_, err = svc.CreateRule(ctx, req)
	assert.ErrorIs(t, err, deduction.ErrDuplicateOpenRule)
}

// UpdateRate must close the open window and insert a successor; the old
// version stays untouched apart from its new end date.
func TestRuleService_UpdateRate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:               "EPF",
		Name:               "Provident Fund",
		Kind:               "percentage",
		Scope:              "all",
		EmployeePercentage: decPtr("9"),
		EmployerPercentage: decPtr("12"),
		EffectiveFrom:      "2020-01-01",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRate(ctx, deduction.UpdateRateRequest{
		Code:               "EPF",
		EmployeePercentage: decPtr("11"),
		EffectiveFrom:      "2025-01-01",
	})
	require.NoError(t, err)

	assert.True(t, decPtr("11").Equal(updated.EmployeePercentage))
	// Employer rate is inherited from the closed version.
	assert.True(t, decPtr("12").Equal(updated.EmployerPercentage))
	assert.Equal(t, "2025-01-01", updated.EffectiveFrom)
	assert.Nil(t, updated.EffectiveUntil)

	versions, err := svc.ListRuleVersions(ctx, "EPF")
	require.NoError(t, err)
	require.Len(t, versions, 2)

	// Newest window first.
	assert.Nil(t, versions[0].EffectiveUntil)
	require.NotNil(t, versions[1].EffectiveUntil)
	assert.Equal(t, "2025-01-01", *versions[1].EffectiveUntil)
	assert.True(t, decPtr("9").Equal(versions[1].EmployeePercentage))
}

func TestRuleService_UpdateRate_NoOpenVersion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.UpdateRate(ctx, deduction.UpdateRateRequest{
		Code:               "EPF",
		EmployeePercentage: decPtr("11"),
		EffectiveFrom:      "2025-01-01",
	})
	assert.ErrorIs(t, err, deduction.ErrNoOpenRule)
}

func TestRuleService_UpdateRate_BackdatedIntoOpenWindow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:               "EPF",
		Name:               "Provident Fund",
		Kind:               "percentage",
		Scope:              "all",
		EmployeePercentage: decPtr("11"),
		EffectiveFrom:      "2025-01-01",
	})
	require.NoError(t, err)

	_, err = svc.UpdateRate(ctx, deduction.UpdateRateRequest{
		Code:               "EPF",
		EmployeePercentage: decPtr("12"),
		EffectiveFrom:      "2024-06-01",
	})
	assert.ErrorIs(t, err, deduction.ErrOverlappingWindow)
}

func TestRuleService_ReplaceBrackets(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:          "SOCSO",
		Name:          "Social Security",
		Kind:          "wage_range",
		Scope:         "all",
		EffectiveFrom: "2020-01-01",
	})
	require.NoError(t, err)

	brackets, err := svc.ReplaceBrackets(ctx, deduction.ReplaceBracketsRequest{
		Code: "SOCSO",
		Brackets: []deduction.BracketRequest{
			{MinWage: dec("0"), MaxWage: decPtr("999.99"), EmployeeAmount: dec("4.75"), EmployerAmount: dec("16.65")},
			{MinWage: dec("1000"), MaxWage: decPtr("1999.99"), EmployeeAmount: dec("9.75"), EmployerAmount: dec("34.15")},
			{MinWage: dec("2000"), EmployeeAmount: dec("19.75"), EmployerAmount: dec("69.05")},
		},
	})
	require.NoError(t, err)
	assert.Len(t, brackets, 3)
}

func TestRuleService_ReplaceBrackets_PartitionViolations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:          "SOCSO",
		Name:          "Social Security",
		Kind:          "wage_range",
		Scope:         "all",
		EffectiveFrom: "2020-01-01",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		brackets []deduction.BracketRequest
	}{
		{
			name: "gap between brackets",
			brackets: []deduction.BracketRequest{
				{MinWage: dec("0"), MaxWage: decPtr("999.99")},
				{MinWage: dec("1500")},
			},
		},
		{
			name: "overlap between brackets",
			brackets: []deduction.BracketRequest{
				{MinWage: dec("0"), MaxWage: decPtr("1500")},
				{MinWage: dec("1000")},
			},
		},
		{
			name: "does not start at zero",
			brackets: []deduction.BracketRequest{
				{MinWage: dec("100"), MaxWage: decPtr("999.99")},
				{MinWage: dec("1000")},
			},
		},
		{
			name: "no open-ended bracket",
			brackets: []deduction.BracketRequest{
				{MinWage: dec("0"), MaxWage: decPtr("999.99")},
				{MinWage: dec("1000"), MaxWage: decPtr("1999.99")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReplaceBrackets(ctx, deduction.ReplaceBracketsRequest{Code: "SOCSO", Brackets: tt.brackets})
			assert.ErrorIs(t, err, deduction.ErrInvalidBracketPartition)
		})
	}
}

func TestRuleService_ReplaceBrackets_UnknownCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.ReplaceBrackets(ctx, deduction.ReplaceBracketsRequest{
		Code: "NOPE",
		Brackets: []deduction.BracketRequest{
			{MinWage: dec("0")},
		},
	})
	assert.ErrorIs(t, err, deduction.ErrRuleNotFound)
}

func TestRuleService_ImportRules(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	csvData := strings.Join([]string{
		"code,name,kind,scope,employee_percentage,employer_percentage,employee_amount,employer_amount,effective_from",
		"EPF,Provident Fund,percentage,all,11,13,,,2020-01-01",
		"LEVY,Foreign Worker Levy,fixed,foreigner,,,0,125,2020-01-01",
		"BAD,Broken Row,bogus,all,,,,,2020-01-01",
	}, "\n")

	result, err := svc.ImportRules(ctx, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Errors, 1)

	rules, err := svc.ListRules(ctx, true)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestRuleService_ImportRules_SkipsExistingOpenVersion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:               "EPF",
		Name:               "Provident Fund",
		Kind:               "percentage",
		Scope:              "all",
		EmployeePercentage: decPtr("11"),
		EffectiveFrom:      "2020-01-01",
	})
	require.NoError(t, err)

	csvData := strings.Join([]string{
		"code,name,kind,scope,employee_percentage,employer_percentage,employee_amount,employer_amount,effective_from",
		"EPF,Provident Fund,percentage,all,11,13,,,2020-01-01",
	}, "\n")

	result, err := svc.ImportRules(ctx, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestRuleService_ImportBrackets(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:          "SOCSO",
		Name:          "Social Security",
		Kind:          "wage_range",
		Scope:         "all",
		EffectiveFrom: "2020-01-01",
	})
	require.NoError(t, err)

	csvData := strings.Join([]string{
		"code,min_wage,max_wage,employee_amount,employer_amount",
		"SOCSO,0,999.99,4.75,16.65",
		"SOCSO,1000,1999.99,9.75,34.15",
		"SOCSO,2000,,19.75,69.05",
	}, "\n")

	result, err := svc.ImportBrackets(ctx, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	brackets, err := svc.ListBrackets(ctx, "SOCSO")
	require.NoError(t, err)
	assert.Len(t, brackets, 3)
}

func TestRuleService_ImportBrackets_RejectsBrokenTableWhole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:          "SOCSO",
		Name:          "Social Security",
		Kind:          "wage_range",
		Scope:         "all",
		EffectiveFrom: "2020-01-01",
	})
	require.NoError(t, err)

	// Gap between 999.99 and 2000: the whole table is rejected.
	csvData := strings.Join([]string{
		"code,min_wage,max_wage,employee_amount,employer_amount",
		"SOCSO,0,999.99,4.75,16.65",
		"SOCSO,2000,,19.75,69.05",
	}, "\n")

	result, err := svc.ImportBrackets(ctx, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Errors, 1)

	brackets, err := svc.ListBrackets(ctx, "SOCSO")
	require.NoError(t, err)
	assert.Empty(t, brackets)
}

func TestRuleService_DeactivateRule(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	created, err := svc.CreateRule(ctx, deduction.CreateRuleRequest{
		Code:               "EPF",
		Name:               "Provident Fund",
		Kind:               "percentage",
		Scope:              "all",
		EmployeePercentage: decPtr("11"),
		EffectiveFrom:      "2020-01-01",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateRule(ctx, created.ID))

	active, err := svc.ListRules(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}
