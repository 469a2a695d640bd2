package organization

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coderev/internal/database"
)

func TestMakeSlug(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Acme Corp", "acme-corp"},
		{"Acme   Corp", "acme-corp"},
		{"  Acme Corp  ", "acme-corp"},
		{"ACME CORP", "acme-corp"},
		{"Acme.Corp, Inc.", "acme-corp-inc"},
		{"acme-corp", "acme-corp"},
		{"Team 42", "team-42"},
		// Symbol-only names derive an empty slug and must be rejected
		// before creation.
		{"!!!", ""},
		{"...", ""},
		{"***", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, MakeSlug(tc.input))
		})
	}
}

func TestLimitsFor(t *testing.T) {
	testCases := []struct {
		plan     database.Plan
		expected Limits
	}{
		{database.PlanFree, Limits{5, 3, 100, 1}},
		{database.PlanProfessional, Limits{20, 25, 1000, 3}},
		{database.PlanEnterprise, Limits{100, 100, 10000, 10}},
		// Unrecognized plans fall back to free.
		{database.Plan("platinum"), Limits{5, 3, 100, 1}},
		{database.Plan(""), Limits{5, 3, 100, 1}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.plan), func(t *testing.T) {
			assert.Equal(t, tc.expected, LimitsFor(tc.plan))
		})
	}
}

func TestSizeOverrides(t *testing.T) {
	testCases := []struct {
		teamSize        string
		maxUsers        int
		maxRepositories int
	}{
		{"1-5", 5, 3},
		{"6-20", 20, 10},
		{"21-50", 50, 25},
		{"50+", 100, 100},
		{"unknown", 100, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.teamSize, func(t *testing.T) {
			maxUsers, maxRepositories := SizeOverrides(tc.teamSize)
			assert.Equal(t, tc.maxUsers, maxUsers)
			assert.Equal(t, tc.maxRepositories, maxRepositories)
		})
	}
}

func TestEffectiveLimits(t *testing.T) {
	org := &database.Organization{
		Plan:            database.PlanFree,
		MaxUsers:        20,
		MaxRepositories: 10,
	}

	limits := EffectiveLimits(org)
	assert.Equal(t, 20, limits.MaxUsers)
	assert.Equal(t, 10, limits.MaxRepositories)
	// Scan limits always come from the plan.
	assert.Equal(t, 100, limits.MaxScansPerMonth)
	assert.Equal(t, 1, limits.MaxConcurrentScans)

	noOverrides := &database.Organization{Plan: database.PlanProfessional}
	assert.Equal(t, LimitsFor(database.PlanProfessional), EffectiveLimits(noOverrides))
}

func TestCanAdmit(t *testing.T) {
	org := &database.Organization{
		Plan:     database.PlanFree,
		MaxUsers: 5,
		Usage:    database.Usage{Users: 4, Repositories: 3, ScansThisMonth: 100},
	}

	assert.True(t, CanAdmit(org, ResourceUser))

	org.Usage.Users = 5
	assert.False(t, CanAdmit(org, ResourceUser))

	// Repositories at the free plan default of 3.
	assert.False(t, CanAdmit(org, ResourceRepository))

	// Scans at the free plan monthly cap.
	assert.False(t, CanAdmit(org, ResourceScan))

	org.Usage.ScansThisMonth = 99
	assert.True(t, CanAdmit(org, ResourceScan))
}

func TestResourceKindString(t *testing.T) {
	assert.Equal(t, "user", ResourceUser.String())
	assert.Equal(t, "repository", ResourceRepository.String())
	assert.Equal(t, "scan", ResourceScan.String())
}
