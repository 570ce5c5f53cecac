package ledger

import (
	"testing"

	"github.com/jonathan/portal-planner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const active = "2023-2024, Spring"

func TestExtractAttempts(t *testing.T) {
	history := "(2021-2022, Fall) [F] (2022-2023, Spring) [ D ]\n ( 2023-2024, Spring )[-]"

	attempts := ExtractAttempts(history)
	require.Len(t, attempts, 3)
	assert.Equal(t, types.GradeAttempt{Semester: "2021-2022, Fall", Grade: "F"}, attempts[0])
	assert.Equal(t, types.GradeAttempt{Semester: "2022-2023, Spring", Grade: "D"}, attempts[1])
	assert.Equal(t, types.GradeAttempt{Semester: "2023-2024, Spring", Grade: "-"}, attempts[2])
}

func TestExtractAttempts_Empty(t *testing.T) {
	assert.Nil(t, ExtractAttempts(""))
	assert.Nil(t, ExtractAttempts("no attempts recorded"))

	_, ok := LastAttempt("[A] without semester")
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	rows := []types.LedgerRow{
		{Code: "CSC1101", Name: "INTRODUCTION TO COMPUTER STUDIES", History: "(2021-2022, Fall) [A+]"},
		{Code: "CSC1102", Name: "INTRODUCTION TO PROGRAMMING", History: "(2021-2022, Fall) [F] (2022-2023, Fall) [B]"},
		{Code: "MAT1102", Name: "DIFFERENTIAL CALCULUS", History: "(2022-2023, Fall) [D]"},
		{Code: "CSC2106", Name: "DATA STRUCTURE", History: "(2023-2024, Spring) [-]"},
		{Code: "CSC2107", Name: "DATA STRUCTURE LAB", History: "(2023-2024, Summer) [-]"},
		{Code: "ENG2103", Name: "BUSINESS ENGLISH", History: "(2022-2023, Summer) [W]"},
		{Code: "PHY1101", Name: "PHYSICS 1", History: ""},
	}

	p := Classify(rows, active)

	assert.Equal(t, map[string]types.LedgerEntry{
		"CSC1101": {Name: "INTRODUCTION TO COMPUTER STUDIES", Grade: "A+"},
		"CSC1102": {Name: "INTRODUCTION TO PROGRAMMING", Grade: "B"},
		"MAT1102": {Name: "DIFFERENTIAL CALCULUS", Grade: "D"},
	}, p.Completed)
	assert.Equal(t, map[string]types.LedgerEntry{
		"CSC2106": {Name: "DATA STRUCTURE", Grade: "-"},
	}, p.CurrentSemester)
	assert.Equal(t, map[string]types.LedgerEntry{
		"CSC2107": {Name: "DATA STRUCTURE LAB", Grade: "-"},
	}, p.PreRegistered)
}

func TestClassify_LastAttemptWins(t *testing.T) {
	rows := []types.LedgerRow{
		// Completed once, now retaking in the active semester
		{Code: "MAT1102", Name: "DIFFERENTIAL CALCULUS", History: "(2022-2023, Fall) [D] (2023-2024, Spring) [-]"},
	}

	p := Classify(rows, active)
	assert.Empty(t, p.Completed)
	assert.Contains(t, p.CurrentSemester, "MAT1102")
	assert.Empty(t, p.PreRegistered)
}

func TestClassify_LaterRowReplacesEarlier(t *testing.T) {
	rows := []types.LedgerRow{
		{Code: "CSC1102", Name: "INTRODUCTION TO PROGRAMMING", History: "(2023-2024, Spring) [-]"},
		{Code: "CSC1102", Name: "INTRODUCTION TO PROGRAMMING", History: "(2022-2023, Fall) [B]"},
	}

	p := Classify(rows, active)
	assert.Contains(t, p.Completed, "CSC1102")
	assert.NotContains(t, p.CurrentSemester, "CSC1102")
}

func TestClassify_PartitionsAreDisjoint(t *testing.T) {
	rows := []types.LedgerRow{
		{Code: "A", History: "(2023-2024, Spring) [-]"},
		{Code: "A", History: "(2023-2024, Summer) [-]"},
		{Code: "B", History: "(2022-2023, Fall) [C]"},
		{Code: "B", History: "(2023-2024, Spring) [-]"},
	}

	p := Classify(rows, active)
	seen := map[string]int{}
	for code := range p.Completed {
		seen[code]++
	}
	for code := range p.CurrentSemester {
		seen[code]++
	}
	for code := range p.PreRegistered {
		seen[code]++
	}
	for code, n := range seen {
		assert.Equal(t, 1, n, "code %s classified more than once", code)
	}
	assert.Contains(t, p.PreRegistered, "A")
	assert.Contains(t, p.CurrentSemester, "B")
}

func TestClassify_Empty(t *testing.T) {
	p := Classify(nil, active)
	assert.NotNil(t, p.Completed)
	assert.NotNil(t, p.CurrentSemester)
	assert.NotNil(t, p.PreRegistered)
}
