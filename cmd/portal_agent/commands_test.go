package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command in-process and returns its stdout.
// Flag variables are package globals, so every call passes all flags it relies on.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolveCommand_JSON(t *testing.T) {
	t.Setenv("WITHDRAWN_GRADES", "")
	output, err := executeCommand(t, "resolve", "--in", filepath.Join("testdata", "snapshot.json"), "--json")
	require.NoError(t, err)

	var result struct {
		User            string `json:"user"`
		CurrentSemester string `json:"currentSemester"`
		UnlockedCourses map[string]struct {
			Credit int  `json:"credit"`
			Retake bool `json:"retake"`
		} `json:"unlockedCourses"`
		CompletedCourses map[string]struct {
			Grade  string `json:"grade"`
			Credit int    `json:"credit"`
		} `json:"completedCourses"`
		SemesterClassRoutine map[string]json.RawMessage `json:"semesterClassRoutine"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &result))

	assert.Equal(t, "Jane Doe", result.User)
	assert.Equal(t, "2023-2024, Spring", result.CurrentSemester)
	require.Len(t, result.UnlockedCourses, 2)
	assert.True(t, result.UnlockedCourses["MAT1102"].Retake)
	assert.False(t, result.UnlockedCourses["CSC2211"].Retake)
	assert.NotContains(t, result.UnlockedCourses, "CSC2106", "course in progress")
	assert.NotContains(t, result.UnlockedCourses, "CSC4299", "internship")
	assert.Equal(t, 3, result.CompletedCourses["CSC1102"].Credit)
	assert.Contains(t, result.SemesterClassRoutine, "2023-2024, Spring")
}

func TestResolveCommand_Summary(t *testing.T) {
	output, err := executeCommand(t, "resolve", "--in", filepath.Join("testdata", "snapshot.json"), "--json=false")
	require.NoError(t, err)

	assert.Contains(t, output, "AGGREGATION RESULT")
	assert.Contains(t, output, "Student:   Jane Doe")
	assert.Contains(t, output, "UNLOCKED COURSES (2)")
	assert.Contains(t, output, "MAT1102 DIFFERENTIAL CALCULUS (3 cr) [retake]")
}

func TestResolveCommand_InvalidSnapshot(t *testing.T) {
	_, err := executeCommand(t, "resolve", "--in", filepath.Join("testdata", "bad_snapshot.json"), "--json=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid snapshot")
}

func TestResolveCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "resolve", "--in", filepath.Join("testdata", "nope.json"), "--json=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read snapshot")
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name       string
		kind       string
		file       string
		wantErr    bool
		wantOutput string
	}{
		{"valid snapshot", "snapshot", "snapshot.json", false, "Validation passed"},
		{"invalid snapshot", "snapshot", "bad_snapshot.json", true, "Validation failed"},
		{"snapshot is not a result", "result", "snapshot.json", true, "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := executeCommand(t, "validate", "--kind", tt.kind, "--schema", "", "--json", filepath.Join("testdata", tt.file))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, output, tt.wantOutput)
		})
	}
}

func TestValidateCommand_UnknownKind(t *testing.T) {
	_, err := executeCommand(t, "validate", "--kind", "transcript", "--schema", "", "--json", filepath.Join("testdata", "snapshot.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "portal_agent ")
}
