package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstMatchStopsAtFirstConfidentRule(t *testing.T) {
	secondCalled := false

	result, err := firstMatch([]Rule{
		{Name: "first", Extract: func() (string, bool, error) { return "value-a", true, nil }},
		{Name: "second", Extract: func() (string, bool, error) {
			secondCalled = true
			return "value-b", true, nil
		}},
	})

	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "value-a", result.Value)
	assert.Equal(t, "first", result.Source)
	assert.False(t, secondCalled, "lower-priority rule must not run after a match")
}

func TestFirstMatchFallsThroughUnconfidentRules(t *testing.T) {
	result, err := firstMatch([]Rule{
		{Name: "first", Extract: func() (string, bool, error) { return "", false, nil }},
		{Name: "second", Extract: func() (string, bool, error) { return "value-b", true, nil }},
	})

	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "value-b", result.Value)
	assert.Equal(t, "second", result.Source)
}

func TestFirstMatchExhaustedIsNotAnError(t *testing.T) {
	result, err := firstMatch([]Rule{
		{Name: "first", Extract: func() (string, bool, error) { return "", false, nil }},
		{Name: "second", Extract: func() (string, bool, error) { return "", false, nil }},
	})

	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, result.Value)
	assert.Empty(t, result.Source)
}

func TestFirstMatchRuleErrorAbortsCascade(t *testing.T) {
	fault := errors.New("page crashed")
	secondCalled := false

	_, err := firstMatch([]Rule{
		{Name: "first", Extract: func() (string, bool, error) { return "", false, fault }},
		{Name: "second", Extract: func() (string, bool, error) {
			secondCalled = true
			return "value-b", true, nil
		}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, fault)
	assert.Contains(t, err.Error(), "first")
	assert.False(t, secondCalled)
}
