package triage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/triage"
	"rescueDispatch/pkg/e"
)

func TestClassify_DefaultTable(t *testing.T) {
	t.Parallel()

	c := triage.New()
	cases := []struct {
		in        string
		priority  domain.Priority
		emergency bool
	}{
		{"critical", domain.PriorityEmergency, true},
		{" CRITICAL ", domain.PriorityEmergency, true},
		{"serious", domain.PriorityHigh, true},
		{"injured", domain.PriorityHigh, false},
		{"stable", domain.PriorityNormal, false},
		{"unknown", domain.PriorityNormal, false},
		{"", domain.PriorityNormal, false},
		{"minor", domain.PriorityLow, false},
	}
	for _, tc := range cases {
		p, em, err := c.Classify(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.priority, p, tc.in)
		assert.Equal(t, tc.emergency, em, tc.in)
		if em {
			assert.True(t, p.AllowsEmergency(), tc.in)
		}
	}
}

func TestClassify_UnknownDescriptor(t *testing.T) {
	t.Parallel()

	_, _, err := triage.New().Classify("levitating")
	require.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestNewFromTable_RejectsInconsistentRule(t *testing.T) {
	t.Parallel()

	_, err := triage.NewFromTable(map[string]triage.Result{
		"bleeding": {Priority: domain.PriorityLow, IsEmergency: true},
	})
	require.Error(t, err)

	_, err = triage.NewFromTable(map[string]triage.Result{
		"bleeding": {Priority: "Urgent"},
	})
	require.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "triage.yaml")
	body := `
descriptors:
  critical:
    priority: Emergency
    emergency: true
  bleeding:
    priority: High
    emergency: true
  hungry:
    priority: Low
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := triage.Load(path)
	require.NoError(t, err)

	p, em, err := c.Classify("Bleeding")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, p)
	assert.True(t, em)

	// unknown is always present even when the file omits it
	p, em, err = c.Classify("")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityNormal, p)
	assert.False(t, em)

	_, _, err = c.Classify("stable")
	require.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Parallel()

	c, err := triage.Load("")
	require.NoError(t, err)
	p, em, err := c.Classify("critical")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityEmergency, p)
	assert.True(t, em)
}
