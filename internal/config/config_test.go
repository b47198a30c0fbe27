package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8787", cfg.Backend.Endpoint)
	assert.Equal(t, "editor", cfg.Role)
	assert.True(t, cfg.Permissions().CanEdit)
}

func TestLoad_ReadsWorkspaceFile(t *testing.T) {
	dir := t.TempDir()
	yml := `backend:
  endpoint: https://ops.example.com
  timeout_ms: 3000
role: facilitator
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metronome.yml"), []byte(yml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://ops.example.com", cfg.Backend.Endpoint)
	assert.Equal(t, 3000, cfg.Backend.TimeoutMs)

	perms := cfg.Permissions()
	assert.False(t, perms.CanEdit)
	assert.False(t, perms.CanCreate)
	assert.True(t, perms.CanRunMeeting)
	assert.True(t, perms.CanMutate(), "facilitators mutate through meeting rights")
}

func TestFromYAML_RejectsUnknownRole(t *testing.T) {
	_, err := FromYAML([]byte("role: ghost\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestFromYAML_RejectsUnknownPermission(t *testing.T) {
	yml := `role: auditor
roles:
  auditor: [read_everything]
`
	_, err := FromYAML([]byte(yml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read_everything")
}

func TestGenerateDefault_RoundTrips(t *testing.T) {
	cfg, err := FromYAML([]byte(GenerateDefault()))
	require.NoError(t, err)
	assert.Equal(t, "editor", cfg.Role)
	assert.Equal(t, ":8787", cfg.Server.Listen)
}
