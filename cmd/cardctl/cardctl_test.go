package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ksred/card-check/internal/services"
)

func runCardctl(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cards.db")
}

func TestVerify_ValidCard(t *testing.T) {
	dbPath := tempDBPath(t)

	out, _, err := runCardctl(t, "--db-path", dbPath, "verify",
		"--number", "4532 0151 1283 0366", "--expiry", "12/30", "--cvv", "123")
	require.NoError(t, err)

	assert.Contains(t, out, services.MsgValid)
	assert.Contains(t, out, "Logged as record #1")
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "card_number  true")
}

func TestVerify_InvalidCardIsStillLogged(t *testing.T) {
	dbPath := tempDBPath(t)

	out, _, err := runCardctl(t, "--db-path", dbPath, "verify",
		"--number", "1234567812345678", "--expiry", "13/25", "--cvv", "12")
	require.NoError(t, err)

	assert.Contains(t, out, services.MsgInvalid)
	assert.Contains(t, out, services.MsgInvalidCardNumber)
	assert.Contains(t, out, services.MsgInvalidExpiry)
	assert.Contains(t, out, services.MsgInvalidCVV)
	assert.Contains(t, out, "Logged as record #1")
}

func TestVerify_Incomplete(t *testing.T) {
	dbPath := tempDBPath(t)

	out, _, err := runCardctl(t, "--db-path", dbPath, "verify", "--number", "4532015112830366")
	require.Error(t, err)

	assert.Contains(t, out, services.MsgIncomplete)
	assert.Contains(t, out, "expiry")
	assert.Contains(t, out, "cvv")

	// nothing was logged
	out, _, err = runCardctl(t, "--db-path", dbPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No verification records found.")
}

func TestVerify_DryRun(t *testing.T) {
	dbPath := tempDBPath(t)

	out, _, err := runCardctl(t, "--db-path", dbPath, "verify", "--dry-run",
		"--number", "4532015112830366", "--expiry", "12/30", "--cvv", "123")
	require.NoError(t, err)
	assert.Contains(t, out, services.MsgValid)
	assert.Contains(t, out, "Dry run: nothing was logged")

	assert.NoFileExists(t, dbPath)
}

func TestVerify_JSONOutput(t *testing.T) {
	dbPath := tempDBPath(t)

	out, _, err := runCardctl(t, "--db-path", dbPath, "-o", "json", "verify",
		"--number", "4532015112830366", "--expiry", "12/30", "--cvv", "123")
	require.NoError(t, err)

	var outcome services.VerificationOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.True(t, outcome.Valid)
	assert.Equal(t, uint(1), outcome.RecordID)
}

func TestVerify_UnknownOutputFormat(t *testing.T) {
	_, _, err := runCardctl(t, "--db-path", tempDBPath(t), "-o", "xml", "verify",
		"--number", "4532015112830366", "--expiry", "12/30", "--cvv", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestList_NewestFirst(t *testing.T) {
	dbPath := tempDBPath(t)

	_, _, err := runCardctl(t, "--db-path", dbPath, "verify",
		"--number", "4532015112830366", "--expiry", "12/30", "--cvv", "123")
	require.NoError(t, err)
	_, _, err = runCardctl(t, "--db-path", dbPath, "verify",
		"--number", "1234567812345678", "--expiry", "12/30", "--cvv", "4567")
	require.NoError(t, err)

	out, _, err := runCardctl(t, "--db-path", dbPath, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "VERIFIED AT")
	assert.Contains(t, lines[0], "CARD NUMBER")
	assert.True(t, strings.HasPrefix(lines[1], "2"), "newest record first: %q", lines[1])
	assert.Contains(t, lines[1], "1234567812345678")
	assert.Contains(t, lines[1], "4567")
	assert.Contains(t, lines[1], "invalid")
	assert.Contains(t, lines[2], "4532015112830366")
	assert.Contains(t, lines[2], "valid")
}

func TestList_Redact(t *testing.T) {
	dbPath := tempDBPath(t)

	_, _, err := runCardctl(t, "--db-path", dbPath, "verify",
		"--number", "4532015112830366", "--expiry", "12/30", "--cvv", "987")
	require.NoError(t, err)

	out, _, err := runCardctl(t, "--db-path", dbPath, "list", "--redact")
	require.NoError(t, err)

	assert.Contains(t, out, "************0366")
	assert.NotContains(t, out, "4532015112830366")
	assert.NotContains(t, out, "987")
}

func TestList_YAMLOutput(t *testing.T) {
	dbPath := tempDBPath(t)

	_, _, err := runCardctl(t, "--db-path", dbPath, "verify",
		"--number", "4532015112830366", "--expiry", "12/30", "--cvv", "123")
	require.NoError(t, err)

	out, _, err := runCardctl(t, "--db-path", dbPath, "-o", "yaml", "list")
	require.NoError(t, err)

	var records []listedRecord
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, uint(1), records[0].ID)
	assert.Equal(t, "12/30", records[0].Expiry)
	assert.Equal(t, "valid", records[0].Status)
}

func TestList_MissingDatabase(t *testing.T) {
	dbPath := tempDBPath(t)

	_, _, err := runCardctl(t, "--db-path", dbPath, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestMigrate(t *testing.T) {
	dbPath := tempDBPath(t)

	out, _, err := runCardctl(t, "--db-path", dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date")

	out, _, err = runCardctl(t, "--db-path", dbPath, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "create_verification_records")
	assert.Contains(t, out, "add_status_column")
	assert.Contains(t, out, "applied")
	assert.Contains(t, out, "No pending migrations")

	out, _, err = runCardctl(t, "--db-path", dbPath, "-o", "json", "migrate", "--status")
	require.NoError(t, err)
	var states []migrationState
	require.NoError(t, json.Unmarshal([]byte(out), &states))
	require.Len(t, states, 2)
	assert.Equal(t, "applied", states[0].State)
	assert.NotEmpty(t, states[0].AppliedAt)

	// running again is a no-op
	_, _, err = runCardctl(t, "--db-path", dbPath, "migrate")
	require.NoError(t, err)
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    outputFormat
		wantErr bool
	}{
		{"", outputTable, false},
		{"table", outputTable, false},
		{"json", outputJSON, false},
		{"YAML", outputYAML, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOutputFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
