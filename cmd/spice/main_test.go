package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/storage"
)

// runSpice executes the CLI against a database in dir.
func runSpice(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", filepath.Join(dir, "spice.db"), "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runSpice(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "spice version dev")
}

func TestMigrateCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := runSpice(t, dir, "", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")

	out, err = runSpice(t, dir, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "from version 0 to")

	out, err = runSpice(t, dir, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "already at version")
}

func TestCategoriesCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := runSpice(t, dir, "", "categories", "add", "Cà phê", "--icon", "☕")
	require.NoError(t, err)
	assert.Contains(t, out, `Created expense category "Cà phê"`)

	out, err = runSpice(t, dir, "", "categories", "add", "Thưởng Tết", "--type", "income")
	require.NoError(t, err)
	assert.Contains(t, out, "Created income category")

	_, err = runSpice(t, dir, "", "categories", "add", "X", "--type", "savings")
	require.Error(t, err)

	out, err = runSpice(t, dir, "", "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Cà phê")
	assert.Contains(t, out, "Thưởng Tết")

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "spice.db"))
	require.NoError(t, err)
	cafe, err := store.GetCategoryByName(context.Background(), "Cà phê")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err = runSpice(t, dir, "n\n", "categories", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion cancelled.")

	out, err = runSpice(t, dir, "", "categories", "delete", "--force", strconv.FormatInt(cafe.ID, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted category")

	out, err = runSpice(t, dir, "", "categories", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Cà phê")
}

func TestParseCategoryType(t *testing.T) {
	tests := []struct {
		in      string
		want    model.CategoryType
		wantErr bool
	}{
		{in: "income", want: model.CategoryTypeIncome},
		{in: " Expense ", want: model.CategoryTypeExpense},
		{in: "savings", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCategoryType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModelsCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := runSpice(t, dir, "", "models", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved models")

	out, err = runSpice(t, dir, "", "models", "reset", "--force", "intent")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted intent model")

	_, err = runSpice(t, dir, "", "models", "reset", "--force", "weather")
	require.Error(t, err)
}

func TestCorrectCmd_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := runSpice(t, dir, "", "correct", "some-id", "not-a-number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid category ID")

	_, err = runSpice(t, dir, "", "correct", "missing-draft", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record correction")
}
