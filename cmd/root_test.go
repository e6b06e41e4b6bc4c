package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker/internal/operations"
)

func inputCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addInputFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestReadInput(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		var in operations.ExpenseInput
		ok, err := readInput(inputCommand(t, "--json", `{"category":"rent","amountUSD":300}`), &in)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "rent", in.Category)
		assert.Equal(t, 300.0, in.AmountUSD)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sale.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"date":"2024-06-03","items":[{"productId":"p","quantityBags":2}]}`), 0o600))

		var in operations.SaleInput
		ok, err := readInput(inputCommand(t, "--file", path), &in)
		require.NoError(t, err)
		assert.True(t, ok)
		require.Len(t, in.Items, 1)
		assert.Equal(t, 2.0, in.Items[0].QuantityBags)
	})

	t.Run("stdin", func(t *testing.T) {
		c := inputCommand(t, "--file", "-")
		c.SetIn(strings.NewReader(`{"name":"Rice"}`))
		var in operations.ProductInput
		ok, err := readInput(c, &in)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Rice", in.Name)
	})

	t.Run("absent", func(t *testing.T) {
		var in operations.ProductInput
		ok, err := readInput(inputCommand(t), &in)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Error(t, requireInput(inputCommand(t), &in))
	})

	t.Run("unknown field", func(t *testing.T) {
		var in operations.ProductInput
		_, err := readInput(inputCommand(t, "--json", `{"nmae":"Rice"}`), &in)
		assert.Error(t, err)
	})

	t.Run("both sources", func(t *testing.T) {
		var in operations.ProductInput
		_, err := readInput(inputCommand(t, "--json", `{}`, "--file", "x.json"), &in)
		assert.Error(t, err)
	})
}

func TestProductAdd_FileBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKER_BACKEND", "file")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("DATA_FILE", "books.json")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"product", "add", "Rice", "--quantity", "5", "--cost", "3"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var res operations.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.ID)

	content, err := os.ReadFile(filepath.Join(dir, "books.json"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"name": "Rice"`)
}
