package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"tracker/internal/config"
	"tracker/internal/logger"
	"tracker/internal/models"
	"tracker/internal/operations"
	"tracker/internal/remote"
	"tracker/internal/store"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Inventory and finance tracker for container imports",
	Long: `Tracker keeps the books of a small import business: products and
their weighted-average cost, supplier containers and payments, partner
equity, sales, expenses and cash.

All data lives in one JSON document stored in a GitHub repository or in
a local data directory. Every command loads the document, applies one
operation atomically and saves it back.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("data-file", "", "Data file to open (overrides DATA_FILE)")
	rootCmd.PersistentFlags().String("backend", "", "Document backend: github, file or memory (overrides TRACKER_BACKEND)")
}

// loadConfig reads the environment and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		os.Setenv("TRACKER_BACKEND", v)
	}
	if v, _ := cmd.Flags().GetString("data-file"); v != "" {
		os.Setenv("DATA_FILE", v)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newDocumentStore(ctx context.Context, cfg *config.Config) (remote.DocumentStore, error) {
	switch cfg.Backend {
	case config.BackendGitHub:
		return remote.NewGitHubStore(ctx, cfg.GetGitHubConfig())
	case config.BackendMemory:
		return remote.NewMemoryStore(), nil
	default:
		return remote.NewFileStore(cfg.DataDir)
	}
}

// openStore loads the configured data file.
func openStore(cmd *cobra.Command) (*config.Config, *store.Manager, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	rs, err := newDocumentStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize %s backend: %w", cfg.Backend, err)
	}

	m := store.New(rs, cfg.DataFile, cfg.StoreOptions()...)
	if err := m.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", cfg.DataFile, err)
	}

	log := logger.WithDataFile("cmd", cfg.DataFile)
	log.Debug().
		Str("backend", cfg.Backend).
		Str("version", string(m.Version())).
		Msg("Data file loaded")
	return cfg, m, nil
}

// runOperation opens the store, runs one operation and prints its result.
// A failed operation is returned as an error so the process exits non-zero.
func runOperation(cmd *cobra.Command, name string, fn func(ctx context.Context, svc *operations.Service) operations.Result) error {
	log := logger.WithComponent(name)

	_, m, err := openStore(cmd)
	if err != nil {
		return err
	}

	res := fn(cmd.Context(), operations.NewService(m))
	if err := m.Close(cmd.Context()); err != nil {
		return fmt.Errorf("failed to save %s: %w", m.Path(), err)
	}

	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s failed: %s", name, res.Error)
	}

	log.Debug().Str("id", res.ID).Msg("Operation completed")
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// addInputFlags registers --json and --file for commands that accept a
// structured input document.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("json", "", "Input as an inline JSON object")
	cmd.Flags().String("file", "", "Read the input JSON object from a file (- for stdin)")
}

// readInput decodes --json or --file into v. It reports whether an input
// document was given.
func readInput(cmd *cobra.Command, v any) (bool, error) {
	inline, _ := cmd.Flags().GetString("json")
	path, _ := cmd.Flags().GetString("file")

	var r io.Reader
	switch {
	case inline != "" && path != "":
		return false, fmt.Errorf("--json and --file are mutually exclusive")
	case inline != "":
		r = strings.NewReader(inline)
	case path == "-":
		r = cmd.InOrStdin()
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return false, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		r = f
	default:
		return false, nil
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return false, fmt.Errorf("invalid input JSON: %w", err)
	}
	return true, nil
}

// requireInput is readInput for commands that have no flag form.
func requireInput(cmd *cobra.Command, v any) error {
	ok, err := readInput(cmd, v)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("an input document is required (--json or --file)")
	}
	return nil
}

func today() string {
	return time.Now().Format(models.DateLayout)
}
