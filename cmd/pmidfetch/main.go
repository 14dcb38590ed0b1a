// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pmidfetch CLI: it retrieves the
// PMIDs matching a PubMed query and optionally narrows them to the ones
// PubTator annotates with chosen biomedical concepts.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/giangpth/Alkaptonuria/internal/annotate"
	"github.com/giangpth/Alkaptonuria/internal/collect"
	"github.com/giangpth/Alkaptonuria/internal/httputil"
	"github.com/giangpth/Alkaptonuria/internal/run"
	"github.com/giangpth/Alkaptonuria/internal/secrets"
	"github.com/giangpth/Alkaptonuria/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command; the fetch pipeline runs directly on it.
var rootCmd = &cobra.Command{
	Use:   "pmidfetch <keyword>",
	Short: "Fetch PubMed PMIDs for a query, optionally filtered by PubTator concepts",
	Long: `pmidfetch retrieves every PMID matching a PubMed query (free text or full
PubMed search syntax) by paging through the esearch API. With --concepts it
then keeps only PMIDs for which PubTator reports at least one annotation of
the requested concept types (disease, gene, chemical, mutation, species,
cellline).

PMIDs are printed one per line, deduplicated and sorted ascending by
numeric value.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
	RunE: runFetch,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pmidfetch.yaml or ~/.config/pmidfetch/config.yaml)")

	rootCmd.Flags().String("concepts", "", "comma-separated PubTator concepts to filter by (disease,gene,chemical,mutation,species,cellline)")
	rootCmd.Flags().String("out", "", "write PMIDs to file; else print to stdout")
	rootCmd.Flags().String("save", "", "write a YAML record of the run to file")
	rootCmd.Flags().Int("chunk", 0, "PMIDs per esearch page (default 10000)")
	rootCmd.Flags().Int("page", 0, "PMIDs per annotation export batch (default 1000)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pmidfetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pmidfetch"))
		}
	}

	viper.SetEnvPrefix("PMIDFETCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	keyword := args[0]

	collectCfg := types.CollectConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting("search_timeout", types.DefaultSearchTimeout),
			UserAgent: stringSetting("user_agent", types.DefaultUserAgent),
		},
		ChunkSize: intSetting(cmd, "chunk", "chunk_size", types.DefaultChunkSize),
		PageDelay: durationSetting("page_delay", types.DefaultPageDelay),
		APIKey:    loadedSecrets["ncbi-api-key"],
	}
	filterCfg := types.FilterConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting("export_timeout", types.DefaultExportTimeout),
			UserAgent: collectCfg.UserAgent,
		},
		PageSize:   intSetting(cmd, "page", "page_size", types.DefaultPageSize),
		BatchDelay: durationSetting("batch_delay", types.DefaultBatchDelay),
	}

	ctx := cmd.Context()

	collector := &collect.Collector{
		Client: &http.Client{Timeout: collectCfg.Timeout},
	}
	pmids, err := collector.Collect(ctx, keyword, collectCfg)
	if err != nil {
		return err
	}
	collected := len(pmids)

	conceptsArg, _ := cmd.Flags().GetString("concepts")
	concepts := annotate.NormalizeConcepts(conceptsArg)
	if len(concepts) > 0 {
		filter := &annotate.Filter{
			Client: &http.Client{Timeout: filterCfg.Timeout},
		}
		keep, err := filter.Keep(ctx, pmids, concepts, filterCfg)
		if err != nil {
			return err
		}
		subset := make([]types.PMID, 0, len(keep))
		for id := range keep {
			subset = append(subset, id)
		}
		pmids = types.SortUnique(subset)
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath != "" {
		if err := writePMIDs(outPath, pmids); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d PMIDs to %s\n", len(pmids), outPath)
	} else {
		for _, id := range pmids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "\nTotal PMIDs: %d\n", len(pmids))
	}

	savePath, _ := cmd.Flags().GetString("save")
	if savePath != "" {
		rec := run.Record{
			Query:    keyword,
			Concepts: concepts,
			Settings: run.Settings{ChunkSize: collectCfg.ChunkSize},
			Summary: run.Summary{
				Collected: collected,
				Kept:      len(pmids),
				Timestamp: time.Now(),
			},
			PMIDs: pmids,
		}
		if len(concepts) > 0 {
			rec.Settings.PageSize = filterCfg.PageSize
		}
		if err := run.WriteRecord(savePath, rec); err != nil {
			return err
		}
	}

	return nil
}

// writePMIDs writes one PMID per line to path.
func writePMIDs(path string, pmids []types.PMID) error {
	var b strings.Builder
	for _, id := range pmids {
		b.WriteString(string(id))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// intSetting resolves an int setting: flag, then config file, then default.
func intSetting(cmd *cobra.Command, flagName, viperKey string, def int) int {
	if v, _ := cmd.Flags().GetInt(flagName); v > 0 {
		return v
	}
	if viper.IsSet(viperKey) {
		return viper.GetInt(viperKey)
	}
	return def
}

func stringSetting(viperKey, def string) string {
	if viper.IsSet(viperKey) {
		return viper.GetString(viperKey)
	}
	return def
}

func durationSetting(viperKey string, def time.Duration) time.Duration {
	if viper.IsSet(viperKey) {
		return viper.GetDuration(viperKey)
	}
	return def
}

// classify maps pipeline errors to the one-line diagnostics the tool
// prints before exiting nonzero.
func classify(err error) string {
	var te *httputil.TransientError
	if errors.As(err, &te) {
		return fmt.Sprintf("HTTP error: %v", err)
	}
	var re *httputil.RequestError
	if errors.As(err, &re) {
		return fmt.Sprintf("Request failed: %v", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, classify(err))
		os.Exit(1)
	}
}
