package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialise configuration",
	Long: `Shows the effective configuration: the settings file layered with
.env files and environment variables. API keys are masked.`,
	Annotations: map[string]string{annotationServices: needsSettings},
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective configuration",
	Annotations: map[string]string{annotationServices: needsSettings},
	RunE:        runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:         "check",
	Short:       "Check that the embedding and language providers are reachable",
	Annotations: map[string]string{annotationServices: needsSettings},
	RunE:        runConfigCheck,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	Long: `Writes the current settings to the settings file so they can be edited.
API keys are never written; set them in the environment or a .env file.`,
	Annotations: map[string]string{annotationServices: needsSettings},
	RunE:        runConfigInit,
}

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing settings file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if appSettings == nil {
		return errors.New("settings not configured")
	}
	settings := appSettings

	cmd.Println("Current Settings")
	cmd.Println("================")
	if settingsPath != "" {
		cmd.Printf("File: %s\n", settingsPath)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	printAPIKey(cmd, settings.Embedding.Provider, settings.Embedding.APIKey)
	printStatus(cmd, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	printAPIKey(cmd, settings.LLM.Provider, settings.LLM.APIKey)
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	if settings.LLM.MaxTokens > 0 {
		cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	}
	printStatus(cmd, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Corpus]")
	cmd.Printf("  Directory: %s\n", settings.Corpus.Dir)
	cmd.Printf("  PDF segmentation: %s\n", settings.Corpus.SegmentMode)
	cmd.Println()

	cmd.Println("[Index]")
	if settings.Index.InMemory {
		cmd.Println("  Storage: in memory")
	} else {
		dir := settings.Index.Dir
		if dir == "" {
			dir = "(default)"
		}
		cmd.Printf("  Directory: %s\n", dir)
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Query]")
	cmd.Printf("  Top K: %d\n", settings.Query.TopK)
	cmd.Printf("  Refine follow-ups: %t\n", settings.Query.Refine)
	cmd.Println()

	cmd.Println("[Guard]")
	cmd.Printf("  Timeout: %s\n", settings.Guard.Timeout)
	cmd.Printf("  Max attempts: %d\n", settings.Guard.MaxAttempts)
	if settings.Guard.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f/s\n", settings.Guard.RequestsPerSecond)
	}
	cmd.Printf("  Breaker: %d failures, %s cooldown\n", settings.Guard.BreakerFailures, settings.Guard.BreakerCooldown)

	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if checkProvider == nil {
		return errors.New("provider check not configured")
	}

	cmd.Print("Validating providers... ")
	if err := checkProvider(cmd.Context()); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if appSettings == nil || saveSettings == nil {
		return errors.New("settings not configured")
	}

	if !configInitForce && settingsPath != "" {
		if _, err := os.Stat(settingsPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", settingsPath)
		}
	}

	if err := saveSettings(*appSettings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Wrote %s\n", settingsPath)
	return nil
}

func printAPIKey(cmd *cobra.Command, p domain.AIProvider, key string) {
	if !p.RequiresAPIKey() {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
