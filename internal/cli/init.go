package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OliwiaLewandowska/som-monitor/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize som-monitor configuration",
	Long:  `Create the configuration file with the tracked brand list and default query templates.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🚀 Welcome to som-monitor Setup")
	fmt.Println("===============================")
	fmt.Println()

	// Check if config already exists
	configPath := cfgFile
	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	if config.Exists(configPath) {
		fmt.Printf("Configuration file already exists at: %s\n", configPath)
		confirmed, err := promptYesNo(reader, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	newCfg := config.DefaultConfig()

	fmt.Println("\n🏷️  Brand Configuration")
	fmt.Println("-----------------------")

	brands, err := promptOptional(reader, fmt.Sprintf("Brands to track, comma-separated [%s]: ", strings.Join(newCfg.Brands, ", ")), "")
	if err != nil {
		return err
	}
	if brands != "" {
		newCfg.Brands = splitTrimmed(brands)
	}

	if err := newCfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Printf("%s✅ Configuration written to %s%s\n", SuccessStyle, configPath, Reset)
	fmt.Println("Edit the file to adjust query templates, storage backends and survey settings.")
	fmt.Println("Set provider API keys via OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY or PERPLEXITY_API_KEY.")
	return nil
}

func promptYesNo(reader *bufio.Reader, prompt string) (bool, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func promptOptional(reader *bufio.Reader, prompt, fallback string) (string, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
