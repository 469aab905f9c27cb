package ui

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/hourly/internal/config"
	"github.com/javiermolinar/hourly/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  hourly config`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInteractive()
		},
	}
}

func runConfigInteractive() error {
	configPath := config.DefaultConfigPath()
	fmt.Printf("Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	isNew := os.IsNotExist(fileErr)

	if isNew {
		fmt.Println("No config file found. Creating with default values...")
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Created %s\n\n", configPath)
	}

	// Display current config
	printConfig(cfg)

	// Ask if user wants to edit
	if !promptYesNo("\nWould you like to edit the configuration?") {
		return nil
	}

	// Interactive editing
	reader := bufio.NewReader(os.Stdin)

	cfg.Consultant.ID = promptValue(reader, "Consultant id", cfg.Consultant.ID)
	cfg.Backend.Mode = promptChoice(reader, "Backend", cfg.Backend.Mode, []string{config.BackendLocal, config.BackendRemote})
	if cfg.Backend.Mode == config.BackendRemote {
		cfg.Backend.BaseURL = promptValue(reader, "Base URL", cfg.Backend.BaseURL)
		cfg.Backend.Timeout = promptValue(reader, "Request timeout", cfg.Backend.Timeout)
	} else {
		cfg.Storage.DBPath = promptValue(reader, "Database path", cfg.Storage.DBPath)
	}
	cfg.Schedule.DayStart = promptValue(reader, "First visible hour", cfg.Schedule.DayStart)
	cfg.Schedule.DayEnd = promptValue(reader, "End of the last visible hour", cfg.Schedule.DayEnd)
	cfg.Schedule.MinWeeklySlots = promptInt(reader, "Minimum slots per week", cfg.Schedule.MinWeeklySlots)
	cfg.UI.Theme = promptChoice(reader, "UI theme", cfg.UI.Theme, theme.Available())

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Save
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println("\nConfiguration saved!")
	return nil
}

func printConfig(cfg *config.Config) {
	fmt.Println("Current configuration:")
	fmt.Println("──────────────────────")
	fmt.Println("[consultant]")
	fmt.Printf("  id               = %s\n", cfg.Consultant.ID)
	fmt.Println("\n[backend]")
	fmt.Printf("  mode             = %s\n", cfg.Backend.Mode)
	if cfg.Backend.Mode == config.BackendRemote {
		fmt.Printf("  base_url         = %s\n", cfg.Backend.BaseURL)
		fmt.Printf("  timeout          = %s\n", cfg.Backend.Timeout)
	}
	fmt.Println("\n[schedule]")
	fmt.Printf("  day_start        = %s\n", cfg.Schedule.DayStart)
	fmt.Printf("  day_end          = %s\n", cfg.Schedule.DayEnd)
	fmt.Printf("  min_weekly_slots = %d\n", cfg.Schedule.MinWeeklySlots)
	fmt.Println("\n[storage]")
	fmt.Printf("  db_path          = %s\n", cfg.Storage.DBPath)
	fmt.Println("\n[server]")
	fmt.Printf("  addr             = %s\n", cfg.Server.Addr)
	fmt.Printf("  driver           = %s\n", cfg.Server.Driver)
	fmt.Println("\n[ui]")
	fmt.Printf("  theme            = %s\n", cfg.UI.Theme)
	fmt.Println("\n[log]")
	fmt.Printf("  env              = %s\n", cfg.Log.Env)
	fmt.Printf("  file             = %s\n", cfg.Log.File)
}

func promptYesNo(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Printf("  %s: ", label)
	} else {
		fmt.Printf("  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, label string, current int) int {
	for {
		value := promptValue(reader, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil && n >= 0 {
			return n
		}
		fmt.Printf("  Invalid number %q\n", value)
	}
}

func promptChoice(reader *bufio.Reader, label, current string, options []string) string {
	joined := strings.Join(options, ", ")
	label = fmt.Sprintf("%s (%s)", label, joined)
	for {
		value := strings.ToLower(promptValue(reader, label, current))
		if slices.Contains(options, value) {
			return value
		}
		fmt.Printf("  Invalid value %q. Available: %s\n", value, joined)
	}
}
