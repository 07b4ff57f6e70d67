package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/csmareport/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/csmareport.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a csmareport configuration file",
		Long: `Init writes a commented .csmareport configuration file to the current
directory.

The file documents every chart that can be customized and the title,
axis label and color overrides each chart accepts.

Examples:
  # Create .csmareport in current directory
  csmareport init

  # Create config file at a specific path
  csmareport init -o charts.yaml

  # Force overwrite existing file
  csmareport init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/csmareport.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to customize the charts:")
	fmt.Fprintln(out, "  - Figure title of the performance panel")
	fmt.Fprintln(out, "  - Chart titles and axis labels")
	fmt.Fprintln(out, "  - Line colors")

	return nil
}
