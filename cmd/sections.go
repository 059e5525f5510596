package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/plexlint/internal/catalog"
	"github.com/jfmyers9/plexlint/internal/config"
)

const defaultSectionFormat = "{{.Title}}"

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the libraries on the Plex server",
	Long: `List the library sections on the configured Plex server.

Use the names shown here in the libraries list of the config file. Libraries
that are already configured are marked with *.

The output format can be customized with a Go template.
Available fields: .Key, .Title, .Type`,
	RunE: runSections,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)

	sectionsCmd.Flags().StringP("format", "f", defaultSectionFormat, "Output format template")
	sectionsCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled)")
	sectionsCmd.Flags().Bool("music-only", false, "Only list music libraries")
}

func runSections(cmd *cobra.Command, args []string) error {
	logger, _, closeLog := setupLogger(logFile, logLevel)
	defer closeLog()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cat, err := connect(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr(), cfg, logger)
	if err != nil {
		return err
	}

	sections, err := cat.Sections(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	width, _ := cmd.Flags().GetInt("width")
	musicOnly, _ := cmd.Flags().GetBool("music-only")

	configured := make(map[string]bool)
	for _, lib := range cfg.Content.Libraries {
		configured[lib] = true
	}

	for _, s := range sections {
		if musicOnly && s.Type != "artist" {
			continue
		}

		output, err := formatSection(s, format)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		if width > 0 {
			output = padToWidth(output, width)
		}

		marker := " "
		if configured[s.Title] {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, output)
	}
	return nil
}

// formatSection applies the template to the section data
func formatSection(section catalog.SectionInfo, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, section); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// A wide rune at the cut can leave the result one column short
		if resultWidth := runewidth.StringWidth(result); resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text
}
