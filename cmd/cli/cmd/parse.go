package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cliapi "fixture-matching/internal/cli"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a broker email through the extraction pipeline",
	Long: `Run one email through classification, field extraction, and the quality
gate. The body is read from --body, from --file, or from stdin. With
--persist, extracted records are stored and matched immediately.`,
	RunE: runParse,
}

var (
	parseSubject string
	parseBody    string
	parseFile    string
	parsePersist bool
)

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseSubject, "subject", "", "Email subject line")
	parseCmd.Flags().StringVar(&parseBody, "body", "", "Email body text")
	parseCmd.Flags().StringVar(&parseFile, "file", "", "Read the email body from a file (- for stdin)")
	parseCmd.Flags().BoolVar(&parsePersist, "persist", false, "Store extracted records and run matching")
}

// resolveParseBody picks the body source: --body wins, then --file, then
// stdin when it is piped.
func resolveParseBody() (string, error) {
	if parseBody != "" {
		return parseBody, nil
	}

	if parseFile != "" {
		if parseFile == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read stdin: %w", err)
			}
			return string(data), nil
		}
		data, err := os.ReadFile(parseFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", parseFile, err)
		}
		return string(data), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	return "", fmt.Errorf("no email body: use --body, --file, or pipe to stdin")
}

func runParse(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	body, err := resolveParseBody()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	spinner := cliapi.NewProgressSpinner("Parsing email...", config.NoColor)
	spinner.Start()
	result, err := client.Parse(&cliapi.ParseRequest{
		Subject: parseSubject,
		Body:    body,
		Persist: parsePersist,
	})
	spinner.Stop()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintParseResponse(result)
}
