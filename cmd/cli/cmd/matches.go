package cmd

import (
	"github.com/spf13/cobra"

	cliapi "fixture-matching/internal/cli"
	"fixture-matching/internal/matching"
)

var matchCmd = &cobra.Command{
	Use:     "match",
	Aliases: []string{"matches"},
	Short:   "Run the matching engine and manage proposed fixtures",
}

var matchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches",
	RunE:  runMatchList,
}

var matchGetCmd = &cobra.Command{
	Use:   "get <match-id>",
	Short: "Get a match with its score breakdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchGet,
}

var matchRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Score all available vessels against all available cargos",
	Long: `Score every available vessel against every available cargo and report
the pairs at or above the retention threshold. Results are served from
cache when an identical run happened recently; use --force to bypass it.`,
	RunE: runMatchRun,
}

var matchAcceptCmd = &cobra.Command{
	Use:   "accept <match-id>",
	Short: "Accept a proposed match, fixing the vessel and cargo",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchAccept,
}

var matchRejectCmd = &cobra.Command{
	Use:   "reject <match-id>",
	Short: "Reject a proposed match",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchReject,
}

var (
	matchInteractive  bool
	matchForce        bool
	matchMinScore     float64
	matchMaxLaycanGap int
	matchMaxDistance  float64
)

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.AddCommand(matchListCmd)
	matchCmd.AddCommand(matchGetCmd)
	matchCmd.AddCommand(matchRunCmd)
	matchCmd.AddCommand(matchAcceptCmd)
	matchCmd.AddCommand(matchRejectCmd)

	matchListCmd.Flags().BoolVarP(&matchInteractive, "interactive", "i", false, "Browse matches in an interactive table")

	matchRunCmd.Flags().BoolVar(&matchForce, "force", false, "Bypass the match run cache")
	matchRunCmd.Flags().Float64Var(&matchMinScore, "min-score", 0, "Override the retention threshold")
	matchRunCmd.Flags().IntVar(&matchMaxLaycanGap, "max-laycan-gap", 0, "Override the laycan gap tolerance in days")
	matchRunCmd.Flags().Float64Var(&matchMaxDistance, "max-distance-days", 0, "Override the sailing time tolerance in days")
}

func runMatchList(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	matches, err := client.GetMatches()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if matchInteractive {
		return runInteractiveTable(matches, client, formatter, config)
	}

	return formatter.PrintMatches(matches)
}

func runMatchGet(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	match, err := client.GetMatch(id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintMatch(match)
}

func runMatchRun(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	req := &cliapi.RunMatchesRequest{Force: matchForce}
	if criteria := criteriaOverrides(); criteria != nil {
		req.Criteria = criteria
	}

	spinner := cliapi.NewProgressSpinner("Running matching engine...", config.NoColor)
	spinner.Start()
	result, err := client.RunMatches(req)
	spinner.Stop()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintRunMatches(result)
}

// criteriaOverrides builds a criteria payload from the run flags, or nil when
// no override flags were set. Unset fields stay zero and the server fills in
// its configured values.
func criteriaOverrides() *matching.Criteria {
	if matchMinScore == 0 && matchMaxLaycanGap == 0 && matchMaxDistance == 0 {
		return nil
	}

	return &matching.Criteria{
		MaxLaycanGapDays: matchMaxLaycanGap,
		MaxDistanceDays:  matchMaxDistance,
		MinMatchScore:    matchMinScore,
	}
}

func runMatchAccept(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	match, err := client.AcceptMatch(id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if !config.Quiet {
		formatter.PrintSuccess("Match accepted; vessel and cargo are now fixed")
	}
	return formatter.PrintMatch(match)
}

func runMatchReject(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	match, err := client.RejectMatch(id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if !config.Quiet {
		formatter.PrintSuccess("Match rejected")
	}
	return formatter.PrintMatch(match)
}
