package cmd

import (
	"github.com/spf13/cobra"

	"fixture-matching/internal/database"
)

var vesselCmd = &cobra.Command{
	Use:     "vessel",
	Aliases: []string{"vessels"},
	Short:   "Manage vessel open positions",
}

var vesselListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all vessels",
	RunE:  runVesselList,
}

var vesselGetCmd = &cobra.Command{
	Use:   "get <vessel-id>",
	Short: "Get vessel details",
	Args:  cobra.ExactArgs(1),
	RunE:  runVesselGet,
}

var vesselAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a vessel open position",
	Long: `Register a vessel open position directly, bypassing email parsing.
Open window dates use YYYY-MM-DD format.`,
	RunE: runVesselAdd,
}

var vesselUpdateCmd = &cobra.Command{
	Use:   "update <vessel-id>",
	Short: "Update a vessel",
	Args:  cobra.ExactArgs(1),
	RunE:  runVesselUpdate,
}

var vesselDeleteCmd = &cobra.Command{
	Use:     "delete <vessel-id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a vessel",
	Args:    cobra.ExactArgs(1),
	RunE:    runVesselDelete,
}

var (
	vesselName      string
	vesselDWT       float64
	vesselGrain     float64
	vesselBale      float64
	vesselSpeed     float64
	vesselPort      string
	vesselOpenFrom  string
	vesselOpenUntil string
	vesselFeatures  []string
)

func init() {
	rootCmd.AddCommand(vesselCmd)
	vesselCmd.AddCommand(vesselListCmd)
	vesselCmd.AddCommand(vesselGetCmd)
	vesselCmd.AddCommand(vesselAddCmd)
	vesselCmd.AddCommand(vesselUpdateCmd)
	vesselCmd.AddCommand(vesselDeleteCmd)

	for _, cmd := range []*cobra.Command{vesselAddCmd, vesselUpdateCmd} {
		cmd.Flags().StringVar(&vesselName, "name", "", "Vessel name")
		cmd.Flags().Float64Var(&vesselDWT, "dwt", 0, "Deadweight tonnage in MT")
		cmd.Flags().Float64Var(&vesselGrain, "grain", 0, "Grain capacity in cubic meters")
		cmd.Flags().Float64Var(&vesselBale, "bale", 0, "Bale capacity in cubic meters")
		cmd.Flags().Float64Var(&vesselSpeed, "speed", 0, "Service speed in knots")
		cmd.Flags().StringVar(&vesselPort, "port", "", "Current or open port")
		cmd.Flags().StringVar(&vesselOpenFrom, "open-from", "", "Open window start (YYYY-MM-DD)")
		cmd.Flags().StringVar(&vesselOpenUntil, "open-until", "", "Open window end (YYYY-MM-DD)")
		cmd.Flags().StringSliceVar(&vesselFeatures, "feature", nil, "Vessel feature such as geared or box-shaped (repeatable)")
	}

	vesselAddCmd.MarkFlagRequired("name")
	vesselAddCmd.MarkFlagRequired("dwt")
	vesselAddCmd.MarkFlagRequired("port")
}

// vesselFromFlags builds a vessel payload from the add/update flag set
func vesselFromFlags() (*database.Vessel, error) {
	openFrom, err := parseDateFlag("open-from", vesselOpenFrom)
	if err != nil {
		return nil, err
	}
	openUntil, err := parseDateFlag("open-until", vesselOpenUntil)
	if err != nil {
		return nil, err
	}
	grain, err := parseOptionalFloat("grain", vesselGrain)
	if err != nil {
		return nil, err
	}
	bale, err := parseOptionalFloat("bale", vesselBale)
	if err != nil {
		return nil, err
	}

	return &database.Vessel{
		Name:          vesselName,
		DWT:           vesselDWT,
		GrainCapacity: grain,
		BaleCapacity:  bale,
		SpeedKnots:    vesselSpeed,
		CurrentPort:   vesselPort,
		OpenFrom:      openFrom,
		OpenUntil:     openUntil,
		Features:      vesselFeatures,
	}, nil
}

func runVesselList(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	vessels, err := client.GetVessels()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintVessels(vessels)
}

func runVesselGet(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	vessel, err := client.GetVessel(id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintVessel(vessel)
}

func runVesselAdd(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	vessel, err := vesselFromFlags()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	created, err := client.CreateVessel(vessel)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if !config.Quiet {
		formatter.PrintSuccess("Vessel registered successfully")
	}
	return formatter.PrintVessel(created)
}

func runVesselUpdate(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	vessel, err := vesselFromFlags()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	updated, err := client.UpdateVessel(id, vessel)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if !config.Quiet {
		formatter.PrintSuccess("Vessel updated successfully")
	}
	return formatter.PrintVessel(updated)
}

func runVesselDelete(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if err := client.DeleteVessel(id); err != nil {
		formatter.PrintError(err)
		return err
	}

	if !config.Quiet {
		formatter.PrintSuccess("Vessel deleted successfully")
	}
	return nil
}
