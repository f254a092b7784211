package cmd

import (
	"github.com/spf13/cobra"

	"fixture-matching/internal/database"
)

var cargoCmd = &cobra.Command{
	Use:     "cargo",
	Aliases: []string{"cargos"},
	Short:   "Manage cargo orders",
}

var cargoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cargos",
	RunE:  runCargoList,
}

var cargoGetCmd = &cobra.Command{
	Use:   "get <cargo-id>",
	Short: "Get cargo details",
	Args:  cobra.ExactArgs(1),
	RunE:  runCargoGet,
}

var cargoAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a cargo order",
	Long: `Register a cargo order directly, bypassing email parsing.
Laycan dates use YYYY-MM-DD format.`,
	RunE: runCargoAdd,
}

var cargoUpdateCmd = &cobra.Command{
	Use:   "update <cargo-id>",
	Short: "Update a cargo",
	Args:  cobra.ExactArgs(1),
	RunE:  runCargoUpdate,
}

var cargoDeleteCmd = &cobra.Command{
	Use:     "delete <cargo-id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a cargo",
	Args:    cobra.ExactArgs(1),
	RunE:    runCargoDelete,
}

var (
	cargoCommodity     string
	cargoQuantity      float64
	cargoLoadPort      string
	cargoDischargePort string
	cargoLaycanFrom    string
	cargoLaycanUntil   string
	cargoStowageFactor float64
	cargoSFUnit        string
	cargoBrokenStowage float64
	cargoRequirements  []string
)

func init() {
	rootCmd.AddCommand(cargoCmd)
	cargoCmd.AddCommand(cargoListCmd)
	cargoCmd.AddCommand(cargoGetCmd)
	cargoCmd.AddCommand(cargoAddCmd)
	cargoCmd.AddCommand(cargoUpdateCmd)
	cargoCmd.AddCommand(cargoDeleteCmd)

	for _, cmd := range []*cobra.Command{cargoAddCmd, cargoUpdateCmd} {
		cmd.Flags().StringVar(&cargoCommodity, "commodity", "", "Commodity name")
		cmd.Flags().Float64Var(&cargoQuantity, "quantity", 0, "Quantity in MT")
		cmd.Flags().StringVar(&cargoLoadPort, "load-port", "", "Load port")
		cmd.Flags().StringVar(&cargoDischargePort, "discharge-port", "", "Discharge port")
		cmd.Flags().StringVar(&cargoLaycanFrom, "laycan-from", "", "Laycan start (YYYY-MM-DD)")
		cmd.Flags().StringVar(&cargoLaycanUntil, "laycan-until", "", "Laycan end (YYYY-MM-DD)")
		cmd.Flags().Float64Var(&cargoStowageFactor, "sf", 0, "Stowage factor")
		cmd.Flags().StringVar(&cargoSFUnit, "sf-unit", "", "Stowage factor unit (m3/mt or ft3/lt)")
		cmd.Flags().Float64Var(&cargoBrokenStowage, "broken-stowage", 0, "Broken stowage percentage")
		cmd.Flags().StringSliceVar(&cargoRequirements, "requirement", nil, "Vessel requirement such as geared (repeatable)")
	}

	cargoAddCmd.MarkFlagRequired("commodity")
	cargoAddCmd.MarkFlagRequired("quantity")
	cargoAddCmd.MarkFlagRequired("load-port")
}

// cargoFromFlags builds a cargo payload from the add/update flag set
func cargoFromFlags() (*database.Cargo, error) {
	laycanFrom, err := parseDateFlag("laycan-from", cargoLaycanFrom)
	if err != nil {
		return nil, err
	}
	laycanUntil, err := parseDateFlag("laycan-until", cargoLaycanUntil)
	if err != nil {
		return nil, err
	}
	sf, err := parseOptionalFloat("sf", cargoStowageFactor)
	if err != nil {
		return nil, err
	}

	return &database.Cargo{
		Commodity:         cargoCommodity,
		Quantity:          cargoQuantity,
		LoadPort:          cargoLoadPort,
		DischargePort:     cargoDischargePort,
		LaycanFrom:        laycanFrom,
		LaycanUntil:       laycanUntil,
		StowageFactor:     sf,
		StowageFactorUnit: cargoSFUnit,
		BrokenStowagePct:  cargoBrokenStowage,
		Requirements:      cargoRequirements,
	}, nil
}

func runCargoList(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	cargos, err := client.GetCargos()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintCargos(cargos)
}

func runCargoGet(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	cargo, err := client.GetCargo(id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintCargo(cargo)
}

func runCargoAdd(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	cargo, err := cargoFromFlags()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	created, err := client.CreateCargo(cargo)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if !config.Quiet {
		formatter.PrintSuccess("Cargo registered successfully")
	}
	return formatter.PrintCargo(created)
}

func runCargoUpdate(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	cargo, err := cargoFromFlags()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	updated, err := client.UpdateCargo(id, cargo)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if !config.Quiet {
		formatter.PrintSuccess("Cargo updated successfully")
	}
	return formatter.PrintCargo(updated)
}

func runCargoDelete(cmd *cobra.Command, args []string) error {
	config, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	id, err := validateAndParseID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if err := client.DeleteCargo(id); err != nil {
		formatter.PrintError(err)
		return err
	}

	if !config.Quiet {
		formatter.PrintSuccess("Cargo deleted successfully")
	}
	return nil
}
