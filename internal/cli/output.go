package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"fixture-matching/internal/database"
	"fixture-matching/internal/matching"
)

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format string
	quiet  bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(format string, quiet bool) *OutputFormatter {
	return &OutputFormatter{
		format: format,
		quiet:  quiet,
	}
}

// PrintVessels prints a list of vessels
func (f *OutputFormatter) PrintVessels(vessels []database.Vessel) error {
	if f.quiet {
		for _, vessel := range vessels {
			fmt.Printf("%d\n", vessel.ID)
		}
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(vessels)
	case "table":
		return f.printVesselsTable(vessels)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintVessel prints a single vessel
func (f *OutputFormatter) PrintVessel(vessel *database.Vessel) error {
	if f.quiet {
		fmt.Printf("%d\n", vessel.ID)
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(vessel)
	case "table":
		return f.printVesselDetail(vessel)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintCargos prints a list of cargos
func (f *OutputFormatter) PrintCargos(cargos []database.Cargo) error {
	if f.quiet {
		for _, cargo := range cargos {
			fmt.Printf("%d\n", cargo.ID)
		}
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(cargos)
	case "table":
		return f.printCargosTable(cargos)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintCargo prints a single cargo
func (f *OutputFormatter) PrintCargo(cargo *database.Cargo) error {
	if f.quiet {
		fmt.Printf("%d\n", cargo.ID)
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(cargo)
	case "table":
		return f.printCargoDetail(cargo)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintMatches prints stored matches
func (f *OutputFormatter) PrintMatches(matches []database.Match) error {
	if f.quiet {
		for _, match := range matches {
			fmt.Printf("%d\n", match.ID)
		}
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(matches)
	case "table":
		return f.printMatchesTable(matches)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintMatch prints one match with its score breakdown
func (f *OutputFormatter) PrintMatch(match *database.Match) error {
	if f.quiet {
		fmt.Printf("%d\n", match.ID)
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(match)
	case "table":
		return f.printMatchDetail(match)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintPorts prints the port gazetteer
func (f *OutputFormatter) PrintPorts(ports []database.Port) error {
	if f.quiet {
		for _, port := range ports {
			fmt.Printf("%d\n", port.ID)
		}
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(ports)
	case "table":
		return f.printPortsTable(ports)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintRunMatches prints the summary of a matching run
func (f *OutputFormatter) PrintRunMatches(result *RunMatchesResponse) error {
	if f.format == "json" {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	if !f.quiet {
		fmt.Printf("Scored %d vessels against %d cargos in %dms\n",
			result.VesselCount, result.CargoCount, result.ProcessingTimeMS)
		fmt.Printf("Matches at or above threshold: %d\n\n", result.TotalMatches)
	}
	return f.PrintMatches(result.Matches)
}

// PrintRetrain prints a classifier retraining summary
func (f *OutputFormatter) PrintRetrain(result *RetrainResponse) error {
	if f.format == "json" {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Printf("Classifier retrained on %d examples (%d terms)\n",
		result.TrainedOn, result.VocabularySize)
	return nil
}

// PrintParseResponse prints a parse-and-match summary
func (f *OutputFormatter) PrintParseResponse(result *ParseResponse) error {
	if f.format == "json" {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Printf("Label: %s (%.0f%% confidence)\n", result.Label, result.LabelConfidence*100)
	fmt.Printf("Gate decision: %s\n", result.GateDecision)
	fmt.Printf("Vessels found: %d\n", result.VesselsFound)
	fmt.Printf("Cargos found: %d\n", result.CargosFound)
	fmt.Printf("Matches: %d\n", result.TotalMatches)
	fmt.Printf("Processing time: %dms\n", result.ProcessingTimeMS)

	if len(result.Matches) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "SCORE\tVESSEL\tCARGO\tRATIONALE")
	for _, match := range result.Matches {
		fmt.Fprintf(w, "%.0f\t%s\t%s\t%s\n",
			match.Score,
			truncate(match.Vessel.Name, 20),
			truncate(match.Cargo.Commodity, 15),
			truncate(match.Rationale, 60))
	}
	return nil
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Printf("✓ %s\n", message)
	}
}

// PrintError prints an error message
func (f *OutputFormatter) PrintError(err error) {
	if !f.quiet {
		fmt.Fprintf(os.Stderr, "✗ Error: %v\n", err)
	}
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Printf("ℹ %s\n", message)
	}
}

// printVesselsTable prints vessels in table format
func (f *OutputFormatter) printVesselsTable(vessels []database.Vessel) error {
	if len(vessels) == 0 {
		fmt.Println("No vessels found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tNAME\tDWT\tPORT\tOPEN\tSTATUS")

	for _, vessel := range vessels {
		fmt.Fprintf(w, "%d\t%s\t%.0f\t%s\t%s\t%s\n",
			vessel.ID,
			truncate(vessel.Name, 20),
			vessel.DWT,
			truncate(vessel.CurrentPort, 15),
			formatWindow(vessel.OpenFrom, vessel.OpenUntil),
			vessel.Status)
	}

	return nil
}

// printVesselDetail prints a single vessel in detail format
func (f *OutputFormatter) printVesselDetail(vessel *database.Vessel) error {
	fmt.Printf("Vessel ID: %d\n", vessel.ID)
	fmt.Printf("Name: %s\n", vessel.Name)
	fmt.Printf("DWT: %.0f MT\n", vessel.DWT)
	if vessel.GrainCapacity != nil {
		fmt.Printf("Grain capacity: %.0f cbm\n", *vessel.GrainCapacity)
	}
	if vessel.BaleCapacity != nil {
		fmt.Printf("Bale capacity: %.0f cbm\n", *vessel.BaleCapacity)
	}
	fmt.Printf("Speed: %.1f knots\n", vessel.SpeedKnots)
	fmt.Printf("Current port: %s\n", vessel.CurrentPort)
	fmt.Printf("Open: %s\n", formatWindow(vessel.OpenFrom, vessel.OpenUntil))
	if len(vessel.Features) > 0 {
		fmt.Printf("Features: %s\n", strings.Join(vessel.Features, ", "))
	}
	fmt.Printf("Status: %s\n", vessel.Status)
	fmt.Printf("Created: %s\n", vessel.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

// printCargosTable prints cargos in table format
func (f *OutputFormatter) printCargosTable(cargos []database.Cargo) error {
	if len(cargos) == 0 {
		fmt.Println("No cargos found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tCOMMODITY\tQTY\tLOAD\tDISCHARGE\tLAYCAN\tSTATUS")

	for _, cargo := range cargos {
		fmt.Fprintf(w, "%d\t%s\t%.0f\t%s\t%s\t%s\t%s\n",
			cargo.ID,
			truncate(cargo.Commodity, 15),
			cargo.Quantity,
			truncate(cargo.LoadPort, 15),
			truncate(cargo.DischargePort, 15),
			formatWindow(cargo.LaycanFrom, cargo.LaycanUntil),
			cargo.Status)
	}

	return nil
}

// printCargoDetail prints a single cargo in detail format
func (f *OutputFormatter) printCargoDetail(cargo *database.Cargo) error {
	fmt.Printf("Cargo ID: %d\n", cargo.ID)
	fmt.Printf("Commodity: %s\n", cargo.Commodity)
	fmt.Printf("Quantity: %.0f MT\n", cargo.Quantity)
	fmt.Printf("Load port: %s\n", cargo.LoadPort)
	fmt.Printf("Discharge port: %s\n", cargo.DischargePort)
	fmt.Printf("Laycan: %s\n", formatWindow(cargo.LaycanFrom, cargo.LaycanUntil))
	if cargo.StowageFactor != nil {
		fmt.Printf("Stowage factor: %.2f %s\n", *cargo.StowageFactor, cargo.StowageFactorUnit)
	}
	fmt.Printf("Broken stowage: %.1f%%\n", cargo.BrokenStowagePct)
	if len(cargo.Requirements) > 0 {
		fmt.Printf("Requirements: %s\n", strings.Join(cargo.Requirements, ", "))
	}
	fmt.Printf("Status: %s\n", cargo.Status)
	fmt.Printf("Created: %s\n", cargo.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

// printMatchesTable prints matches in table format
func (f *OutputFormatter) printMatchesTable(matches []database.Match) error {
	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tSCORE\tVESSEL\tCARGO\tSTATUS\tRATIONALE")

	for _, match := range matches {
		fmt.Fprintf(w, "%d\t%.0f\t%d\t%d\t%s\t%s\n",
			match.ID,
			match.Score,
			match.VesselID,
			match.CargoID,
			match.Status,
			truncate(match.Rationale, 50))
	}

	return nil
}

// printMatchDetail prints a single match in detail format
func (f *OutputFormatter) printMatchDetail(match *database.Match) error {
	fmt.Printf("Match ID: %d\n", match.ID)
	fmt.Printf("Vessel ID: %d\n", match.VesselID)
	fmt.Printf("Cargo ID: %d\n", match.CargoID)
	fmt.Printf("Score: %.0f\n", match.Score)
	fmt.Printf("Status: %s\n", match.Status)
	fmt.Printf("Rationale: %s\n", match.Rationale)
	if match.Breakdown != "" {
		var breakdown matching.Breakdown
		if err := json.Unmarshal([]byte(match.Breakdown), &breakdown); err == nil {
			fmt.Println("Breakdown:")
			printCriterion("tonnage", breakdown.Tonnage)
			printCriterion("laycan", breakdown.Laycan)
			printCriterion("distance", breakdown.Distance)
			printCriterion("volume", breakdown.Volume)
			printCriterion("requirements", breakdown.Requirements)
		}
	}
	fmt.Printf("Created: %s\n", match.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

// printCriterion prints one breakdown line, skipping criteria the engine
// never evaluated.
func printCriterion(name string, result matching.CriterionResult) {
	if !result.Evaluated {
		return
	}
	line := fmt.Sprintf("  %-13s %+.0f", name+":", result.Points)
	if result.Reason != "" {
		line += "  (" + result.Reason + ")"
	}
	fmt.Println(line)
}

// printPortsTable prints ports in table format
func (f *OutputFormatter) printPortsTable(ports []database.Port) error {
	if len(ports) == 0 {
		fmt.Println("No ports found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tNAME\tCOUNTRY\tLAT\tLON\tALIASES")

	for _, port := range ports {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%s\n",
			port.ID,
			port.Name,
			port.Country,
			port.Latitude,
			port.Longitude,
			truncate(strings.Join(port.AltNames, ", "), 40))
	}

	return nil
}

// formatWindow renders a date window, or "-" when unset
func formatWindow(from, until *time.Time) string {
	if from == nil || until == nil {
		return "-"
	}
	return from.Format("02 Jan") + " - " + until.Format("02 Jan")
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
