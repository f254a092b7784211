package cmd

import (
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:     "ports",
	Aliases: []string{"port"},
	Short:   "List the port gazetteer",
	Long: `List the ports the matching engine knows about. Distance scoring only
covers vessel and cargo ports present in this gazetteer.`,
	RunE: runPortsList,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPortsList(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	ports, err := client.GetPorts()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintPorts(ports)
}
