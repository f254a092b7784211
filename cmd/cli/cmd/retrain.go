package cmd

import (
	"github.com/spf13/cobra"
)

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Retrain the email classifier",
	Long: `Retrain the classifier on the seed corpus plus all stored emails with
confirmed labels. The new model is swapped in atomically.`,
	RunE: runRetrain,
}

func init() {
	rootCmd.AddCommand(retrainCmd)
}

func runRetrain(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient()
	if err != nil {
		return err
	}

	result, err := client.Retrain()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintRetrain(result)
}
