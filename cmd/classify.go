package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/delaylens/internal/behavior"
	"github.com/KaramelBytes/delaylens/internal/report"
	"github.com/KaramelBytes/delaylens/internal/utils"
)

var (
	clsSession sessionFlags
	clsJSON    bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <planned> <actual>",
	Short: "Classify one task (minutes planned vs. actually spent)",
	Example: `  delaylens classify 60 90 --data tasks.csv
  delaylens classify 45 46 --data tasks.xlsx --sheet Log --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		planned, err := behavior.ParseMinutes("planned time", args[0])
		if err != nil {
			return err
		}
		actual, err := behavior.ParseMinutes("actual time", args[1])
		if err != nil {
			return err
		}
		log := newLogger(cmd)
		a, err := clsSession.openSession(cmd, log, nil)
		if err != nil {
			return err
		}
		res, err := a.Predict(planned, actual)
		if err != nil {
			return err
		}
		if clsJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), report.FormatResult(res))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	clsSession.register(classifyCmd)
	classifyCmd.Flags().BoolVar(&clsJSON, "json", false, "print the result as JSON")
}
