package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/delaylens/internal/behavior"
	"github.com/KaramelBytes/delaylens/internal/console"
	"github.com/KaramelBytes/delaylens/internal/report"
)

const (
	defaultPlanned = "60"
	defaultActual  = "90"
)

var errQuit = errors.New("quit")

var itSession sessionFlags

var interactiveCmd = &cobra.Command{
	Use:   "interactive [file]",
	Short: "Fit once, then classify (planned, actual) pairs typed at the prompt",
	Long: `Fit the dataset once and prompt for planned and actual minutes. Empty input
uses 60 and 90. Negative or non-numeric input is rejected and asked again.
Type q or quit (or send EOF) to exit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cmd)
		a, err := itSession.openSession(cmd, log, args)
		if err != nil {
			return err
		}
		log.Successf("Fitted %d records from %s", a.Dataset().Len(), a.Dataset().Name())
		var labels []string
		for _, c := range behavior.Categories() {
			labels = append(labels, c.Label())
		}
		log.Infof("Categories: %s", strings.Join(labels, ", "))
		return promptLoop(cmd.InOrStdin(), cmd.OutOrStdout(), log, a)
	},
}

// promptLoop reads pairs until quit or EOF.
func promptLoop(in io.Reader, out io.Writer, log *console.Logger, a *behavior.Analyzer) error {
	sc := bufio.NewScanner(in)
	for {
		planned, err := askMinutes(sc, out, log, "Planned time (minutes)", defaultPlanned)
		if err != nil {
			return endOfInput(err)
		}
		actual, err := askMinutes(sc, out, log, "Actual time spent (minutes)", defaultActual)
		if err != nil {
			return endOfInput(err)
		}
		res, err := a.Predict(planned, actual)
		if err != nil {
			log.Warnf("%v", err)
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, report.FormatResult(res))
		fmt.Fprintln(out)
	}
}

func askMinutes(sc *bufio.Scanner, out io.Writer, log *console.Logger, label, def string) (float64, error) {
	for {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		text := strings.TrimSpace(sc.Text())
		switch strings.ToLower(text) {
		case "q", "quit", "exit":
			return 0, errQuit
		case "":
			text = def
		}
		v, err := behavior.ParseMinutes(strings.ToLower(label), text)
		if err != nil {
			log.Warnf("%v", err)
			continue
		}
		return v, nil
	}
}

func endOfInput(err error) error {
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
	itSession.register(interactiveCmd)
}
