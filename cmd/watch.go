package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/delaylens/internal/behavior"
	"github.com/KaramelBytes/delaylens/internal/console"
	"github.com/KaramelBytes/delaylens/internal/dataset"
	"github.com/KaramelBytes/delaylens/internal/report"
	"github.com/KaramelBytes/delaylens/internal/utils"
)

var (
	watchSession sessionFlags
	watchEvery   string
	watchOutput  string
)

// settle is how long file events must stay quiet before a refit.
var settle = 300 * time.Millisecond

// refresher refits the session and rewrites the report. Callers from the
// file watcher and the cron schedule are serialized by mu.
type refresher struct {
	mu      sync.Mutex
	cmd     *cobra.Command
	log     *console.Logger
	path    string
	dsOpt   dataset.Options
	seed    int64
	repOpt  report.Options
	output  string
	current *behavior.Analyzer
}

func (r *refresher) refit(reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := fitSession(r.cmd, r.log, r.path, r.dsOpt, r.seed)
	if err != nil {
		return err
	}
	r.current = a
	md := report.Build(a, r.repOpt).Markdown()
	if r.output == "" {
		fmt.Fprint(r.cmd.OutOrStdout(), md)
	} else if err := utils.SafeWriteFile(r.output, []byte(md), true); err != nil {
		return err
	}
	r.log.Successf("Refit %s (%s): %d records", filepath.Base(r.path), reason, a.Dataset().Len())
	return nil
}

// Session returns the most recently fitted analyzer.
func (r *refresher) Session() *behavior.Analyzer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// runWatch refits once, then again on file changes and on the cron schedule
// until ctx is cancelled.
func runWatch(ctx context.Context, r *refresher, every string) error {
	if err := r.refit("initial"); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch %s: %w", r.path, err)
	}

	if every != "" {
		c := cron.New()
		if err := c.AddFunc(every, func() {
			if err := r.refit("schedule"); err != nil {
				r.log.Warnf("scheduled refit failed: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid --every schedule %q: %w", every, err)
		}
		c.Start()
		defer c.Stop()
		r.log.Debugf("scheduled refits: %s", every)
	}

	base := filepath.Base(r.path)
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				r.log.Debugf("change: %s", ev)
				pending = time.After(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Errorf("watcher: %v", err)
		case <-pending:
			pending = nil
			if err := r.refit("file changed"); err != nil {
				r.log.Warnf("refit failed, keeping previous session: %v", err)
			}
		}
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Refit and rewrite the report whenever the dataset changes",
	Long: `Fit the dataset, print (or write) the report, then keep watching the file.
Every save triggers a refit; --every adds a cron schedule such as "@every 10m"
or "0 0 9 * * *". Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cmd)
		path, err := watchSession.datasetPath(args)
		if err != nil {
			return err
		}
		dsOpt, err := watchSession.datasetOptions()
		if err != nil {
			return err
		}
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		r := &refresher{
			cmd:    cmd,
			log:    log,
			path:   path,
			dsOpt:  dsOpt,
			seed:   watchSession.seed,
			repOpt: c.ReportOptions(),
			output: watchOutput,
		}
		if r.output != "" {
			r.output = inOutputDir(r.output, c.OutputDir)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, r, watchEvery)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchSession.register(watchCmd)
	watchCmd.Flags().StringVar(&watchEvery, "every", "", `cron schedule for periodic refits, e.g. "@every 10m"`)
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Markdown file rewritten on every refit (default: stdout)")
}
