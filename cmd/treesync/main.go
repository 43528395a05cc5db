package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-treesync/config"
	"github.com/spacemeshos/go-treesync/lst"
	"github.com/spacemeshos/go-treesync/metrics"
	"github.com/spacemeshos/go-treesync/treesync/peer"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd(afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by the subcommands.
type app struct {
	fs         afero.Fs
	vip        *viper.Viper
	configFile string
	conf       *config.Config
	log        *zap.Logger
	sharer     *lst.Sharer
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, vip: viper.New()}
	a.vip.SetFs(fs)
	defaults := config.DefaultConfig()

	root := &cobra.Command{
		Use:           "treesync",
		Short:         "compute and apply differences between syntax trees",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.pushMetrics(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "load configuration from file")
	flags.String("log-level", defaults.Logging.Level, "logging level")
	flags.Int("batch-size", defaults.Sync.BatchSize, "number of messages per batch")
	flags.Bool("trace", defaults.Sync.Trace, "attach the traversal path to each message")
	flags.String("metrics-push", defaults.Metrics.Push, "push metrics to this Prometheus push gateway url")
	for key, flag := range map[string]string{
		"logging.level":   "log-level",
		"sync.batch-size": "batch-size",
		"sync.trace":      "trace",
		"metrics.push":    "metrics-push",
	} {
		if err := a.vip.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("BUG: bind flag %s: %v", flag, err))
		}
	}

	root.AddCommand(newDiffCmd(a), newApplyCmd(a), newRoundtripCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadConfig(a.configFile, a.vip); err != nil {
		return err
	}
	conf, err := config.Decode(a.vip)
	if err != nil {
		return err
	}
	a.conf = conf
	if a.log, err = conf.Logging.Build(cmd.ErrOrStderr()); err != nil {
		return err
	}
	if a.sharer, err = lst.NewSharer(conf.LST.ShareCacheSize); err != nil {
		return err
	}
	a.log.Debug("loaded config", zap.String("command", cmd.Name()), zap.Any("sync", conf.Sync))
	return nil
}

func (a *app) pushMetrics(cmd *cobra.Command) error {
	if a.conf == nil || a.conf.Metrics.Push == "" {
		return nil
	}
	err := metrics.Push(cmd.Context(), a.conf.Metrics.Push, a.conf.Metrics.Job,
		map[string]string{"command": cmd.Name()})
	if err != nil {
		a.log.Warn("failed to push metrics", zap.Error(err))
		return err
	}
	return nil
}

func (a *app) newSession(name string) *peer.Session {
	return peer.NewSession(lst.NewRegistry(),
		peer.WithConfig(a.conf.Sync),
		peer.WithLogger(a.log.Named(name)))
}

// loadUnit reads a unit from a JSON file, sharing the subtrees seen before.
// An empty path stands for an empty tree.
func (a *app) loadUnit(path string) (*lst.Unit, error) {
	if path == "" {
		return nil, nil
	}
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	u, err := lst.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return a.sharer.Share(u)
}
