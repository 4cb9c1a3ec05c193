package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonwraymond/faqintent/bot"
	"github.com/jonwraymond/faqintent/config"
)

// app carries state shared by subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger

	// newLogger builds the logger once config is loaded.
	newLogger func(level zapcore.Level) (*zap.Logger, error)
}

func newApp() *app {
	return &app{
		v:         config.New(),
		newLogger: productionLogger,
	}
}

// productionLogger writes JSON logs to stderr so stdout stays clean for
// command output and the stdio transports.
func productionLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "faqintent",
		Short: "Lexical FAQ intent matcher and bot",
		Long: `faqintent maps free-text questions to the intents of an FAQ catalog.

Matching is deterministic: queries are normalized, expanded with synonyms,
and scored against each intent's example utterances and tags. The best
intent above the threshold wins; otherwise the bot falls back to
suggestions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadFile(a.v, a.cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logger, err := a.newLogger(cfg.Level())
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.String("catalog", "", "catalog file (YAML or JSON); default is the built-in catalog")
	flags.String("synonyms", "", "synonym table file overriding the catalog's")
	flags.Float64("threshold", 0.3, "minimum combined score for a match")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	a.bindFlag(root, config.KeyCatalog, "catalog")
	a.bindFlag(root, config.KeySynonyms, "synonyms")
	a.bindFlag(root, config.KeyThreshold, "threshold")
	a.bindFlag(root, config.KeyLogLevel, "log-level")

	root.AddCommand(
		a.matchCmd(),
		a.explainCmd(),
		a.askCmd(),
		a.batchCmd(),
		a.intentsCmd(),
		a.serveCmd(),
		a.mcpCmd(),
	)
	return root
}

func (a *app) bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// newBot builds a bot from the loaded configuration.
func (a *app) newBot() (*bot.Bot, error) {
	opts, err := a.cfg.BotOptions(a.logger)
	if err != nil {
		return nil, err
	}
	return bot.New(opts)
}
