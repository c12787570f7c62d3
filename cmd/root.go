package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/xwidget/internal/config"
	"github.com/zjrosen/xwidget/internal/log"
)

const localConfigPath = ".xwidget/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	debugLog   bool
	logFile    string
	cfg        config.Config
	cfgErr     error
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "xwidget",
	Short: "Attach, inspect and tear down widgets declared in a tree file",
	Long: `xwidget manages the lifecycle of widgets attached to the nodes of a tree.

A node is managed when it carries a "widget" attribute naming a resolver path.
Use "xwidget run" to apply lifecycle operations to a tree file,
"xwidget ui" to drive them interactively and "xwidget watch" to keep a
tree initialized while the file is edited.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return cfgErr
		}
		return setupLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .xwidget/config.yaml, then ~/.config/xwidget/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugLog, "debug", "d", false,
		"write a debug log (also enabled by "+log.EnvDebug+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"debug log path (default: log.file from config, then debug.log)")
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .xwidget/config.yaml (current directory)
		// 2. ~/.config/xwidget/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			v.AddConfigPath(filepath.Join(home, ".config", "xwidget"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cfgErr = fmt.Errorf("reading config: %w", err)
			return
		}
	}

	cfg, cfgErr = config.Load(v)
}

func setupLogging() error {
	if !debugLog && !log.DebugFromEnv() {
		return nil
	}
	path := logFile
	if path == "" {
		path = cfg.Log.File
	}
	if path == "" {
		path = "debug.log"
	}
	cleanup, err := log.Init(path)
	if err != nil {
		return err
	}
	log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
	logCleanup = cleanup
	log.Info(log.CatConfig, "config loaded", "file", viper.ConfigFileUsed(), "traversal", cfg.Manager.Traversal)
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
