package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/jclass/classfile"
	"github.com/dhamidi/jclass/config"
)

// app carries the settings shared by every subcommand.
type app struct {
	configPath     string
	skipAttributes bool
	lenient        bool
	trace          bool
	verbose        int

	cfg *config.Config
}

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "jclass",
		Short:         "Read, inspect and rewrite JVM class files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to "+config.FileName+" (default: search upwards from the working directory)")
	flags.BoolVar(&a.skipAttributes, "skip-attributes", false, "keep only attribute lengths instead of decoding them")
	flags.BoolVar(&a.lenient, "lenient", false, "accept class files truncated inside the class attributes")
	flags.BoolVar(&a.trace, "trace", false, "log every structure with its offset")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newDumpCmd(a))
	rootCmd.AddCommand(newVerifyCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newDisasmCmd(a))
	rootCmd.AddCommand(newConstantsCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jclass:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and lets command line flags override it.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return err
	}
	if err := a.cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("skip-attributes") {
		a.cfg.Parse.SkipAttributes = a.skipAttributes
	}
	if flags.Changed("lenient") {
		a.cfg.Parse.TolerateTruncation = a.lenient
	}
	if flags.Changed("trace") {
		a.cfg.Parse.Trace = a.trace
	}
	a.cfg.Log.Verbosity += a.verbose
	if a.cfg.Parse.Trace && a.cfg.Log.Verbosity < 2 {
		a.cfg.Log.Verbosity = 2
	}

	var logPath *string
	if a.cfg.Log.File != "" {
		path := a.cfg.Log.File
		if !filepath.IsAbs(path) && a.cfg.Dir != "" {
			path = filepath.Join(a.cfg.Dir, path)
		}
		logPath = &path
	}
	commonlog.Configure(a.cfg.Log.Verbosity, logPath)
	return nil
}

func (a *app) parseFile(path string) (*classfile.ClassFile, error) {
	return classfile.ParseFile(path, a.cfg.ParseOptions()...)
}

// fullParseOptions are the configured options with attribute decoding forced
// on, for commands that need attribute bodies.
func (a *app) fullParseOptions() []classfile.Option {
	cfg := *a.cfg
	cfg.Parse.SkipAttributes = false
	return cfg.ParseOptions()
}
