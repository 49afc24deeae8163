// Package cli wires the rootcut cobra command: flag parsing, config-file
// loading, and assembly of the engine context that drives the
// orchestrator, following the teacher's cmd/dot/root.go structure (one
// root command, a package-level globalConfig struct, SilenceUsage/
// SilenceErrors, a custom SetFlagErrorFunc).
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rootcut/rootcut/internal/adapters"
	"github.com/rootcut/rootcut/internal/config"
	"github.com/rootcut/rootcut/internal/copier"
	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
	"github.com/rootcut/rootcut/internal/engine"
	"github.com/rootcut/rootcut/internal/loaderconf"
	"github.com/rootcut/rootcut/internal/pathresolve"
	"github.com/rootcut/rootcut/internal/pluginspec"
	"github.com/rootcut/rootcut/internal/queue"
	"github.com/rootcut/rootcut/internal/rules"
	"github.com/rootcut/rootcut/internal/toolcheck"
)

// globalConfig mirrors every CLI flag spec.md §6 names.
type globalConfig struct {
	rootfs          string
	tarfile         string
	excludes        []string
	includes        []string
	noExcludeCommon bool
	executions      []string
	ldconfig        bool
	noLdconfig      bool
	plugins         []string
	pluginAll       bool
	logfile         string
	quiet           bool
	verbose         int
	debug           bool
	force           bool
	configFile      string
}

var globalCfg globalConfig

// NewRootCommand creates the rootcut root cobra command.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rootcut",
		Short:         "Minimize a container root filesystem to a declared command closure",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootcut,
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n\n", err)
		_ = cmd.Usage()
		return err
	})

	flags := rootCmd.Flags()
	flags.StringVarP(&globalCfg.rootfs, "rootfs", "r", "", "output root for the reduced filesystem tree (required)")
	flags.StringVarP(&globalCfg.tarfile, "tarfile", "t", "", "emit an archive to this path (\"-\" for stdout)")
	flags.StringArrayVarP(&globalCfg.excludes, "exclude", "e", nil, "append a regex prefix to the Excluded rule set (repeatable)")
	flags.StringArrayVarP(&globalCfg.includes, "include", "I", nil, "append a path to the forced Include set (repeatable)")
	flags.BoolVarP(&globalCfg.noExcludeCommon, "no-exclude-common", "C", false, "suppress default exclusion of /sys, /tmp, /dev, /proc")
	flags.StringArrayVarP(&globalCfg.executions, "execution", "E", nil, "record a command to trace under strace (repeatable)")
	flags.BoolVarP(&globalCfg.ldconfig, "ldconfig", "l", true, "enable loader-config rewriting")
	flags.BoolVarP(&globalCfg.noLdconfig, "no-ldconfig", "L", false, "disable loader-config rewriting")
	flags.StringArrayVar(&globalCfg.plugins, "plugin", nil, "activate a plugin with parameters: name:k=v,...")
	flags.BoolVar(&globalCfg.pluginAll, "plugin-all", false, "activate every known plugin")
	flags.StringVarP(&globalCfg.logfile, "logfile", "g", "", "write logs to this file instead of stderr")
	flags.BoolVarP(&globalCfg.quiet, "quiet", "q", false, "suppress all non-error output")
	flags.CountVarP(&globalCfg.verbose, "verbose", "v", "increase verbosity")
	flags.BoolVar(&globalCfg.debug, "debug", false, "enable debug-level logging")
	flags.BoolVarP(&globalCfg.force, "force", "f", false, "accepted but has no effect (existing files in OutputRoot are never overwritten)")
	flags.StringVar(&globalCfg.configFile, "config", "", "path to a rootcut config file (YAML or TOML)")

	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// runRootcut assembles the engine context from globalCfg and drives the
// orchestrator to completion (everything after `--` is the execution
// vector, captured via cobra's ArgsLenAtDash).
func runRootcut(cmd *cobra.Command, args []string) error {
	if globalCfg.rootfs == "" {
		return domain.ErrInvalidOutputRoot{Path: "", Reason: "--rootfs is required"}
	}

	var commands []string
	dash := cmd.ArgsLenAtDash()
	if dash >= 0 {
		commands = args[:dash]
	} else {
		commands = args
	}
	var execVector []string
	if dash >= 0 {
		execVector = args[dash:]
	}

	fileCfg, err := config.Load(globalCfg.configFile)
	if err != nil {
		return err
	}

	log := createLogger()
	fs := adapters.NewOSFilesystem()
	runner := adapters.NewOSRunner()

	outputRoot := globalCfg.rootfs

	excludes := append(append([]string{}, fileCfg.Excluded...), globalCfg.excludes...)
	includes := append(append([]string{}, fileCfg.Included...), globalCfg.includes...)
	ruleSet := rules.New(excludes, includes, !globalCfg.noExcludeCommon)

	resolver := pathresolve.New(fs, log, outputRoot)

	ldconfigEnabled := globalCfg.ldconfig && !globalCfg.noLdconfig
	loaderRelPath := ""
	if ldconfigEnabled {
		loaderRelPath = fileCfg.LoaderConfig
	}
	loaderConf := loaderconf.New(fs, log, loaderRelPath)

	mode := domain.ParseMode(fileCfg.Mode)

	pluginSpecs := append(append([]string{}, fileCfg.PluginSpecs()...), globalCfg.plugins...)
	var pluginParams engctx.PluginParams
	if globalCfg.pluginAll {
		pluginParams = pluginspec.ParseAll()
	} else {
		pluginParams, err = pluginspec.Parse(pluginSpecs)
		if err != nil {
			return err
		}
	}

	needTar := globalCfg.tarfile != ""
	toolPaths, err := toolcheck.Probe(runner, ldconfigEnabled, needTar)
	if err != nil {
		return err
	}

	metrics := adapters.NewNoopMetrics()
	tracer := adapters.NewNoopTracer()

	copyEngine := copier.New(copier.Opts{
		FS: fs, Runner: runner, Logger: log, Rules: ruleSet, Resolver: resolver,
		OutputRoot: outputRoot, RsyncPath: toolPaths["rsync"], Metrics: metrics,
	})

	ec := &engctx.Context{
		FS:            fs,
		Runner:        runner,
		Log:           log,
		Tracer:        tracer,
		Metrics:       metrics,
		OutputRoot:    outputRoot,
		Mode:          mode,
		Plugins:       pluginParams,
		Queue:         queue.New(),
		Resolver:      resolver,
		Rules:         ruleSet,
		Copier:        copyEngine,
		LoaderConf:    loaderConf,
		TracedVectors: make(map[string]struct{}),
		ToolPaths:     toolPaths,
	}

	var workItems []domain.WorkItem
	for _, c := range commands {
		workItems = append(workItems, domain.WorkItem(c))
	}

	var executions [][]string
	for _, e := range globalCfg.executions {
		executions = append(executions, strings.Fields(e))
	}
	if len(execVector) > 0 {
		executions = append(executions, execVector)
	}

	orch := engine.New(ec)
	return orch.Run(cmd.Context(), engine.RunOpts{
		OutputRoot: outputRoot,
		Commands:   workItems,
		Includes:   includes,
		Executions: executions,
		TarDest:    globalCfg.tarfile,
	})
}

// createLogger builds the logger per the --quiet/--debug/--verbose/--logfile
// flags, following the teacher's createLogger precedence (quiet silences
// everything; otherwise verbosity picks the level).
func createLogger() domain.Logger {
	if globalCfg.quiet {
		return adapters.NewDiscardLogger()
	}

	level := "info"
	switch {
	case globalCfg.debug:
		level = "debug"
	case globalCfg.verbose > 0:
		level = "debug"
	}

	if globalCfg.logfile != "" {
		f, err := os.OpenFile(globalCfg.logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return adapters.NewJSONLogger(f, level)
		}
	}

	return adapters.NewConsoleLogger(os.Stderr, level)
}
