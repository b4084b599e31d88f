// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix scopes environment overrides, e.g. BIGO_SERVER.
const envPrefix = "BIGO"

// cliOptions are the resolved global settings for one invocation.
type cliOptions struct {
	server  string
	timeout time.Duration
	json    bool
	noColor bool
}

// newRootCmd builds the command tree with its own viper instance so each
// invocation (and each test) starts from clean settings.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "bigo",
		Short: "Heuristic time and space complexity for code snippets",
		Long: `bigo estimates Big-O time and space complexity for a code snippet by
matching it against a catalog of algorithm and loop patterns.

The estimate is a heuristic: it looks for well-known shapes such as nested
loops, binary search or merge sort, and never parses or runs the code.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bigo.yaml)")
	root.PersistentFlags().String("server", "", "complexity server URL; analyze locally when empty (or set BIGO_SERVER)")
	root.PersistentFlags().Duration("timeout", 10*time.Second, "HTTP timeout for server requests")
	root.PersistentFlags().Bool("json", false, "print raw JSON")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")

	_ = v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))
	_ = v.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	_ = v.BindPFlag("no_color", root.PersistentFlags().Lookup("no-color"))

	opts := func() cliOptions {
		return cliOptions{
			server:  v.GetString("server"),
			timeout: v.GetDuration("timeout"),
			json:    v.GetBool("json"),
			noColor: v.GetBool("no_color"),
		}
	}

	root.AddCommand(
		newAnalyzeCmd(opts),
		newDialectsCmd(opts),
		newExampleCmd(opts),
		newRulesCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

// initConfig reads the config file and BIGO_* environment variables.
// A missing default config file is not an error.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".bigo")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}
