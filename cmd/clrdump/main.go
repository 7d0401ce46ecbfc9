// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	clrlog "github.com/saferwall/clrcore/log"
)

var (
	verbose     bool
	wantTypes   bool
	wantMethods bool
	wantFields  bool
	wantAll     bool
)

func prettyPrint(v interface{}) string {
	buf, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(buf)
}

func newLogger() *clrlog.Helper {
	level := clrlog.LevelWarn
	if verbose {
		level = clrlog.LevelDebug
	}
	return clrlog.NewHelper(clrlog.NewFilter(clrlog.NewStdLogger(os.Stderr), clrlog.FilterLevel(level)))
}

func runDump(cmd *cobra.Command, args []string) {
	for _, filename := range args {
		if err := dumpAssembly(filename); err != nil {
			log.Printf("%s: %v", filename, err)
		}
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "clrdump",
		Short: "A CLI metadata importer and execution core",
		Long:  "Loads a managed assembly's CLI metadata and dumps its type/method/field descriptors, built for introspection and malware analysis.",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("clrdump version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump [assembly ...]",
		Short: "Load one or more managed assemblies and dump their descriptors",
		Args:  cobra.MinimumNArgs(1),
		Run:   runDump,
	}
	dumpCmd.Flags().BoolVarP(&wantTypes, "types", "", true, "dump TypeDef descriptors")
	dumpCmd.Flags().BoolVarP(&wantMethods, "methods", "", true, "dump MethodDef descriptors")
	dumpCmd.Flags().BoolVarP(&wantFields, "fields", "", true, "dump Field descriptors")
	dumpCmd.Flags().BoolVarP(&wantAll, "all", "", false, "dump types, methods and fields regardless of the other flags")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	var runCmd = &cobra.Command{
		Use:   "run <assembly> <Namespace.Type::Method>",
		Short: "Parse one method's body header and report its span",
		Long:  "Loads an assembly, resolves the named method by its qualified identifier, and reports its tiny/fat header decode without interpreting the body.",
		Args:  cobra.ExactArgs(2),
		Run:   runMethod,
	}

	rootCmd.AddCommand(versionCmd, dumpCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
