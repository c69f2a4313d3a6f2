package main

import (
	"fmt"
	"os"
	"strings"

	"gobmc/internal/bmc"
	"gobmc/internal/cpg"
	"gobmc/internal/dbg"
	"gobmc/internal/harness"
	"gobmc/internal/ir"
	"gobmc/internal/stats"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var verifyCommand = &cobra.Command{
	Use:   "verify",
	Short: "verify a function of a program and synthesize a replay harness on a bug",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		if err := verifyExec(); err != nil {
			fmt.Printf("service err: %v", err)
		}
	},
}

var (
	ProgramFile string
	FuncName    string
	EngineName  string
	DumpFile    string
	NoSolve     bool
	DebugCats   string
	HarnessFile string
)

func init() {
	verifyCommand.Flags().StringVar(&ProgramFile, "file", "", "program file (yaml)")
	verifyCommand.Flags().StringVar(&FuncName, "fn", "main", "function to verify")
	verifyCommand.Flags().StringVar(&EngineName, "engine", "mono", "bmc engine: mono or path")
	verifyCommand.Flags().StringVar(&DumpFile, "dump", "", "write the encoding in smt-lib form to this file")
	verifyCommand.Flags().BoolVar(&NoSolve, "no-solve", false, "encode only, do not solve")
	verifyCommand.Flags().StringVar(&DebugCats, "debug", "", "comma-separated debug categories (bmc,cex)")
	verifyCommand.Flags().StringVar(&HarnessFile, "harness", "", "on a bug, write the replay harness to this file")
}

func verifyExec() error {
	yices2.Init()
	defer yices2.Exit()

	if DebugCats != "" {
		dbg.Enable(strings.Split(DebugCats, ",")...)
	}

	m, err := ir.LoadYAML(ProgramFile)
	if err != nil {
		return errors.Wrap(err, "load program")
	}
	fn := m.FuncByName(FuncName)
	if fn == nil {
		return errors.Errorf("no function %q in %s", FuncName, ProgramFile)
	}

	driver := bmc.NewDriver()
	switch EngineName {
	case "path":
		driver.Engine = bmc.PathBased
	case "mono":
		driver.Engine = bmc.Mono
	default:
		return errors.Errorf("unknown engine %q", EngineName)
	}
	if DumpFile != "" {
		out, err := os.Create(DumpFile)
		if err != nil {
			return errors.Wrap(err, "create dump file")
		}
		defer out.Close()
		driver.Dump = out
	}
	driver.Solve = !NoSolve

	verdict, trace := driver.Run(fn, cpg.Build(fn))

	if verdict == bmc.Bug && trace != nil && HarnessFile != "" {
		hm, err := harness.Synthesize(trace, harness.Options{Module: m})
		if err != nil {
			return errors.Wrap(err, "synthesize harness")
		}
		if err := os.WriteFile(HarnessFile, []byte(hm.String()+"\n"), 0o644); err != nil {
			return errors.Wrap(err, "write harness")
		}
	}

	stats.Print(os.Stderr)
	return nil
}
