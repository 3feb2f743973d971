package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/config"
	"github.com/wuggen/static-jump-resolution/engine"
	"github.com/wuggen/static-jump-resolution/fixpoint"
	"github.com/wuggen/static-jump-resolution/supergraph"
)

var log = logrus.WithField("pkg", "main")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		failFast bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "sjr <program.json>",
		Short: "Resolve indirect jumps by interprocedural live-variables analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return run(args[0], config.Options{FailFast: failFast, LogLevel: logrus.GetLevel()})
		},
	}

	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "abort on the first unsupported IR construct instead of treating it as empty")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(path string, opts config.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sjr: %w", err)
	}

	var wp wireProgram
	if err := json.Unmarshal(data, &wp); err != nil {
		return fmt.Errorf("sjr: decoding %s: %w", path, err)
	}

	prog, err := buildProgram(&wp)
	if err != nil {
		return err
	}

	g := supergraph.BuildFromCFG(prog)
	log.Infof("built supergraph: %d nodes", g.NumNodes())

	a := arch.AMD64{}
	eng := engine.New(a, opts)
	driver := fixpoint.NewDriver(g, eng, a, opts)

	if err := driver.Run(); err != nil {
		return fmt.Errorf("sjr: analysis: %w", err)
	}

	for _, fnAddr := range wp.Functions {
		printResults(driver.ResultsForFunction(fnAddr.Addr), g)
	}
	return nil
}

func printResults(r *fixpoint.BlockResults, g *supergraph.Graph) {
	fmt.Printf("function 0x%x\n", r.FnAddr)
	for id, lv := range r.In {
		if g.Kind(id) != supergraph.KindBlock {
			continue
		}
		uses := lv.UnqualifiedUses()
		if uses.Len() == 0 {
			continue
		}
		fmt.Printf("  block 0x%x: %d live variable(s) on entry\n", g.CFGNode(id).Addr(), uses.Len())
		for _, u := range uses.Slice() {
			fmt.Printf("    %s\n", u.Var.String())
		}
	}
}
