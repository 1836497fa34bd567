package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccu-solve/ccu/pkg/ccu"
	"github.com/ccu-solve/ccu/pkg/ccu/config"
	"github.com/ccu-solve/ccu/pkg/ccu/problem"
)

func main() {
	cfg := config.Default()
	var scenario string

	rootCmd := &cobra.Command{
		Use:   "ccu",
		Short: "ccu",
		Long:  `Solve simultaneous congruence-closure unification problems over finite domains.`,

		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, scenario)
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().StringVar(&scenario, "scenario", "direct-equality", fmt.Sprintf("canned scenario to run (%v)", scenarioNames()))

	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ccu.ProgrammerError); ok {
				fmt.Fprintln(os.Stderr, "ccu: usage error:", pe.Error())
				os.Exit(2)
			}
			panic(r)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, scenarioName string) error {
	build, ok := scenarios[scenarioName]
	if !ok {
		return fmt.Errorf("ccu: unknown scenario %q (want one of %v)", scenarioName, scenarioNames())
	}

	strategy, err := ccu.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	p := build()
	s := ccu.NewSolver(strategy, log.StandardLogger(), cfg)
	s.Attach(p)

	res, err := s.Solve(ctx)
	if err != nil {
		return err
	}

	switch res {
	case problem.SAT:
		model, err := s.Model()
		if err != nil {
			return err
		}
		fmt.Println("sat")
		for _, t := range p.Terms {
			fmt.Printf("  %d -> %d\n", t, model[t])
		}
	case problem.UNSAT:
		fmt.Println("unsat")
		core, err := s.UnsatCore(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  unsat core: sub-problems %v\n", core)
	default:
		fmt.Println("unknown")
	}
	return nil
}
