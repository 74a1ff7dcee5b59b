// Command cosimctl drives the sched scheduler against the in-memory
// gpi.Fake simulator, for smoke-testing testbench code and demoing the
// scheduler without a real HDL simulator attached.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	sched "github.com/gosimrt/scheduler"
	"github.com/gosimrt/scheduler/config"
	"github.com/gosimrt/scheduler/gpi"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cosimctl",
		Short: "cosimctl drives the sched scheduler against a simulator backend",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run -- [plusargs...]",
		Short: "run a demo testbench against the fake simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args)
			if err != nil {
				return fmt.Errorf("cosimctl: loading configuration: %w", err)
			}

			var log sched.Logger = sched.NewNoOpLogger()
			if cfg.SchedulerDebug {
				log = sched.NewLogifaceLogger(os.Stderr, sched.LevelDebug)
			}

			sim := gpi.NewFake(time.Nanosecond)
			s := sched.New(sim, sched.WithName("cosimctl"), sched.WithLogger(log))

			task := s.Spawn("demo", demoTestbench(sim, cfg))
			if err := s.RunUntilDone(task); err != nil {
				return fmt.Errorf("cosimctl: run did not complete: %w", err)
			}

			v, err := task.Result()
			if err != nil {
				return fmt.Errorf("cosimctl: demo task failed: %w", err)
			}
			fmt.Printf("demo task finished: %v (sim time %s)\n", v, sim.Time())
			return nil
		},
	}
	return cmd
}

// demoTestbench exercises the scheduler's core surface: a timed wait, a
// signal write, and reading it back, so `cosimctl run` has something
// concrete to report.
func demoTestbench(sim *gpi.Fake, cfg *config.Config) sched.TaskFunc {
	return func(t *sched.Task) (any, error) {
		if _, err := t.Await(sched.NewTimer(sim, 10*time.Nanosecond)); err != nil {
			return nil, err
		}
		if err := sim.WriteSignal("top.ready", 1); err != nil {
			return nil, err
		}
		v, err := sim.ReadSignal("top.ready")
		if err != nil {
			return nil, err
		}
		if cfg.Toplevel != "" {
			return fmt.Sprintf("toplevel=%s ready=%d", cfg.Toplevel, v), nil
		}
		return fmt.Sprintf("ready=%d", v), nil
	}
}
