package main

import (
	"encoding/json"
	"fmt"

	"evdock-sim/models"
	"evdock-sim/services"

	"github.com/spf13/cobra"
)

var (
	simSeed     int64
	simDuration float64
	simFPS      int
	simSpeed    float64
	simScanMode string
	simDetour   bool
	simJSON     bool
	simConfig   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "헤드리스 고정 스텝 실행 (단계 전이 출력)",
	Long: `엔진을 고정 dt 로 돌리며 단계 전이를 출력한다.
충전이 끝나거나 --duration (시뮬레이션 초) 에 도달하면 종료한다.`,
	RunE: runSimulate,
}

func init() {
	addSimulateFlags(simulateCmd)
}

func addSimulateFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&simSeed, "seed", 1, "random seed for obstacle radii")
	cmd.Flags().Float64Var(&simDuration, "duration", 120, "max simulated seconds")
	cmd.Flags().IntVar(&simFPS, "fps", 30, "fixed steps per simulated second")
	cmd.Flags().Float64Var(&simSpeed, "speed", 1, "speed multiplier (0.1-4)")
	cmd.Flags().StringVar(&simScanMode, "scan-mode", models.ScanModeDwell, "scan mode: dwell | signal")
	cmd.Flags().BoolVar(&simDetour, "detour", false, "enable one-shot detour probing")
	cmd.Flags().BoolVar(&simJSON, "json", false, "print phase changes as JSON lines")
	cmd.Flags().StringVar(&simConfig, "config", "", "SimConfig JSON overriding the defaults")
}

// simulateConfig - 기본값 ← --config JSON ← 명시적으로 준 플래그 순서로 적용
func simulateConfig(cmd *cobra.Command) (models.SimConfig, error) {
	cfg := models.DefaultSimConfig()
	if simConfig != "" {
		if err := json.Unmarshal([]byte(simConfig), &cfg); err != nil {
			return cfg, fmt.Errorf("invalid --config: %w", err)
		}
	}
	if cmd.Flags().Changed("scan-mode") {
		cfg.ScanMode = simScanMode
	}
	cfg.Detour = cfg.Detour || simDetour
	return cfg, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := simulateConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := services.NewEngine(cfg, simSeed)
	if err != nil {
		return err
	}
	if simFPS <= 0 {
		simFPS = 30
	}
	engine.SetSpeed(simSpeed)
	engine.Play()

	out := cmd.OutOrStdout()
	report := func(changes []models.PhaseChange) error {
		for _, ch := range changes {
			if simJSON {
				b, err := json.Marshal(ch)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				continue
			}
			r := engine.Robot().Position
			fmt.Fprintf(out, "t=%6.2fs  %-10s → %-10s  robot=(%.1f, %.1f)  charge=%3.0f%%\n",
				ch.SimTime, ch.From, ch.To, r.X, r.Y, engine.Charge()*100)
		}
		return nil
	}

	if err := report(engine.DrainChanges()); err != nil {
		return err
	}
	dt := 1.0 / float64(simFPS)
	for engine.SimTime() < simDuration && engine.Phase() != models.PhaseComplete {
		engine.Tick(dt)
		if err := report(engine.DrainChanges()); err != nil {
			return err
		}
	}

	if !simJSON {
		fmt.Fprintf(out, "finished: phase=%s sim_time=%.2fs trail=%d\n",
			engine.Phase(), engine.SimTime(), len(engine.Trail()))
	}
	if engine.Phase() != models.PhaseComplete {
		return fmt.Errorf("docking did not complete within %.0fs (phase %s)", simDuration, engine.Phase())
	}
	return nil
}
