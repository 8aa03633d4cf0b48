package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"evdock-sim/models"
	"evdock-sim/render"
	"evdock-sim/services"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
)

var (
	viewSeed     int64
	viewFPS      int
	viewAutoPlay bool
	viewReduced  bool
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "터미널 뷰어 (space 재생/정지, r 리셋, 1-4 단계, +/- 속도, l 레이, q 종료)",
	RunE:  runView,
}

func init() {
	viewCmd.Flags().Int64Var(&viewSeed, "seed", 0, "random seed (0 = time based)")
	viewCmd.Flags().IntVar(&viewFPS, "fps", 30, "frames per second")
	viewCmd.Flags().BoolVar(&viewAutoPlay, "play", true, "start playing immediately")
	viewCmd.Flags().BoolVar(&viewReduced, "reduced-motion", false, "halve the rangefinder ray count")
}

func runView(cmd *cobra.Command, args []string) error {
	cfg := models.DefaultSimConfig()
	cfg.ReducedMotion = viewReduced
	cfg.AutoRestart = true

	engine, err := services.NewEngine(cfg, viewSeed)
	if err != nil {
		return err
	}
	if viewAutoPlay {
		engine.Play()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	render.NewViewer(screen, engine, viewFPS).Run(ctx)
	return nil
}
