package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evdock-sim",
	Short: "EV 충전 로봇 도킹 시뮬레이션 서버",
	Long: `evdock-sim 은 충전 로봇이 앵커 스캔, 주행, 자석 도킹, 충전 단계를 거쳐
차량 충전 포트에 도킹하는 과정을 시뮬레이션한다. 인자 없이 실행하면 서버를 띄운다.`,
	RunE: runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	addServeFlags(rootCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(watchCmd)
}
