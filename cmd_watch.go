package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"evdock-sim/models"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var (
	watchServer    string
	watchPlay      bool
	watchSnapshots bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [session-id]",
	Short: "실행 중인 서버의 세션 스트림 구독 (단계 전이/해설 출력)",
	Long: `세션 ID 를 주지 않으면 새 세션을 만든 뒤 구독한다.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchServer, "server", "localhost:3000", "server host:port")
	watchCmd.Flags().BoolVar(&watchPlay, "play", true, "send play after connecting")
	watchCmd.Flags().BoolVar(&watchSnapshots, "snapshots", false, "also print snapshot summaries")
}

// inbound - 서버 메시지 (Data 는 타입에 따라 나중에 해석)
type inbound struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	id := ""
	if len(args) == 1 {
		id = args[0]
	} else {
		created, err := createSession(ctx, watchServer)
		if err != nil {
			return err
		}
		id = created
		fmt.Fprintf(cmd.OutOrStdout(), "created session %s\n", id)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+watchServer+"/websocket/sim/"+id, http.Header{})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if watchPlay {
		if err := conn.WriteJSON(models.CommandWire{
			Type: models.MessageTypeCommand,
			Data: models.Command{Action: models.ActionPlay},
		}); err != nil {
			return fmt.Errorf("failed to send play: %w", err)
		}
	}

	return watchStream(conn, cmd.OutOrStdout(), watchSnapshots)
}

// watchStream - 연결이 닫힐 때까지 메시지를 읽어 출력
func watchStream(conn *websocket.Conn, out io.Writer, snapshots bool) error {
	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
		if line := formatInbound(msg, snapshots); line != "" {
			fmt.Fprintln(out, line)
		}
	}
}

// formatInbound - 메시지 한 줄 요약. 출력하지 않을 메시지는 ""
func formatInbound(msg inbound, snapshots bool) string {
	switch msg.Type {
	case models.MessageTypePhaseChange:
		var ch models.PhaseChange
		if err := json.Unmarshal(msg.Data, &ch); err != nil {
			return ""
		}
		manual := ""
		if ch.Manual {
			manual = " (manual)"
		}
		return fmt.Sprintf("[phase] %s → %s at t=%.2fs%s", ch.From, ch.To, ch.SimTime, manual)
	case models.MessageTypeNarration:
		var n models.Narration
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			return ""
		}
		return fmt.Sprintf("[%s] %s", n.Source, n.Text)
	case models.MessageTypeSystemInfo:
		var info models.SystemInfo
		if err := json.Unmarshal(msg.Data, &info); err != nil {
			return ""
		}
		return fmt.Sprintf("[system] %s (session %s)", info.Message, info.SessionID)
	case models.MessageTypeError:
		return "[error] " + string(msg.Data)
	case models.MessageTypeSnapshot:
		if !snapshots {
			return ""
		}
		var s models.Snapshot
		if err := json.Unmarshal(msg.Data, &s); err != nil {
			return ""
		}
		return fmt.Sprintf("[snapshot] %-10s robot=(%.1f, %.1f) charge=%3.0f%% t=%.2fs",
			s.Phase, s.Robot.Position.X, s.Robot.Position.Y, s.Charge*100, s.SimTime)
	}
	return ""
}

// createSession - POST /api/sessions
func createSession(ctx context.Context, server string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+server+"/api/sessions", bytes.NewBufferString("{}"))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}
	if !body.Success {
		return "", fmt.Errorf("failed to create session: %s", body.Message)
	}
	return body.Session.ID, nil
}
