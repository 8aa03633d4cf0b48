package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evdock-sim/models"
	"evdock-sim/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*API, *fiber.App) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	cfg := models.DefaultSimConfig()
	sessions := NewSessionManager(ctx, ManagerDeps{BaseConfig: cfg, FrameRate: 30})
	t.Cleanup(func() {
		sessions.Shutdown()
		cancel()
	})

	api := &API{
		Sessions: sessions,
		Layouts:  services.NewLayoutGenerator(11),
		Models:   services.NewModelLoader(""),
		Config:   cfg,
	}
	return api, NewApp(api, "*", false)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func createSession(t *testing.T, app *fiber.App, body interface{}) string {
	t.Helper()
	status, out := doJSON(t, app, http.MethodPost, "/api/sessions", body)
	require.Equal(t, fiber.StatusCreated, status)
	session := out["session"].(map[string]interface{})
	return session["id"].(string)
}

func TestHealth(t *testing.T) {
	_, app := newTestAPI(t)

	status, out := doJSON(t, app, http.MethodGet, "/api/health", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", out["status"])
}

func TestSessionLifecycle(t *testing.T) {
	api, app := newTestAPI(t)

	id := createSession(t, app, nil)
	assert.Equal(t, 1, api.Sessions.Count())

	status, out := doJSON(t, app, http.MethodGet, "/api/sessions", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), out["count"])

	status, out = doJSON(t, app, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, fiber.StatusOK, status)
	snap := out["snapshot"].(map[string]interface{})
	assert.Equal(t, "idle", snap["phase"])

	status, out = doJSON(t, app, http.MethodPost, "/api/sessions/"+id+"/commands",
		models.Command{Action: models.ActionPlay})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["success"])
	snap = out["snapshot"].(map[string]interface{})
	assert.Equal(t, "scan", snap["phase"])

	status, out = doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/scene", nil)
	assert.Equal(t, fiber.StatusOK, status)
	scene := out["scene"].(map[string]interface{})
	assert.Len(t, scene["nodes"], 11)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, api.Sessions.Count())

	status, out = doJSON(t, app, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, out["success"])
}

func TestCreateSessionWithOptions(t *testing.T) {
	api, app := newTestAPI(t)

	cfg := models.DefaultSimConfig()
	cfg.ScanMode = models.ScanModeSignal
	id := createSession(t, app, SessionOptions{Config: &cfg, Seed: 3, AutoPlay: true})

	s, err := api.Sessions.Get(id)
	require.NoError(t, err)
	assert.True(t, s.Runner.Info().Playing)

	cfg.ScanMode = "sonar"
	status, out := doJSON(t, app, http.MethodPost, "/api/sessions", SessionOptions{Config: &cfg})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, out["message"], "scan_mode")
}

func TestCreateSessionOverlaysPartialConfig(t *testing.T) {
	api, app := newTestAPI(t)
	base := models.DefaultSimConfig()

	id := createSession(t, app, map[string]interface{}{
		"config": map[string]interface{}{"scan_mode": models.ScanModeSignal},
	})
	s, err := api.Sessions.Get(id)
	require.NoError(t, err)
	cfg := s.Runner.Config()
	assert.Equal(t, models.ScanModeSignal, cfg.ScanMode)
	assert.Equal(t, base.NavigateSpeed, cfg.NavigateSpeed)
	assert.Len(t, cfg.Obstacles, len(base.Obstacles))

	status, out := doJSON(t, app, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, out, "config")

	// 장애물 목록을 덮어써도 기본 설정은 그대로
	id = createSession(t, app, map[string]interface{}{
		"config": map[string]interface{}{
			"obstacles": []map[string]interface{}{
				{"center": map[string]float64{"x": 200, "y": 60}, "radius": 12, "shape": models.ShapeBox},
			},
		},
	})
	s, err = api.Sessions.Get(id)
	require.NoError(t, err)
	require.Len(t, s.Runner.Config().Obstacles, 1)
	assert.Equal(t, models.ShapeBox, s.Runner.Config().Obstacles[0].Shape)
	assert.Equal(t, base.Obstacles, api.Sessions.BaseConfig().Obstacles)
}

func TestGetSessionFallsBackToCache(t *testing.T) {
	api, app := newTestAPI(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	api.Cache = services.NewSnapshotCache(client, time.Minute)

	e, err := services.NewEngine(models.DefaultSimConfig(), 1)
	require.NoError(t, err)
	require.NoError(t, api.Cache.Put(context.Background(), "remote-session", e.Snapshot()))

	status, out := doJSON(t, app, http.MethodGet, "/api/sessions/remote-session", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["cached"])
	assert.Contains(t, out, "snapshot")

	status, _ = doJSON(t, app, http.MethodGet, "/api/sessions/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCommandErrors(t *testing.T) {
	_, app := newTestAPI(t)
	id := createSession(t, app, SessionOptions{AutoPlay: true})

	status, _ := doJSON(t, app, http.MethodPost, "/api/sessions/"+id+"/commands",
		models.Command{Action: "teleport"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/sessions/"+id+"/commands",
		models.Command{Action: models.ActionSetPhase, Phase: "warp"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	p := models.DefaultSimConfig().RobotStart
	status, _ = doJSON(t, app, http.MethodPost, "/api/sessions/"+id+"/commands",
		models.Command{Action: models.ActionMoveRobot, Point: &p})
	assert.Equal(t, fiber.StatusConflict, status, "editing while playing")

	status, _ = doJSON(t, app, http.MethodPost, "/api/sessions/missing/commands",
		models.Command{Action: models.ActionPlay})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPathfinding(t *testing.T) {
	_, app := newTestAPI(t)
	cfg := models.DefaultSimConfig()

	status, out := doJSON(t, app, http.MethodPost, "/api/pathfinding", PathfindingRequest{
		Start:     cfg.RobotStart,
		Goal:      cfg.CarStart.Add(cfg.PortOffset),
		Obstacles: cfg.Obstacles,
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["success"])
	path := out["path"].([]interface{})
	assert.GreaterOrEqual(t, len(path), 2)

	id := createSession(t, app, nil)
	status, out = doJSON(t, app, http.MethodPost, "/api/pathfinding", PathfindingRequest{
		Start:     cfg.RobotStart,
		Goal:      cfg.CarStart.Add(cfg.PortOffset),
		SessionID: id,
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["success"])

	// 목표가 장애물 안
	status, out = doJSON(t, app, http.MethodPost, "/api/pathfinding", PathfindingRequest{
		Start:     cfg.RobotStart,
		Goal:      cfg.Obstacles[0].Center,
		Obstacles: cfg.Obstacles,
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, out["success"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/pathfinding", PathfindingRequest{SessionID: "missing"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRandomLayout(t *testing.T) {
	api, app := newTestAPI(t)

	status, out := doJSON(t, app, http.MethodPost, "/api/layouts/random", RandomLayoutRequest{Count: 4})
	assert.Equal(t, fiber.StatusOK, status)
	layout := out["layout"].(map[string]interface{})
	assert.LessOrEqual(t, len(layout["obstacles"].([]interface{})), 4)

	id := createSession(t, app, nil)
	status, out = doJSON(t, app, http.MethodPost, "/api/layouts/random", RandomLayoutRequest{Count: 3, SessionID: id})
	assert.Equal(t, fiber.StatusOK, status)
	require.Contains(t, out, "snapshot")

	s, err := api.Sessions.Get(id)
	require.NoError(t, err)
	layoutObs := out["layout"].(map[string]interface{})["obstacles"].([]interface{})
	assert.Len(t, s.Runner.Snapshot().Obstacles, len(layoutObs))

	// 재생 중에는 적용 불가
	_, err = s.Runner.Apply(context.Background(), models.Command{Action: models.ActionPlay})
	require.NoError(t, err)
	status, _ = doJSON(t, app, http.MethodPost, "/api/layouts/random", RandomLayoutRequest{SessionID: id})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestLogsUnavailableWithoutDatabase(t *testing.T) {
	_, app := newTestAPI(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/logs/recent", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/logs/stats", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	_, app := newTestAPI(t)

	status, _ := doJSON(t, app, http.MethodGet, "/websocket/sim/abc", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}

func TestSessionManagerCleanupIdle(t *testing.T) {
	api, app := newTestAPI(t)

	idle := createSession(t, app, nil)
	playing := createSession(t, app, SessionOptions{AutoPlay: true})

	assert.Equal(t, 0, api.Sessions.CleanupIdle(time.Hour))
	assert.Equal(t, 1, api.Sessions.CleanupIdle(0))

	_, err := api.Sessions.Get(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = api.Sessions.Get(playing)
	assert.NoError(t, err)

	stats := api.Sessions.Statistics()
	assert.Equal(t, 1, stats["total_sessions"])
	assert.Equal(t, 1, stats["playing"])
}
