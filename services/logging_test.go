package services

import (
	"path/filepath"
	"testing"

	"evdock-sim/algorithms"
	"evdock-sim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDatabase(ServerConfig{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "events.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestOpenDatabaseDrivers(t *testing.T) {
	db, err := OpenDatabase(ServerConfig{})
	assert.NoError(t, err)
	assert.Nil(t, db)

	_, err = OpenDatabase(ServerConfig{DBDriver: "postgres"})
	assert.Error(t, err)

	_, err = OpenDatabase(ServerConfig{DBDriver: "mysql"})
	assert.Error(t, err, "mysql needs host, user and database")
}

func TestLogBufferFlushAndQuery(t *testing.T) {
	db := openTestDB(t)
	lb := NewLogBuffer(db, 100, 0)

	robot := models.Actor{Position: algorithms.V2(60, 180)}
	lb.LogSession("s1", "create")
	lb.LogCommand("s1", models.Command{Action: models.ActionPlay}, models.PhaseIdle)
	lb.LogPhaseChange("s1", models.PhaseChange{From: models.PhaseIdle, To: models.PhaseScan}, robot, 0)
	lb.LogNarration("s1", models.Narration{Text: "Anchors localization", Phase: models.PhaseScan, Source: "template"})
	lb.LogSession("s2", "create")
	assert.Equal(t, 5, lb.Pending())

	lb.Flush()
	assert.Equal(t, 0, lb.Pending())

	store := NewLogStore(db)

	recent, err := store.Recent("s1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	assert.Equal(t, models.EventNarration, recent[0].EventType)
	assert.Equal(t, "template", recent[0].Action)
	assert.Equal(t, models.EventSession, recent[3].EventType)

	all, err := store.Recent("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	changes, err := store.ByEventType("s1", models.EventPhaseChange, 10)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "scan", changes[0].ToPhase)
	assert.Equal(t, 60.0, changes[0].RobotX)

	cmds, err := store.ByEventType("s1", models.EventCommand, 10)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0].DataJSON, `"action":"play"`)

	stats, err := store.Stats("s1", 24)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalLogs)
	assert.Equal(t, int64(1), stats.EventCounts[models.EventSession])
	assert.Equal(t, int64(1), stats.EventCounts[models.EventPhaseChange])
}

func TestLogBufferWithoutDatabase(t *testing.T) {
	lb := NewLogBuffer(nil, 2, 0)
	lb.Start()

	lb.LogSession("s1", "create")
	lb.Flush()
	assert.Equal(t, 0, lb.Pending())

	lb.Stop()
	lb.Stop()

	var nilBuffer *LogBuffer
	assert.NotPanics(t, func() { nilBuffer.LogSession("s1", "create") })
}
