package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db/dbtest"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

func seedAlert(t *testing.T, r Repository, groupID uuid.UUID, level enums.AlertLevel, at time.Time) *models.Alert {
	t.Helper()
	alert := &models.Alert{
		ID:        uuid.New(),
		GroupID:   groupID,
		Title:     string(level) + " alert",
		Message:   "message",
		Level:     level,
		CreatedBy: uuid.New(),
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, r.Create(context.Background(), alert))
	return alert
}

func TestRepositoryListByGroupScopesAndOrders(t *testing.T) {
	db := dbtest.Open(t)
	r := NewRepository(db)
	ctx := context.Background()

	groupID := uuid.New()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	older := seedAlert(t, r, groupID, enums.AlertLevelInfo, base)
	newer := seedAlert(t, r, groupID, enums.AlertLevelDrill, base.Add(time.Hour))
	seedAlert(t, r, uuid.New(), enums.AlertLevelActivation, base)

	first := base.Add(2 * time.Hour)
	second := first.Add(time.Minute)
	require.NoError(t, db.Create(&models.AlertAcknowledgment{
		ID: uuid.New(), AlertID: newer.ID, UserID: uuid.New(), UserName: "Second", AcknowledgedAt: second,
	}).Error)
	require.NoError(t, db.Create(&models.AlertAcknowledgment{
		ID: uuid.New(), AlertID: newer.ID, UserID: uuid.New(), UserName: "First", AcknowledgedAt: first,
	}).Error)

	alerts, err := r.ListByGroup(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, newer.ID, alerts[0].ID)
	assert.Equal(t, older.ID, alerts[1].ID)
	require.Len(t, alerts[0].Acknowledgments, 2)
	assert.Equal(t, "First", alerts[0].Acknowledgments[0].UserName)
	assert.Equal(t, "Second", alerts[0].Acknowledgments[1].UserName)
	assert.Empty(t, alerts[1].Acknowledgments)
}

func TestRepositoryFindUnknownReturnsNotFound(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	_, err := r.FindByID(context.Background(), uuid.New())
	assert.True(t, repo.IsNotFound(err))
}

func TestRepositoryUpdateChangesOnlyMutableFields(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	alert := seedAlert(t, r, uuid.New(), enums.AlertLevelInfo, created)

	title := "Updated title"
	level := enums.AlertLevelActivation
	later := created.Add(time.Hour)
	updated, err := r.Update(ctx, alert.ID, Changes{Title: &title, Level: &level}, later)
	require.NoError(t, err)

	assert.Equal(t, alert.ID, updated.ID)
	assert.Equal(t, alert.GroupID, updated.GroupID)
	assert.Equal(t, alert.CreatedBy, updated.CreatedBy)
	assert.True(t, updated.CreatedAt.Equal(created))
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.Equal(t, "Updated title", updated.Title)
	assert.Equal(t, "message", updated.Message)
	assert.Equal(t, enums.AlertLevelActivation, updated.Level)

	_, err = r.Update(ctx, uuid.New(), Changes{Title: &title}, later)
	assert.True(t, repo.IsNotFound(err))
}

func TestRepositoryDeleteCascadesAndRejectsSecondDelete(t *testing.T) {
	db := dbtest.Open(t)
	r := NewRepository(db)
	ctx := context.Background()

	alert := seedAlert(t, r, uuid.New(), enums.AlertLevelStandby, time.Now().UTC())
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.AlertAcknowledgment{
			ID: uuid.New(), AlertID: alert.ID, UserID: uuid.New(), UserName: "member", AcknowledgedAt: time.Now().UTC(),
		}).Error)
	}

	require.NoError(t, r.Delete(ctx, alert.ID))

	var remaining int64
	require.NoError(t, db.Model(&models.AlertAcknowledgment{}).Where("alert_id = ?", alert.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	assert.True(t, repo.IsNotFound(r.Delete(ctx, alert.ID)))
}
