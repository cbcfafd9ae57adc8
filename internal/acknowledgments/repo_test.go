package acknowledgments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db/dbtest"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

func seedAlert(t *testing.T, conn *gorm.DB) models.Alert {
	t.Helper()
	now := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	alert := models.Alert{
		ID:        uuid.New(),
		GroupID:   uuid.New(),
		Title:     "Drill",
		Message:   "Quarterly drill",
		Level:     enums.AlertLevelDrill,
		CreatedBy: uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, conn.Omit("Acknowledgments").Create(&alert).Error)
	return alert
}

func newAck(alertID, userID uuid.UUID, name string, at time.Time) models.AlertAcknowledgment {
	return models.AlertAcknowledgment{
		ID:             uuid.New(),
		AlertID:        alertID,
		UserID:         userID,
		UserName:       name,
		AcknowledgedAt: at,
	}
}

func TestRepositoryAppendOncePerUser(t *testing.T) {
	conn := dbtest.Open(t)
	r := NewRepository(conn)
	ctx := context.Background()
	alert := seedAlert(t, conn)
	userID := uuid.New()
	at := time.Date(2026, 5, 2, 9, 5, 0, 0, time.UTC)

	first, err := r.Append(ctx, newAck(alert.ID, userID, "Dana", at))
	require.NoError(t, err)
	assert.True(t, first.Applied)
	assert.Equal(t, alert.GroupID, first.GroupID)

	second, err := r.Append(ctx, newAck(alert.ID, userID, "Dana again", at.Add(time.Minute)))
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Equal(t, first.Acknowledgment.ID, second.Acknowledgment.ID)
	assert.Equal(t, "Dana", second.Acknowledgment.UserName)

	count, err := r.Count(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepositoryUnknownAlert(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	missing := uuid.New()

	_, err := r.Append(ctx, newAck(missing, uuid.New(), "Nobody", time.Now().UTC()))
	assert.True(t, repo.IsNotFound(err), "append: %v", err)

	_, err = r.ListForAlert(ctx, missing)
	assert.True(t, repo.IsNotFound(err), "list: %v", err)

	_, err = r.Exists(ctx, missing, uuid.New())
	assert.True(t, repo.IsNotFound(err), "exists: %v", err)

	_, err = r.Count(ctx, missing)
	assert.True(t, repo.IsNotFound(err), "count: %v", err)
}

func TestRepositoryListOrdersByAcknowledgedAt(t *testing.T) {
	conn := dbtest.Open(t)
	r := NewRepository(conn)
	ctx := context.Background()
	alert := seedAlert(t, conn)
	base := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	_, err := r.Append(ctx, newAck(alert.ID, uuid.New(), "Later", base.Add(5*time.Minute)))
	require.NoError(t, err)
	_, err = r.Append(ctx, newAck(alert.ID, uuid.New(), "Earlier", base))
	require.NoError(t, err)

	acks, err := r.ListForAlert(ctx, alert.ID)
	require.NoError(t, err)
	require.Len(t, acks, 2)
	assert.Equal(t, "Earlier", acks[0].UserName)
	assert.Equal(t, "Later", acks[1].UserName)

	empty := seedAlert(t, conn)
	acks, err = r.ListForAlert(ctx, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, acks)
	assert.Empty(t, acks)
}

func TestRepositoryExists(t *testing.T) {
	conn := dbtest.Open(t)
	r := NewRepository(conn)
	ctx := context.Background()
	alert := seedAlert(t, conn)
	userID := uuid.New()

	ok, err := r.Exists(ctx, alert.ID, userID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Append(ctx, newAck(alert.ID, userID, "Dana", time.Now().UTC()))
	require.NoError(t, err)

	ok, err = r.Exists(ctx, alert.ID, userID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepositoryConcurrentDuplicateAppliesOnce(t *testing.T) {
	conn := dbtest.Open(t)
	r := NewRepository(conn)
	alert := seedAlert(t, conn)
	userID := uuid.New()

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
		errs    []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Append(context.Background(), newAck(alert.ID, userID, "Dana", time.Now().UTC()))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if res.Applied {
				applied++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, applied)
	count, err := r.Count(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
