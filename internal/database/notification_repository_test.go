package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

func TestNotificationInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	notification := &models.Notification{
		UserID:  "user-1",
		Type:    models.NotificationTypeBooking,
		Title:   "New booking request",
		Message: "alice requested a booking",
	}

	mock.ExpectQuery("INSERT INTO notifications").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	err := repo.Insert(notification)
	require.NoError(t, err)
	assert.NotEmpty(t, notification.ID)
}

func TestNotificationMarkRead_ScopedToOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	// Someone else's notification id matches no rows
	mock.ExpectExec("UPDATE notifications").
		WithArgs("notif-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead("notif-1", "intruder")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestNotificationMarkAllRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec("UPDATE notifications").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	updated, err := repo.MarkAllRead("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated)
}

func TestNotificationUnreadCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.UnreadCount("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
