package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
)

var sessionCols = []string{
	"id", "user_id", "refresh_hash", "previous_hash", "device_id", "device_type",
	"platform", "app_version", "active", "created_at", "last_accessed_at", "expires_at",
}

func sessionRow(s *model.Session) *pgxmock.Rows {
	return pgxmock.NewRows(sessionCols).AddRow(
		s.ID, s.UserID, s.RefreshHash, s.PreviousHash, s.DeviceID, s.DeviceType,
		s.Platform, s.AppVersion, s.Active, s.CreatedAt, s.LastAccessedAt, s.ExpiresAt)
}

func testSession() *model.Session {
	now := time.Now().Truncate(time.Second)
	return &model.Session{
		ID:             uuid.Must(uuid.NewV4()),
		UserID:         uuid.Must(uuid.NewV4()),
		RefreshHash:    "hash-current",
		PreviousHash:   "",
		DeviceID:       "device-1",
		DeviceType:     "phone",
		Platform:       "ios",
		AppVersion:     "1.4.0",
		Active:         true,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(7 * 24 * time.Hour),
	}
}

func TestSessionRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	s := testSession()

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(s.ID, s.UserID, s.RefreshHash, s.PreviousHash, s.DeviceID, s.DeviceType,
			s.Platform, s.AppVersion, s.Active, s.CreatedAt, s.LastAccessedAt, s.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(context.Background(), s))
}

func TestSessionRepo_FindByTokenHash(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	s := testSession()

	mock.ExpectQuery(`FROM sessions WHERE refresh_hash=\$1 OR previous_hash=\$1`).
		WithArgs(s.RefreshHash).
		WillReturnRows(sessionRow(s))
	got, err := r.FindByTokenHash(context.Background(), s.RefreshHash)
	require.NoError(t, err)
	require.Equal(t, s.ID, got.ID)

	mock.ExpectQuery(`FROM sessions WHERE refresh_hash=\$1 OR previous_hash=\$1`).
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.FindByTokenHash(context.Background(), "unknown")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSessionRepo_FindActiveByUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	s1, s2 := testSession(), testSession()
	s2.UserID = s1.UserID

	rows := pgxmock.NewRows(sessionCols).
		AddRow(s1.ID, s1.UserID, s1.RefreshHash, s1.PreviousHash, s1.DeviceID, s1.DeviceType,
			s1.Platform, s1.AppVersion, s1.Active, s1.CreatedAt, s1.LastAccessedAt, s1.ExpiresAt).
		AddRow(s2.ID, s2.UserID, s2.RefreshHash, s2.PreviousHash, s2.DeviceID, s2.DeviceType,
			s2.Platform, s2.AppVersion, s2.Active, s2.CreatedAt, s2.LastAccessedAt, s2.ExpiresAt)

	mock.ExpectQuery(`FROM sessions WHERE user_id=\$1 AND active ORDER BY created_at ASC`).
		WithArgs(s1.UserID).
		WillReturnRows(rows)

	got, err := r.FindActiveByUser(context.Background(), s1.UserID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, s1.ID, got[0].ID)
}

func TestSessionRepo_FindExpiringWithin(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	s := testSession()
	now := time.Now()

	mock.ExpectQuery(`FROM sessions WHERE active AND expires_at > \$1 AND expires_at <= \$2 ORDER BY expires_at ASC`).
		WithArgs(now, now.Add(24*time.Hour)).
		WillReturnRows(sessionRow(s))

	got, err := r.FindExpiringWithin(context.Background(), now, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSessionRepo_Rotate(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	s := testSession()
	now := time.Now()
	expires := now.Add(7 * 24 * time.Hour)

	mock.ExpectExec(`UPDATE sessions SET refresh_hash=\$3, previous_hash=\$2, last_accessed_at=\$4, expires_at=\$5 WHERE id=\$1 AND refresh_hash=\$2 AND active`).
		WithArgs(s.ID, "hash-current", "hash-next", now, expires).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.Rotate(context.Background(), s.ID, "hash-current", "hash-next", now, expires))

	// Concurrent rotation already swapped the hash; this attempt loses.
	mock.ExpectExec(`UPDATE sessions SET refresh_hash=`).
		WithArgs(s.ID, "hash-current", "hash-other", now, expires).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := r.Rotate(context.Background(), s.ID, "hash-current", "hash-other", now, expires)
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestSessionRepo_MarkInactive(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE sessions SET active=false WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.MarkInactive(context.Background(), id))

	mock.ExpectExec(`UPDATE sessions SET active=false WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.MarkInactive(context.Background(), id), errs.ErrNotFound)
}

func TestSessionRepo_MarkInactiveByUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE sessions SET active=false WHERE user_id=\$1 AND active`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	n, err := r.MarkInactiveByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestSessionRepo_DeactivateExpired(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	now := time.Now()

	mock.ExpectExec(`UPDATE sessions SET active=false WHERE active AND expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 5))
	n, err := r.DeactivateExpired(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestSessionRepo_CountActive(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sessions WHERE user_id=\$1 AND active`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))
	n, err := r.CountActive(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 4, n)
}
