package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/storynest/gateway/internal/errs"
)

func TestContentRepo_GetVersion(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContentRepo(db)

	checksums := map[string]string{
		"stories/welcome.json": "abc123",
		"stories/forest.json":  "def456",
	}
	updated := time.Now().Truncate(time.Second)

	mock.ExpectQuery(`SELECT domain, version, checksums, total_assets, last_updated FROM content_versions WHERE domain=\$1`).
		WithArgs("stories").
		WillReturnRows(pgxmock.NewRows([]string{"domain", "version", "checksums", "total_assets", "last_updated"}).
			AddRow("stories", int64(42), checksums, 2, updated))

	v, err := r.GetVersion(context.Background(), "stories")
	require.NoError(t, err)
	require.Equal(t, int64(42), v.Version)
	require.Equal(t, checksums, v.Checksums)
	require.Equal(t, 2, v.TotalAssets)
}

func TestContentRepo_GetVersion_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContentRepo(db)

	mock.ExpectQuery(`FROM content_versions WHERE domain=\$1`).
		WithArgs("videos").
		WillReturnError(pgx.ErrNoRows)

	_, err := r.GetVersion(context.Background(), "videos")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestContentRepo_GetVersion_NilChecksums(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContentRepo(db)

	mock.ExpectQuery(`FROM content_versions WHERE domain=\$1`).
		WithArgs("assets").
		WillReturnRows(pgxmock.NewRows([]string{"domain", "version", "checksums", "total_assets", "last_updated"}).
			AddRow("assets", int64(1), map[string]string(nil), 0, time.Now()))

	v, err := r.GetVersion(context.Background(), "assets")
	require.NoError(t, err)
	require.NotNil(t, v.Checksums)
	require.Empty(t, v.Checksums)
}
