package repository_test

import (
	"context"
	"testing"

	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "owner_id"}))

	// Act
	project, err := projectRepo.GetByID(context.Background(), 3)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, project)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_GetOwned(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE owner_id = `).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "owner_id"}).
			AddRow(int64(1), "Roadmap", int64(1)).
			AddRow(int64(2), "Ops", int64(1)))

	// Act
	projects, err := projectRepo.GetOwned(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Len(t, projects, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
