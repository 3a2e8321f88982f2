package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, logger := setupMockDB(t)
	return NewUserRepository(db, logger), mock
}

func TestNewUserRepository(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	db := &sql.DB{}

	repo := NewUserRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedErr   error
		expectedError bool
		expectedID    int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(models.RoleUser, "budi", "budi@example.com", "hash", true).
					WillReturnResult(sqlmock.NewResult(7, 1))
			},
			expectedID: 7,
		},
		{
			name: "duplicate entry",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			expectedError: true,
			expectedErr:   models.ErrConflict,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserTestRepository(t)
			tt.setupMock(mock)

			user := &models.User{Role: models.RoleUser, Username: "budi", Email: "budi@example.com", PasswordHash: "hash", IsActive: true}
			err := repo.Create(context.Background(), user)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, user.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	now := time.Now()
	columns := []string{"id", "role_id", "username", "email", "password", "is_active", "created_at", "updated_at"}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedErr   error
		expectedError bool
		expectedUser  *models.User
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \? LIMIT 1`).
					WithArgs("budi@example.com").
					WillReturnRows(sqlmock.NewRows(columns).AddRow(1, 2, "budi", "budi@example.com", "hash", true, now, now))
			},
			expectedUser: &models.User{
				ID: 1, Role: models.RoleUser, Username: "budi", Email: "budi@example.com",
				PasswordHash: "hash", IsActive: true, CreatedAt: now, UpdatedAt: now,
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \?`).
					WithArgs("budi@example.com").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: true,
			expectedErr:   models.ErrUserNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \?`).
					WithArgs("budi@example.com").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserTestRepository(t)
			tt.setupMock(mock)

			user, err := repo.GetByEmail(context.Background(), "budi@example.com")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, user)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				} else {
					assert.NotErrorIs(t, err, models.ErrNotFound)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := setupUserTestRepository(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \? LIMIT 1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role_id", "username", "email", "password", "is_active", "created_at", "updated_at"}).
			AddRow(3, 1, "admin", "admin@example.com", "hash", false, now, now))

	user, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.False(t, user.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Exists(t *testing.T) {
	repo, mock := setupUserTestRepository(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE email = \?\)`).
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE username = \?\)`).
		WithArgs("budi").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("x").
		WillReturnError(errors.New("database error"))

	exists, err := repo.ExistsByEmail(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername(context.Background(), "budi")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.ExistsByUsername(context.Background(), "x")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListActive(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedCount int
		expectedTotal int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE is_active = TRUE`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
				mock.ExpectQuery(`SELECT u.id, u.username.+WHERE u.is_active = TRUE.+LIMIT \? OFFSET \?`).
					WithArgs(10, 10).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role_id", "role_name", "created_at"}).
						AddRow(1, "budi", "budi@example.com", 2, "user", now).
						AddRow(2, "sari", "sari@example.com", 1, "admin", now))
			},
			expectedCount: 2,
			expectedTotal: 12,
		},
		{
			name: "empty page",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(`SELECT u.id`).
					WithArgs(10, 10).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role_id", "role_name", "created_at"}))
			},
			expectedCount: 0,
		},
		{
			name: "count error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name: "scan error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectQuery(`SELECT u.id`).
					WithArgs(10, 10).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role_id", "role_name", "created_at"}).
						AddRow("not-a-number", "budi", "budi@example.com", 2, "user", now))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserTestRepository(t)
			tt.setupMock(mock)

			users, total, err := repo.ListActive(context.Background(), models.NewPage(2, 10))

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, users)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, users)
				assert.Len(t, users, tt.expectedCount)
				assert.Equal(t, tt.expectedTotal, total)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetActive(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserTestRepository(t)
		mock.ExpectQuery(`WHERE u.id = \? AND u.is_active = TRUE`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role_id", "role_name", "created_at"}).
				AddRow(4, "budi", "budi@example.com", 2, "user", time.Now()))

		user, err := repo.GetActive(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, "user", user.RoleName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inactive or missing", func(t *testing.T) {
		repo, mock := setupUserTestRepository(t)
		mock.ExpectQuery(`WHERE u.id = \? AND u.is_active = TRUE`).
			WithArgs(4).
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetActive(context.Background(), 4)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Deactivate(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectedErr error
		expectError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET is_active = FALSE WHERE id = \? AND is_active = TRUE`).
					WithArgs(5).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already inactive",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET is_active = FALSE`).
					WithArgs(5).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectError: true,
			expectedErr: models.ErrUserNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users SET is_active = FALSE`).
					WithArgs(5).
					WillReturnError(errors.New("database error"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserTestRepository(t)
			tt.setupMock(mock)

			err := repo.Deactivate(context.Background(), 5)
			if tt.expectError {
				assert.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_UpdateRole(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserTestRepository(t)
		mock.ExpectExec(`UPDATE users SET role_id = \? WHERE id = \? AND is_active = TRUE`).
			WithArgs(models.RoleAdmin, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateRole(context.Background(), 5, models.RoleAdmin))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		repo, mock := setupUserTestRepository(t)
		mock.ExpectExec(`UPDATE users SET role_id = \?`).
			WithArgs(models.RoleAdmin, 5).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateRole(context.Background(), 5, models.RoleAdmin), models.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
