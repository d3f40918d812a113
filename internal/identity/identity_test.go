// internal/identity/identity_test.go
package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medical-back/internal/database"
	"medical-back/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err, "Failed to create test database")
	require.NoError(t, database.MigrateDB(db), "Failed to migrate schema")
	return db
}

func registerInput() RegisterInput {
	birth := models.NewDate(1985, time.March, 14)
	return RegisterInput{
		Email:       "a@x.com",
		Password:    "secret1",
		FirstName:   "Anna",
		LastName:    "Petrova",
		BirthDate:   &birth,
		PhoneNumber: "+77001234567",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesAccountAndDoctor", func(t *testing.T) {
		s := NewStore(setupTestDB(t))
		doctor, err := s.Register(ctx, registerInput())
		require.NoError(t, err)
		assert.NotZero(t, doctor.ID)
		assert.NotZero(t, doctor.AccountID)
		assert.Equal(t, "a@x.com", doctor.Account.Email)
		assert.NotEqual(t, "secret1", doctor.Account.Password, "password must be hashed")
		assert.True(t, doctor.Account.IsActive)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewStore(db)
		_, err := s.Register(ctx, registerInput())
		require.NoError(t, err)

		_, err = s.Register(ctx, registerInput())
		assert.ErrorIs(t, err, ErrDuplicateEmail)

		var count int64
		require.NoError(t, db.Model(&models.Account{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("DuplicateEmailRace", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewStore(db)

		// another registration claims the email between the count and the insert
		raced := false
		require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:race", func(tx *gorm.DB) {
			if raced || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "accounts" {
				return
			}
			raced = true
			tx.Session(&gorm.Session{NewDB: true}).Exec(
				"INSERT INTO accounts (email, password, first_name, last_name) VALUES (?, 'x', 'Other', 'Doctor')", "a@x.com")
		}))

		_, err := s.Register(ctx, registerInput())
		assert.True(t, raced)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("WeakPassword", func(t *testing.T) {
		s := NewStore(setupTestDB(t))
		in := registerInput()
		in.Password = "12345"
		_, err := s.Register(ctx, in)
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		s := NewStore(setupTestDB(t))
		tests := []struct {
			name   string
			mutate func(*RegisterInput)
		}{
			{"BadEmail", func(in *RegisterInput) { in.Email = "not-an-email" }},
			{"MissingFirstName", func(in *RegisterInput) { in.FirstName = " " }},
			{"LongPhone", func(in *RegisterInput) { in.PhoneNumber = "1234567890123456" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := registerInput()
				tt.mutate(&in)
				_, err := s.Register(ctx, in)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	_, err := s.Register(ctx, registerInput())
	require.NoError(t, err)

	account, err := s.Authenticate(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)

	_, err = s.Authenticate(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	_, err := s.Register(ctx, registerInput())
	require.NoError(t, err)

	require.NoError(t, s.ResetPassword(ctx, "a@x.com", "newsecret"))

	_, err = s.Authenticate(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "a@x.com", "newsecret")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.ResetPassword(ctx, "nobody@x.com", "newsecret"), ErrAccountNotFound)
	assert.ErrorIs(t, s.ResetPassword(ctx, "a@x.com", "123"), ErrWeakPassword)
}

func TestDoctorForAccount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	s := NewStore(db)
	doctor, err := s.Register(ctx, registerInput())
	require.NoError(t, err)

	found, err := s.DoctorForAccount(ctx, doctor.AccountID)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, found.ID)
	assert.Equal(t, "Anna", found.Account.FirstName)
	require.NotNil(t, found.BirthDate)
	assert.Equal(t, "1985-03-14", found.BirthDate.String())

	bare := models.Account{Email: "staff@x.com", Password: "x", FirstName: "S", LastName: "T", IsActive: true}
	require.NoError(t, db.Create(&bare).Error)
	_, err = s.DoctorForAccount(ctx, bare.ID)
	assert.ErrorIs(t, err, ErrNoDoctorProfile)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	doctor, err := s.Register(ctx, registerInput())
	require.NoError(t, err)

	first := "Maria"
	phone := "+77009999999"
	updated, err := s.UpdateProfile(ctx, doctor, ProfileUpdate{FirstName: &first, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Maria", updated.Account.FirstName)
	assert.Equal(t, "Petrova", updated.Account.LastName, "untouched fields keep their value")
	assert.Equal(t, "+77009999999", updated.PhoneNumber)

	blank := ""
	_, err = s.UpdateProfile(ctx, doctor, ProfileUpdate{LastName: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail(" Ivan@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "Ivan@example.com", got)

	_, err = NormalizeEmail("Ivan <ivan@example.com>")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
