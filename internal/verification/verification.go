// internal/verification/verification.go

// Package verification issues and checks emailed 6-digit codes. Challenges
// live in the verification_challenges table, one row per email address.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medical-back/internal/models"
)

const CodeLength = 6

var (
	ErrEmailMismatch = errors.New("email does not match")
	ErrInvalidCode   = errors.New("invalid verification code")
	ErrNotVerified   = errors.New("email has not been verified")
)

type Store struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: time.Now}
}

// GenerateCode returns CodeLength random decimal digits.
func GenerateCode() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// Issue creates a fresh challenge for email, replacing any earlier one.
// Expired challenges of other addresses are swept on the way.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	if _, err := s.PurgeExpired(ctx); err != nil {
		return "", fmt.Errorf("purge challenges: %w", err)
	}
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	ch := models.VerificationChallenge{
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]any{"code": code, "issued_at": now, "expires_at": ch.ExpiresAt, "verified_at": nil}),
	}).Create(&ch).Error
	if err != nil {
		return "", fmt.Errorf("store challenge: %w", err)
	}
	return code, nil
}

// Verify checks code against the live challenge for email and marks it
// verified. A verified challenge cannot be verified again.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	ch, err := s.live(ctx, email)
	if err != nil {
		return err
	}
	if ch.VerifiedAt != nil {
		return ErrEmailMismatch
	}
	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	now := s.now().UTC()
	res := s.db.WithContext(ctx).Model(&models.VerificationChallenge{}).
		Where("email = ? AND verified_at IS NULL AND code = ?", email, code).
		Update("verified_at", now)
	if res.Error != nil {
		return fmt.Errorf("mark verified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// a concurrent Issue or Verify replaced the row
		return ErrInvalidCode
	}
	return nil
}

// ConsumeVerified deletes a verified, unexpired challenge for email, or fails
// with ErrNotVerified.
func (s *Store) ConsumeVerified(ctx context.Context, email string) error {
	res := s.db.WithContext(ctx).
		Where("email = ? AND verified_at IS NOT NULL AND expires_at > ?", email, s.now().UTC()).
		Delete(&models.VerificationChallenge{})
	if res.Error != nil {
		return fmt.Errorf("consume challenge: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotVerified
	}
	return nil
}

// Discard removes any challenge for email.
func (s *Store) Discard(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.VerificationChallenge{}).Error
}

// PurgeExpired deletes challenges whose lifetime has passed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.VerificationChallenge{})
	return res.RowsAffected, res.Error
}

func (s *Store) live(ctx context.Context, email string) (*models.VerificationChallenge, error) {
	var ch models.VerificationChallenge
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailMismatch
		}
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if !s.now().UTC().Before(ch.ExpiresAt) {
		return nil, ErrInvalidCode
	}
	return &ch, nil
}
