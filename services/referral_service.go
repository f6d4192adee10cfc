package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"renascerConnectAPI/internal/types/referral"
	"renascerConnectAPI/utils"
)

const defaultReferralRewardCents = 1000

// ReferralService maintains the referral/cashback ledger: every client gets a
// shareable code, a redeemed code links the new client to the referrer, and a
// reward is credited once the referred client completes their first workout.
type ReferralService struct {
	db          *pgxpool.Pool
	notifier    utils.NotificationCreator
	rewardCents int
}

func NewReferralService(db *pgxpool.Pool, notifier utils.NotificationCreator) *ReferralService {
	return &ReferralService{
		db:          db,
		notifier:    notifier,
		rewardCents: defaultReferralRewardCents,
	}
}

func (s *ReferralService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found: %w", err)
	}
	return userID, nil
}

// ensureCode creates the user's referral code on first access.
func (s *ReferralService) ensureCode(ctx context.Context, userID uuid.UUID) (string, error) {
	var code string
	err := s.db.QueryRow(ctx,
		`SELECT code FROM referral_codes WHERE user_id = $1`, userID).Scan(&code)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("failed to get referral code: %w", err)
	}

	code = strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	err = s.db.QueryRow(ctx, `
	INSERT INTO referral_codes (user_id, code, created_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (user_id) DO UPDATE SET code = referral_codes.code
	RETURNING code
	`, userID, code).Scan(&code)
	if err != nil {
		return "", fmt.Errorf("failed to create referral code: %w", err)
	}
	return code, nil
}

// GetSummary returns the user's code plus ledger totals.
func (s *ReferralService) GetSummary(ctx context.Context, clerkID string) (*referral.Summary, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	code, err := s.ensureCode(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &referral.Summary{Code: code}
	query := `
	SELECT
		COUNT(*) as total_referred,
		COALESCE(COUNT(*) FILTER (WHERE status = 'activated'), 0) as total_activated,
		COALESCE(SUM(reward_cents) FILTER (WHERE status = 'activated'), 0) as total_earned
	FROM referrals
	WHERE referrer_id = $1
	`
	err = s.db.QueryRow(ctx, query, userID).Scan(
		&summary.TotalReferred, &summary.TotalActivated, &summary.TotalEarnedCents)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral summary: %w", err)
	}

	summary.PendingRewardCents = (summary.TotalReferred - summary.TotalActivated) * s.rewardCents
	return summary, nil
}

// Redeem links the calling user to the owner of the code. At most one
// referral exists per referred user; redeeming twice is a no-op.
func (s *ReferralService) Redeem(ctx context.Context, clerkID string, code string) (*referral.Referral, error) {
	referredID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var referrerID uuid.UUID
	err = s.db.QueryRow(ctx,
		`SELECT user_id FROM referral_codes WHERE code = $1`, strings.ToUpper(strings.TrimSpace(code)),
	).Scan(&referrerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invalid referral code")
		}
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}

	if referrerID == referredID {
		return nil, fmt.Errorf("cannot redeem your own referral code")
	}

	ref := &referral.Referral{}
	query := `
	INSERT INTO referrals (id, referrer_id, referred_id, status, reward_cents, created_at)
	VALUES ($1, $2, $3, 'pending', 0, NOW())
	ON CONFLICT (referred_id) DO NOTHING
	RETURNING id, referrer_id, referred_id, status, reward_cents, created_at, activated_at
	`
	err = s.db.QueryRow(ctx, query, uuid.New(), referrerID, referredID).Scan(
		&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.Status,
		&ref.RewardCents, &ref.CreatedAt, &ref.ActivatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already redeemed a code before; keep the earlier link.
			return nil, fmt.Errorf("referral code already redeemed")
		}
		return nil, fmt.Errorf("failed to redeem referral code: %w", err)
	}

	return ref, nil
}

// ActivateForUser credits the referrer once the referred client completes a
// first workout. Best-effort: failures never block the workout flow.
func (s *ReferralService) ActivateForUser(ctx context.Context, referredID uuid.UUID) {
	var referrerID uuid.UUID
	err := s.db.QueryRow(ctx, `
	UPDATE referrals
	SET status = 'activated', activated_at = NOW(), reward_cents = $2
	WHERE referred_id = $1 AND status = 'pending'
	RETURNING referrer_id
	`, referredID, s.rewardCents).Scan(&referrerID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Failed to activate referral for user %s: %v", referredID, err)
		}
		return
	}

	var referredName string
	if err := s.db.QueryRow(ctx,
		`SELECT username FROM users WHERE id = $1`, referredID).Scan(&referredName); err != nil {
		referredName = "Um cliente indicado"
	}

	if s.notifier != nil {
		go utils.ReferralReward(s.notifier, referrerID, s.rewardCents, referredName)
	}
}
