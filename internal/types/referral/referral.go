package referral

import (
	"time"

	"github.com/google/uuid"
)

type ReferralStatus string

const (
	StatusPending   ReferralStatus = "pending"
	StatusActivated ReferralStatus = "activated"
)

// Referral links a referred client to the referrer, at most one per referred user.
type Referral struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	ReferrerID  uuid.UUID      `json:"referrer_id" db:"referrer_id"`
	ReferredID  uuid.UUID      `json:"referred_id" db:"referred_id"`
	Status      ReferralStatus `json:"status" db:"status"`
	RewardCents int            `json:"reward_cents" db:"reward_cents"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	ActivatedAt *time.Time     `json:"activated_at" db:"activated_at"`
}

type RedeemRequest struct {
	Code string `json:"code" validate:"required"`
}

type Summary struct {
	Code              string `json:"code"`
	TotalReferred     int    `json:"total_referred"`
	TotalActivated    int    `json:"total_activated"`
	TotalEarnedCents  int    `json:"total_earned_cents"`
	PendingRewardCents int   `json:"pending_reward_cents"`
}
