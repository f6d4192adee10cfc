package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renascerConnectAPI/handlers"
	"renascerConnectAPI/internal/types/referral"
	"renascerConnectAPI/internal/types/user"
	"renascerConnectAPI/middleware"
	"renascerConnectAPI/services"
	"renascerConnectAPI/tests/helpers"
)

func fetchReferralSummary(t *testing.T, h *handlers.ReferralHandler, clerkID string) *referral.Summary {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/referral", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))
	rr := httptest.NewRecorder()

	h.GetSummary(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	summary := &referral.Summary{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), summary))
	return summary
}

func redeemCode(t *testing.T, h *handlers.ReferralHandler, clerkID, code string) *httptest.ResponseRecorder {
	t.Helper()

	body := fmt.Sprintf(`{"code": "%s"}`, code)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/referral/redeem", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))
	rr := httptest.NewRecorder()

	h.Redeem(rr, req)
	return rr
}

// TestReferralRedeemAndActivation walks the whole ledger: code issuance,
// redeem, activation on the referred client's first workout, and the
// referrer's credited summary.
func TestReferralRedeemAndActivation(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Shutdown()
	userService := services.NewUserService(pool)
	referralService := services.NewReferralService(pool, notificationService)
	progressService := services.NewProgressService(pool, notificationService, referralService)

	referralHandler := handlers.NewReferralHandler(referralService)
	progressHandler := handlers.NewProgressHandler(progressService)

	ctx := context.Background()
	ts := time.Now().Format("20060102150405")

	referrerClerkID := "user_test_referrer_" + ts
	referredClerkID := "user_test_referred_" + ts

	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   referrerClerkID,
		Email:     "testreferrer" + ts + "@example.com",
		Username:  "referrer" + ts,
		FirstName: "Test",
		LastName:  "Referrer",
	})
	require.NoError(t, err)

	_, err = userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   referredClerkID,
		Email:     "testreferred" + ts + "@example.com",
		Username:  "referred" + ts,
		FirstName: "Test",
		LastName:  "Referred",
	})
	require.NoError(t, err)

	// Code is issued on first summary access; nothing earned yet.
	summary := fetchReferralSummary(t, referralHandler, referrerClerkID)
	require.NotEmpty(t, summary.Code)
	assert.Equal(t, 0, summary.TotalReferred)
	assert.Equal(t, 0, summary.TotalEarnedCents)

	// Referred client redeems the code.
	rr := redeemCode(t, referralHandler, referredClerkID, summary.Code)
	require.Equal(t, http.StatusCreated, rr.Code)

	var ref referral.Referral
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ref))
	assert.Equal(t, referral.StatusPending, ref.Status)
	assert.Equal(t, 0, ref.RewardCents)

	// Pending until the referred client actually trains.
	summary = fetchReferralSummary(t, referralHandler, referrerClerkID)
	assert.Equal(t, 1, summary.TotalReferred)
	assert.Equal(t, 0, summary.TotalActivated)

	// First logged workout activates the referral.
	today := time.Now().UTC().Format("2006-01-02")
	body := fmt.Sprintf(`{"date": "%s", "name": "Treino A"}`, today)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/activity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, referredClerkID))
	rr = httptest.NewRecorder()
	progressHandler.LogActivity(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	summary = fetchReferralSummary(t, referralHandler, referrerClerkID)
	assert.Equal(t, 1, summary.TotalReferred)
	assert.Equal(t, 1, summary.TotalActivated)
	assert.Equal(t, 1000, summary.TotalEarnedCents)
}

// TestReferralRedeemIdempotentPerReferredUser covers the redeem guards: one
// referral per referred user, no self-referrals, no unknown codes.
func TestReferralRedeemIdempotentPerReferredUser(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Shutdown()
	userService := services.NewUserService(pool)
	referralService := services.NewReferralService(pool, notificationService)
	referralHandler := handlers.NewReferralHandler(referralService)

	ctx := context.Background()
	ts := time.Now().Format("20060102150405")

	clerkIDs := make([]string, 3)
	names := []string{"alpha", "bravo", "charlie"}
	for i, name := range names {
		clerkIDs[i] = "user_test_" + name + "_" + ts
		_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
			ClerkID:   clerkIDs[i],
			Email:     "test" + name + ts + "@example.com",
			Username:  name + ts,
			FirstName: "Test",
			LastName:  "User",
		})
		require.NoError(t, err)
	}

	alphaCode := fetchReferralSummary(t, referralHandler, clerkIDs[0]).Code
	bravoCode := fetchReferralSummary(t, referralHandler, clerkIDs[1]).Code

	// Self-referral is rejected.
	rr := redeemCode(t, referralHandler, clerkIDs[0], alphaCode)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Unknown code is rejected.
	rr = redeemCode(t, referralHandler, clerkIDs[2], "NOSUCH00")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// First redeem links charlie to alpha.
	rr = redeemCode(t, referralHandler, clerkIDs[2], alphaCode)
	require.Equal(t, http.StatusCreated, rr.Code)

	// Redeeming again, even a different code, keeps the earlier link.
	rr = redeemCode(t, referralHandler, clerkIDs[2], alphaCode)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = redeemCode(t, referralHandler, clerkIDs[2], bravoCode)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, 1, fetchReferralSummary(t, referralHandler, clerkIDs[0]).TotalReferred)
	assert.Equal(t, 0, fetchReferralSummary(t, referralHandler, clerkIDs[1]).TotalReferred)
}
