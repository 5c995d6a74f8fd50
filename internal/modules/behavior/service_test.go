package behavior

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/internal/events"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	return NewService(testEngine(), repo, events.NewManager(zerolog.Nop()), zerolog.Nop())
}

func debit(userID int64, category string, amount float64, ts time.Time) domain.Transaction {
	return domain.Transaction{
		UserID:    userID,
		Amount:    amount,
		Category:  category,
		Type:      domain.TransactionDebit,
		Timestamp: ts,
	}
}

func TestServiceRecordTransactionCreatesProfile(t *testing.T) {
	svc := setupTestService(t)
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	profile, err := svc.RecordTransaction(debit(1, "GROCERIES", 55.20, now), now)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(1), profile.TransactionCount)

	stored, err := svc.GetProfile(1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 55.20, stored.Stat("GROCERIES").Mean, 1e-9)
}

func TestServiceCreditsDoNotFoldIntoStats(t *testing.T) {
	svc := setupTestService(t)
	now := time.Now().UTC()

	credit := domain.Transaction{
		UserID:    1,
		Amount:    2500,
		Category:  "SALARY",
		Type:      domain.TransactionCredit,
		Timestamp: now,
	}

	profile, err := svc.RecordTransaction(credit, now)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(0), profile.TransactionCount)
	assert.Nil(t, profile.Stat("SALARY"))

	// Nothing was persisted either.
	stored, err := svc.GetProfile(1)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestServiceConcurrentUpdatesSameUser(t *testing.T) {
	svc := setupTestService(t)
	now := time.Now().UTC()

	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := svc.RecordTransaction(debit(1, "GROCERIES", 10, now), now)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	profile, err := svc.GetProfile(1)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(workers*perWorker), profile.TransactionCount)
	assert.Equal(t, float64(workers*perWorker), profile.Stat("GROCERIES").Count)
	assert.InDelta(t, 10.0, profile.Stat("GROCERIES").Mean, 1e-9)
}

func TestServiceUsersAreIndependent(t *testing.T) {
	svc := setupTestService(t)
	now := time.Now().UTC()

	_, err := svc.RecordTransaction(debit(1, "GROCERIES", 100, now), now)
	require.NoError(t, err)
	_, err = svc.RecordTransaction(debit(2, "GROCERIES", 900, now), now)
	require.NoError(t, err)

	p1, err := svc.GetProfile(1)
	require.NoError(t, err)
	p2, err := svc.GetProfile(2)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, p1.Stat("GROCERIES").Mean, 1e-9)
	assert.InDelta(t, 900.0, p2.Stat("GROCERIES").Mean, 1e-9)
}
