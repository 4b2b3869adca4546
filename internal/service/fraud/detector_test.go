package fraud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/pkg/ptr"
)

type fakeHistoryRepo struct {
	entries    []*domain.StatusHistoryEntry
	claimCount int
	err        error
}

func (f *fakeHistoryRepo) RecentHistory(_ context.Context, _ int64, _ uint64) ([]*domain.StatusHistoryEntry, error) {
	return f.entries, f.err
}

func (f *fakeHistoryRepo) CountNoShowClaims(_ context.Context, _ int64, _ domain.BookingStatus, _ time.Time) (int, error) {
	return f.claimCount, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testConfig() Config {
	return Config{
		RapidChangeWindow: 5 * time.Minute,
		RapidChangeCount:  3,
		NoShowThreshold:   3,
		NoShowWindow:      30 * 24 * time.Hour,
	}
}

func historyAt(times ...time.Time) []*domain.StatusHistoryEntry {
	entries := make([]*domain.StatusHistoryEntry, len(times))
	for i, ts := range times {
		entries[i] = &domain.StatusHistoryEntry{CreatedAt: ts}
	}
	return entries
}

func TestCheckRapidStatusChanges(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := &domain.Booking{ID: 1, CustomerID: 10, ProviderID: 20, Status: domain.StatusConfirmed, BookingDate: now.Add(time.Hour)}

	t.Run("three changes inside window", func(t *testing.T) {
		// от новых к старым, все в пределах двух минут
		repo := &fakeHistoryRepo{entries: historyAt(now, now.Add(-time.Minute), now.Add(-2*time.Minute))}
		det := NewDetector(repo, testConfig(), nopLogger{})

		result, err := det.Check(context.Background(), CheckInput{
			Booking: booking, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusCancelled, Now: now,
		})

		require.NoError(t, err)
		assert.Contains(t, result.Signals, SignalRapidStatusChanges)
		assert.False(t, result.Blocked)
	})

	t.Run("changes spread beyond window", func(t *testing.T) {
		repo := &fakeHistoryRepo{entries: historyAt(now, now.Add(-10*time.Minute), now.Add(-20*time.Minute))}
		det := NewDetector(repo, testConfig(), nopLogger{})

		result, err := det.Check(context.Background(), CheckInput{
			Booking: booking, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusCancelled, Now: now,
		})

		require.NoError(t, err)
		assert.NotContains(t, result.Signals, SignalRapidStatusChanges)
	})

	t.Run("too few history entries", func(t *testing.T) {
		repo := &fakeHistoryRepo{entries: historyAt(now, now.Add(-time.Minute))}
		det := NewDetector(repo, testConfig(), nopLogger{})

		result, err := det.Check(context.Background(), CheckInput{
			Booking: booking, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusCancelled, Now: now,
		})

		require.NoError(t, err)
		assert.Empty(t, result.Signals)
	})
}

func TestCheckPostServiceCancellationBlocks(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pastBooking := &domain.Booking{ID: 2, CustomerID: 10, ProviderID: 20, Status: domain.StatusConfirmed, BookingDate: now.Add(-time.Hour)}

	det := NewDetector(&fakeHistoryRepo{}, testConfig(), nopLogger{})

	t.Run("provider cancel after service date is blocked", func(t *testing.T) {
		result, err := det.Check(context.Background(), CheckInput{
			Booking: pastBooking, ActorUserID: 20, Role: domain.RoleProvider,
			TargetStatus: domain.StatusCancelled, Now: now,
		})

		require.NoError(t, err)
		assert.Contains(t, result.Signals, SignalPostServiceCancellation)
		assert.True(t, result.Blocked)
	})

	t.Run("provider no-show claim after service date is blocked", func(t *testing.T) {
		result, err := det.Check(context.Background(), CheckInput{
			Booking: pastBooking, ActorUserID: 20, Role: domain.RoleProvider,
			TargetStatus: domain.StatusNoShowCustomer, Now: now,
		})

		require.NoError(t, err)
		assert.True(t, result.Blocked)
	})

	t.Run("customer cancel after service date is not blocked by this signal", func(t *testing.T) {
		result, err := det.Check(context.Background(), CheckInput{
			Booking: pastBooking, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusCancelled, Now: now,
		})

		require.NoError(t, err)
		assert.NotContains(t, result.Signals, SignalPostServiceCancellation)
		assert.False(t, result.Blocked)
	})

	t.Run("provider cancel before service date is clean", func(t *testing.T) {
		future := &domain.Booking{ID: 3, ProviderID: 20, Status: domain.StatusConfirmed, BookingDate: now.Add(time.Hour)}
		result, err := det.Check(context.Background(), CheckInput{
			Booking: future, ActorUserID: 20, Role: domain.RoleProvider,
			TargetStatus: domain.StatusCancelled, Now: now,
		})

		require.NoError(t, err)
		assert.False(t, result.Blocked)
	})
}

func TestCheckReviewAvoidance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	completed := &domain.Booking{ID: 4, CustomerID: 10, ProviderID: 20, Status: domain.StatusCompleted, BookingDate: now.Add(-48 * time.Hour)}

	det := NewDetector(&fakeHistoryRepo{}, testConfig(), nopLogger{})

	t.Run("dispute on completed booking without reason", func(t *testing.T) {
		result, err := det.Check(context.Background(), CheckInput{
			Booking: completed, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusDisputed, DisputeReason: ptr.Ptr(""), Now: now,
		})

		require.NoError(t, err)
		assert.Contains(t, result.Signals, SignalPotentialReviewAvoidance)
		assert.False(t, result.Blocked)
	})

	t.Run("dispute with reason is clean", func(t *testing.T) {
		result, err := det.Check(context.Background(), CheckInput{
			Booking: completed, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusDisputed, DisputeReason: ptr.Ptr("провод перебит"), Now: now,
		})

		require.NoError(t, err)
		assert.NotContains(t, result.Signals, SignalPotentialReviewAvoidance)
	})

	t.Run("dispute on in_progress booking is not review avoidance", func(t *testing.T) {
		inProgress := &domain.Booking{ID: 5, CustomerID: 10, Status: domain.StatusInProgress, BookingDate: now.Add(-time.Hour)}
		result, err := det.Check(context.Background(), CheckInput{
			Booking: inProgress, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusDisputed, DisputeReason: ptr.Ptr(""), Now: now,
		})

		require.NoError(t, err)
		assert.NotContains(t, result.Signals, SignalPotentialReviewAvoidance)
	})
}

func TestCheckRepeatedNoShowClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := &domain.Booking{ID: 6, CustomerID: 10, ProviderID: 20, Status: domain.StatusConfirmed, BookingDate: now.Add(time.Hour)}

	t.Run("threshold reached counting current claim", func(t *testing.T) {
		// Две прошлые заявки + текущая = порог 3
		repo := &fakeHistoryRepo{claimCount: 2}
		det := NewDetector(repo, testConfig(), nopLogger{})

		result, err := det.Check(context.Background(), CheckInput{
			Booking: booking, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusNoShowProvider, Now: now,
		})

		require.NoError(t, err)
		assert.Contains(t, result.Signals, SignalRepeatedNoShowClaims)
	})

	t.Run("below threshold", func(t *testing.T) {
		repo := &fakeHistoryRepo{claimCount: 1}
		det := NewDetector(repo, testConfig(), nopLogger{})

		result, err := det.Check(context.Background(), CheckInput{
			Booking: booking, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusNoShowProvider, Now: now,
		})

		require.NoError(t, err)
		assert.NotContains(t, result.Signals, SignalRepeatedNoShowClaims)
	})

	t.Run("cancel target does not count as claim", func(t *testing.T) {
		repo := &fakeHistoryRepo{claimCount: 10}
		det := NewDetector(repo, testConfig(), nopLogger{})

		result, err := det.Check(context.Background(), CheckInput{
			Booking: booking, ActorUserID: 10, Role: domain.RoleCustomer,
			TargetStatus: domain.StatusCancelled, Now: now,
		})

		require.NoError(t, err)
		assert.NotContains(t, result.Signals, SignalRepeatedNoShowClaims)
	})
}

func TestCheckSurvivesHistoryErrors(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := &domain.Booking{ID: 7, CustomerID: 10, ProviderID: 20, Status: domain.StatusConfirmed, BookingDate: now.Add(time.Hour)}

	repo := &fakeHistoryRepo{err: errors.New("connection reset")}
	det := NewDetector(repo, testConfig(), nopLogger{})

	// Детектор advisory: ошибка чтения истории не валит запрос
	result, err := det.Check(context.Background(), CheckInput{
		Booking: booking, ActorUserID: 10, Role: domain.RoleCustomer,
		TargetStatus: domain.StatusNoShowProvider, Now: now,
	})

	require.NoError(t, err)
	assert.Empty(t, result.Signals)
}
