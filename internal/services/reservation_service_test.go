package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderguide/marketplace-api/internal/cache"
	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/identity"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/pricing"
	"github.com/wanderguide/marketplace-api/internal/slots"
	"github.com/wanderguide/marketplace-api/internal/testutil"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTAccessExpiry:    15 * time.Minute,
		JWTRefreshExpiry:   time.Hour,
		TravelerFeePercent: 10,
		CommissionPercent:  15,
		CommissionMin:      5,
		Currency:           "EUR",
		ReviewEditWindow:   24 * time.Hour,
	}
}

// noCache is a loader that never stores anything.
func noCache() *cache.Loader { return cache.NewLoader(nil, 0) }

func newReservationService(db *gorm.DB) *ReservationService {
	cfg := testConfig()
	return NewReservationService(db, cfg, NewSettingsService(db, cfg))
}

func callerOf(u *models.User) identity.Caller {
	return identity.Caller{ID: u.ID, Email: u.Email, Role: u.Role}
}

func slotStatus(t *testing.T, db *gorm.DB, id uuid.UUID) models.SlotStatus {
	t.Helper()
	var slot models.AvailabilitySlot
	require.NoError(t, db.First(&slot, "id = ?", id).Error)
	return slot.Status
}

func TestReservationCreate_WithSlotUsesBaseRate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	traveler := testutil.CreateUser(t, db, models.RoleTraveler)
	guide, _ := testutil.CreateGuide(t, db, testutil.Int64(30))
	slot := testutil.CreateSlot(t, db, guide.ID, time.Now().Add(48*time.Hour), 6, models.SlotOpen)

	resp, err := svc.Create(context.Background(), callerOf(traveler), &dto.CreateReservationRequest{
		GuideID: guide.ID,
		SlotID:  &slot.ID,
		Meeting: "Hotel lobby",
	})
	require.NoError(t, err)

	// 30 * 6 * 0.95 = 171
	assert.True(t, resp.SlotReserved)
	assert.Equal(t, int64(171), resp.Quote.Subtotal)
	assert.Equal(t, int64(17), resp.Quote.TravelerFee)
	assert.Equal(t, int64(188), resp.Quote.Total)
	assert.Equal(t, int64(26), resp.Quote.Commission)
	assert.Equal(t, int64(145), resp.Quote.GuidePayout)
	assert.Equal(t, models.ReservationPending, resp.Reservation.Status)
	assert.Equal(t, "EUR", resp.Reservation.Currency)

	require.Len(t, resp.Booking.Sessions, 1)
	assert.Equal(t, 6, resp.Booking.Sessions[0].DurationHours)
	assert.Equal(t, slot.StartTime.UTC().Format("2006-01-02"), resp.Booking.Sessions[0].Date)
	assert.Equal(t, 1, resp.Booking.GroupSize)

	assert.Equal(t, models.SlotPending, slotStatus(t, db, slot.ID))
}

func TestReservationCreate_FlatTierSessionsAreSummed(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	traveler := testutil.CreateUser(t, db, models.RoleTraveler)
	guide, _ := testutil.CreateGuide(t, db, nil)

	resp, err := svc.Create(context.Background(), callerOf(traveler), &dto.CreateReservationRequest{
		GuideID: guide.ID,
		Sessions: []dto.SessionInput{
			{Date: "2030-05-01", StartTime: "09:00", DurationHours: 4},
			{Date: "2030-05-02", StartTime: "09:00", DurationHours: 4},
		},
		GroupSize: 2,
	})
	require.NoError(t, err)

	assert.False(t, resp.SlotReserved)
	assert.Equal(t, int64(240), resp.Quote.Subtotal)
	assert.Equal(t, int64(24), resp.Quote.TravelerFee)
	assert.Equal(t, int64(264), resp.Quote.Total)
	assert.Nil(t, resp.Reservation.SlotID)
}

func TestReservationCreate_Errors(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	ctx := context.Background()
	traveler := testutil.CreateUser(t, db, models.RoleTraveler)
	guide, _ := testutil.CreateGuide(t, db, testutil.Int64(30))
	other, _ := testutil.CreateGuide(t, db, testutil.Int64(30))
	future := time.Now().Add(72 * time.Hour)

	closed := testutil.CreateSlot(t, db, guide.ID, future, 4, models.SlotClosed)
	othersSlot := testutil.CreateSlot(t, db, other.ID, future, 4, models.SlotOpen)
	sixHour := testutil.CreateSlot(t, db, guide.ID, future.Add(24*time.Hour), 6, models.SlotOpen)
	missing := uuid.New()

	tests := []struct {
		name   string
		caller identity.Caller
		req    dto.CreateReservationRequest
		want   error
	}{
		{"guide not found", callerOf(traveler), dto.CreateReservationRequest{GuideID: uuid.New(), SlotID: &sixHour.ID}, ErrGuideNotFound},
		{"guides cannot reserve", callerOf(other), dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &sixHour.ID}, ErrTravelerOnly},
		{"slot missing", callerOf(traveler), dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &missing}, ErrSlotNotFound},
		{"slot closed", callerOf(traveler), dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &closed.ID}, ErrSlotUnavailable},
		{"slot of another guide", callerOf(traveler), dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &othersSlot.ID}, ErrSlotUnavailable},
		{"group too large", callerOf(traveler), dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &sixHour.ID, GroupSize: 7}, ErrGroupTooLarge},
		{"no sessions", callerOf(traveler), dto.CreateReservationRequest{GuideID: guide.ID}, pricing.ErrNoSessions},
		{
			"session mismatch", callerOf(traveler),
			dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &sixHour.ID, Sessions: []dto.SessionInput{{Date: "2030-01-01", StartTime: "10:00", DurationHours: 8}}},
			ErrSessionMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.caller, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Failed attempts must leave the open slot untouched.
	assert.Equal(t, models.SlotOpen, slotStatus(t, db, sixHour.ID))
	assert.Equal(t, models.SlotOpen, slotStatus(t, db, othersSlot.ID))

	var count int64
	require.NoError(t, db.Model(&models.Reservation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReservationCreate_PricingFailureRollsBackSlot(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	traveler := testutil.CreateUser(t, db, models.RoleTraveler)
	guide, profile := testutil.CreateGuide(t, db, nil)
	require.NoError(t, db.Model(profile).Update("price_h8", 0).Error)
	slot := testutil.CreateSlot(t, db, guide.ID, time.Now().Add(48*time.Hour), 8, models.SlotOpen)

	_, err := svc.Create(context.Background(), callerOf(traveler), &dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &slot.ID})
	require.ErrorIs(t, err, pricing.ErrNoPrice)

	assert.Equal(t, models.SlotOpen, slotStatus(t, db, slot.ID))
}

func TestReservationCreate_UsesPolicyFromSettings(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	ctx := context.Background()
	_, err := svc.settings.Set(ctx, models.SettingTravelerFeePercent, "20", "int", nil)
	require.NoError(t, err)

	traveler := testutil.CreateUser(t, db, models.RoleTraveler)
	guide, _ := testutil.CreateGuide(t, db, testutil.Int64(25))

	resp, err := svc.Create(ctx, callerOf(traveler), &dto.CreateReservationRequest{
		GuideID:  guide.ID,
		Sessions: []dto.SessionInput{{Date: "2030-01-01", StartTime: "09:00", DurationHours: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.Quote.Subtotal)
	assert.Equal(t, int64(20), resp.Quote.TravelerFee)
	assert.Equal(t, int64(120), resp.Quote.Total)
}

func TestReservationCreate_ConcurrentRequestsBookSlotOnce(t *testing.T) {
	const attempts = 8
	db := testutil.NewFileDB(t, attempts)
	svc := newReservationService(db)
	guide, _ := testutil.CreateGuide(t, db, testutil.Int64(30))
	slot := testutil.CreateSlot(t, db, guide.ID, time.Now().Add(48*time.Hour), 4, models.SlotOpen)

	travelers := make([]*models.User, attempts)
	for i := range travelers {
		travelers[i] = testutil.CreateUser(t, db, models.RoleTraveler)
	}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		unavailable int
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			<-start
			_, err := svc.Create(context.Background(), callerOf(u), &dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &slot.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotUnavailable):
				unavailable++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(travelers[i])
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, unavailable)

	var count int64
	require.NoError(t, db.Model(&models.Reservation{}).Where("slot_id = ?", slot.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReserveSlot_LoserOfInterleavedTransactionsIsRefused(t *testing.T) {
	db := testutil.NewFileDB(t, 2)
	guide, _ := testutil.CreateGuide(t, db, testutil.Int64(30))
	slot := testutil.CreateSlot(t, db, guide.ID, time.Now().Add(48*time.Hour), 4, models.SlotOpen)

	// Both sides see the slot open before either writes.
	var seen models.AvailabilitySlot
	require.NoError(t, db.First(&seen, "id = ?", slot.ID).Error)
	require.Equal(t, models.SlotOpen, seen.Status)

	winner := db.Begin()
	require.NoError(t, winner.Error)
	_, err := reserveSlot(winner, slot.ID, guide.ID)
	require.NoError(t, err)

	loserErr := make(chan error, 1)
	go func() {
		loserErr <- db.Transaction(func(tx *gorm.DB) error {
			_, err := reserveSlot(tx, slot.ID, guide.ID)
			return err
		})
	}()

	// The loser waits on the winner's write lock until it commits.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, winner.Commit().Error)

	select {
	case err := <-loserErr:
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	case <-time.After(5 * time.Second):
		t.Fatal("losing transaction never finished")
	}
	assert.Equal(t, models.SlotPending, slotStatus(t, db, slot.ID))
}

func reservedFixture(t *testing.T, db *gorm.DB, svc *ReservationService) (*models.User, *models.User, *models.AvailabilitySlot, *models.Reservation) {
	t.Helper()
	traveler := testutil.CreateUser(t, db, models.RoleTraveler)
	guide, _ := testutil.CreateGuide(t, db, testutil.Int64(30))
	slot := testutil.CreateSlot(t, db, guide.ID, time.Now().Add(48*time.Hour), 4, models.SlotOpen)
	resp, err := svc.Create(context.Background(), callerOf(traveler), &dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &slot.ID})
	require.NoError(t, err)
	return traveler, guide, slot, resp.Reservation
}

func TestReservationTransition_AcceptBooksSlotAndOpensConversation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	_, guide, slot, r := reservedFixture(t, db, svc)

	updated, err := svc.Transition(context.Background(), callerOf(guide), r.ID, models.ReservationAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationAccepted, updated.Status)
	assert.NotNil(t, updated.Booking)
	assert.Equal(t, models.SlotBooked, slotStatus(t, db, slot.ID))

	var conv models.Conversation
	require.NoError(t, db.First(&conv, "reservation_id = ?", r.ID).Error)
	assert.Equal(t, guide.ID, conv.GuideID)
	assert.Equal(t, r.TravelerID, conv.TravelerID)
}

func TestReservationTransition_GuideCannotReopenBookedSlot(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	ctx := context.Background()
	_, guide, slot, r := reservedFixture(t, db, svc)

	_, err := svc.Transition(ctx, callerOf(guide), r.ID, models.ReservationAccepted)
	require.NoError(t, err)

	availability := NewAvailabilityService(db)
	open := models.SlotOpen
	_, err = availability.Update(ctx, guide.ID, slot.ID, &dto.UpdateSlotRequest{Status: &open})
	require.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, models.SlotBooked, slotStatus(t, db, slot.ID))

	second := testutil.CreateUser(t, db, models.RoleTraveler)
	_, err = svc.Create(ctx, callerOf(second), &dto.CreateReservationRequest{GuideID: guide.ID, SlotID: &slot.ID})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestReservationTransition_AcceptRefusesSlotBookedElsewhere(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	_, guide, slot, r := reservedFixture(t, db, svc)
	require.NoError(t, db.Model(&models.AvailabilitySlot{}).Where("id = ?", slot.ID).Update("status", models.SlotBooked).Error)

	_, err := svc.Transition(context.Background(), callerOf(guide), r.ID, models.ReservationAccepted)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	var stored models.Reservation
	require.NoError(t, db.First(&stored, "id = ?", r.ID).Error)
	assert.Equal(t, models.ReservationPending, stored.Status)
}

func TestReservationTransition_CancelReopensSlot(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	ctx := context.Background()
	traveler, guide, slot, r := reservedFixture(t, db, svc)

	_, err := svc.Transition(ctx, callerOf(guide), r.ID, models.ReservationAccepted)
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, callerOf(traveler), r.ID, models.ReservationCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, updated.Status)
	require.NotNil(t, updated.CancelledBy)
	assert.Equal(t, traveler.ID, *updated.CancelledBy)
	assert.Equal(t, models.SlotOpen, slotStatus(t, db, slot.ID))
}

func TestReservationTransition_Authorization(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	ctx := context.Background()
	traveler, guide, _, r := reservedFixture(t, db, svc)
	stranger := testutil.CreateUser(t, db, models.RoleTraveler)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)

	_, err := svc.Transition(ctx, callerOf(traveler), r.ID, models.ReservationAccepted)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Transition(ctx, callerOf(stranger), r.ID, models.ReservationCancelled)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = svc.Transition(ctx, callerOf(guide), r.ID, models.ReservationCompleted)
	assert.ErrorIs(t, err, slots.ErrInvalidTransition)

	_, err = svc.Transition(ctx, callerOf(guide), r.ID, models.ReservationAccepted)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, callerOf(guide), r.ID, models.ReservationCompleted)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, callerOf(guide), r.ID, models.ReservationRefunded)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Transition(ctx, callerOf(admin), r.ID, models.ReservationRefunded)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationRefunded, updated.Status)

	_, err = svc.Transition(ctx, callerOf(admin), r.ID, models.ReservationAccepted)
	assert.ErrorIs(t, err, slots.ErrInvalidTransition)
}

func TestReservationGetAndList(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	ctx := context.Background()
	traveler, guide, _, r := reservedFixture(t, db, svc)
	stranger := testutil.CreateUser(t, db, models.RoleTraveler)
	support := testutil.CreateUser(t, db, models.RoleSupport)

	got, err := svc.Get(ctx, callerOf(traveler), r.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Booking)

	_, err = svc.Get(ctx, callerOf(support), r.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, callerOf(stranger), r.ID)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	rows, total, err := svc.ListMine(ctx, callerOf(guide), "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, rows, 1)

	rows, total, err = svc.ListMine(ctx, callerOf(stranger), "", 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)

	rows, total, err = svc.ListAll(ctx, string(models.ReservationPending), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, r.ID, rows[0].ID)
}

func TestReservationQuote(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newReservationService(db)
	guide, _ := testutil.CreateGuide(t, db, testutil.Int64(30))

	q, err := svc.Quote(context.Background(), guide.ID, []int{8})
	require.NoError(t, err)
	assert.Equal(t, int64(216), q.Subtotal)

	_, err = svc.Quote(context.Background(), uuid.New(), []int{4})
	assert.ErrorIs(t, err, ErrGuideNotFound)
}

func TestRateCardFor_UsesFlatTierPrices(t *testing.T) {
	guide := &models.GuideProfile{PriceH4: 120, PriceH6: 170, PriceH8: 220}
	card := rateCardFor(guide)
	assert.Nil(t, card.BaseRateHour)
	assert.Equal(t, map[int]int64{4: 120, 6: 170, 8: 220}, card.Flat)

	db := testutil.NewDB(t)
	svc := newReservationService(db)
	flatGuide, _ := testutil.CreateGuide(t, db, nil)
	q, err := svc.Quote(context.Background(), flatGuide.ID, []int{6, 8})
	require.NoError(t, err)
	assert.Equal(t, int64(390), q.Subtotal)
}
