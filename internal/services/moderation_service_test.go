package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/testutil"
)

func TestContentFilter(t *testing.T) {
	f := NewContentFilter()

	tests := []struct {
		text   string
		ok     bool
		reason string
	}{
		{"See you at the fountain at 9!", true, ""},
		{"", true, ""},
		{"This tour is a scam", false, "inappropriate_language"},
		{"Book me at https://example.com instead", false, "url_not_allowed"},
		{"mail me: ana@example.com", false, "contact_info_not_allowed"},
		{"call 555-123-4567 tomorrow", false, "contact_info_not_allowed"},
		{"sooooo excited!!!!", false, "spam_detected"},
		{"WOWWW GREAT TOURRR AMAZING", false, "excessive_caps"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ok, reason := f.Check(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}

	assert.Contains(t, f.RejectionMessage("url_not_allowed"), "URLs")
	assert.Contains(t, f.RejectionMessage("unknown"), "guidelines")
}

func TestReports(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()
	reporter := testutil.CreateUser(t, db, models.RoleTraveler)
	_, profile := testutil.CreateGuide(t, db, nil)

	report, err := svc.CreateReport(ctx, reporter.ID, &dto.CreateReportRequest{Type: "profile", TargetID: profile.UID, Reason: "fake photos"})
	require.NoError(t, err)
	assert.Equal(t, "pending", report.Status)

	_, err = svc.CreateReport(ctx, reporter.ID, &dto.CreateReportRequest{Type: "review", TargetID: uuid.New(), Reason: "spam"})
	assert.ErrorIs(t, err, ErrReportTarget)

	rows, total, err := svc.ListReports(ctx, "pending", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, rows, 1)

	require.NoError(t, svc.ActionReport(ctx, report.ID, &dto.ActionReportRequest{Status: "dismissed", AdminNote: "ok"}))
	_, total, err = svc.ListReports(ctx, "pending", 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.ErrorIs(t, svc.ActionReport(ctx, uuid.New(), &dto.ActionReportRequest{Status: "reviewed"}), ErrReportNotFound)
}

func TestBlocks(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewModerationService(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, models.RoleGuide)
	b := testutil.CreateUser(t, db, models.RoleTraveler)

	assert.ErrorIs(t, svc.BlockUser(ctx, a.ID, a.ID), ErrSelfBlock)
	require.NoError(t, svc.BlockUser(ctx, a.ID, b.ID))
	assert.ErrorIs(t, svc.BlockUser(ctx, a.ID, b.ID), ErrAlreadyBlocked)

	ids, err := svc.GetBlockedIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, ids)

	require.NoError(t, svc.UnblockUser(ctx, a.ID, b.ID))
	blocked, err := svc.IsBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}
