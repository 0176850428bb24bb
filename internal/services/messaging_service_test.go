package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/testutil"
)

func TestMessaging(t *testing.T) {
	db := testutil.NewDB(t)
	moderation := NewModerationService(db)
	svc := NewMessagingService(db, NewContentFilter(), moderation)
	ctx := context.Background()

	traveler := testutil.CreateUser(t, db, models.RoleTraveler)
	guide, _ := testutil.CreateGuide(t, db, nil)
	stranger := testutil.CreateUser(t, db, models.RoleTraveler)
	conv := models.Conversation{ReservationID: uuid.New(), TravelerID: traveler.ID, GuideID: guide.ID}
	require.NoError(t, db.Create(&conv).Error)

	msg, err := svc.Send(ctx, traveler.ID, conv.ID, "Can we start at the cathedral?")
	require.NoError(t, err)
	assert.Equal(t, traveler.ID, msg.SenderID)

	_, err = svc.Send(ctx, guide.ID, conv.ID, "Sure, text me on 555-123-4567")
	var rejected *ContentRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "contact_info_not_allowed", rejected.Reason)

	_, err = svc.Send(ctx, stranger.ID, conv.ID, "hello")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	convs, err := svc.ListConversations(ctx, guide.ID)
	require.NoError(t, err)
	assert.Len(t, convs, 1)

	msgs, err := svc.ListMessages(ctx, guide.ID, conv.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Can we start at the cathedral?", msgs[0].Body)

	require.NoError(t, moderation.BlockUser(ctx, guide.ID, traveler.ID))
	_, err = svc.Send(ctx, traveler.ID, conv.ID, "Are you there?")
	assert.ErrorIs(t, err, ErrBlocked)
}
