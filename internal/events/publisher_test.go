package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"returns-service/internal/models"
)

func TestBaseEvent(t *testing.T) {
	request := &models.ReturnRequest{
		ID:             uuid.New(),
		StoreID:        uuid.New(),
		OrderNumber:    "1234",
		CustomerEmail:  "maria@example.com",
		ResolutionType: models.ResolutionStoreCredit,
		Status:         models.ReturnStatusPending,
	}

	event := baseEvent(ReturnCreated, request)

	assert.Equal(t, ReturnCreated, event.GetSubject())
	assert.Equal(t, StreamName, event.GetStream())
	assert.Equal(t, request.StoreID.String(), event.TenantID)
	assert.Equal(t, request.ID.String(), event.ReturnRequestID)
	assert.Equal(t, "store_credit", event.Resolution)
	assert.Equal(t, "pending", event.Status)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEventSubjectsShareStream(t *testing.T) {
	for _, subject := range []string{ReturnCreated, ReturnStatusChanged, ReturnShipmentBooked, ReturnLabelPurchased} {
		assert.Regexp(t, `^returns\.[a-z_]+$`, subject)
	}
}

func TestNoopPublisher(t *testing.T) {
	var publisher Publisher = NoopPublisher{}
	request := &models.ReturnRequest{ID: uuid.New()}
	ctx := context.Background()

	assert.NoError(t, publisher.PublishReturnCreated(ctx, request))
	assert.NoError(t, publisher.PublishStatusChanged(ctx, request, models.ReturnStatusPending, models.ReturnStatusApproved, "owner-1"))
	assert.NoError(t, publisher.PublishShipmentBooked(ctx, request, "ship-1"))
	assert.NoError(t, publisher.PublishLabelPurchased(ctx, request, &models.LabelPurchase{}))
}
