package commands_test

import (
	"context"
	"testing"

	"parceltrack/internal/core/application/usecases/commands"
	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDeliveryCommandHandler_Handle(t *testing.T) {
	t.Run("should create a pending delivery", func(t *testing.T) {
		recordStore, _ := newTestStore()
		handler := commands.NewCreateDeliveryCommandHandler(recordStore)
		deliveryID := kernel.NewUUID()
		senderID := kernel.NewUUID()
		cmd, err := commands.NewCreateDeliveryCommand(
			deliveryID, senderID, "1 Origin St", "2 Target Ave", 2500,
			delivery.SizeSmall, nil, "")
		require.NoError(t, err)

		err = handler.Handle(context.Background(), cmd)

		require.NoError(t, err)
		created, err := recordStore.Get(context.Background(), deliveryID)
		require.NoError(t, err)
		assert.Equal(t, delivery.StatusPending, created.Status())
		assert.Equal(t, senderID, created.SenderID())
		assert.Nil(t, created.PickerID())
	})

	t.Run("should reject a zero value command", func(t *testing.T) {
		recordStore, _ := newTestStore()
		handler := commands.NewCreateDeliveryCommandHandler(recordStore)

		err := handler.Handle(context.Background(), commands.CreateDeliveryCommand{})

		require.Error(t, err)
		assert.ErrorIs(t, err, commands.ErrCreateDeliveryCommandIsNotConstructed)
	})
}
