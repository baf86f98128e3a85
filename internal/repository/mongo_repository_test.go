package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
)

func newMockMongoStore(mt *mtest.T) *MongoStore {
	return &MongoStore{client: mt.Client, database: mt.DB}
}

func transfersNamespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + transfersCollection
}

func transferDoc(id int64, origin, destination, amount, fee, status string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "origin_account", Value: origin},
		{Key: "destination_account", Value: destination},
		{Key: "amount", Value: amount},
		{Key: "fee", Value: fee},
		{Key: "transfer_date", Value: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{Key: "scheduled_date", Value: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)},
		{Key: "status", Value: status},
	}
}

func TestTransferDocumentRoundTrip(t *testing.T) {
	transfer := sampleTransfer("1234567890", "0987654321", models.TransferStatusCompleted)
	transfer.ID = 5
	transfer.Amount = decimal.RequireFromString("999.99999")
	transfer.Fee = decimal.RequireFromString("9.9999999")

	doc := toTransferDocument(transfer)
	assert.Equal(t, "999.99999", doc.Amount)
	assert.Equal(t, "9.9999999", doc.Fee)
	assert.Equal(t, "COMPLETED", doc.Status)

	back, err := doc.toModel()
	require.NoError(t, err)
	assert.Equal(t, transfer.ID, back.ID)
	assert.True(t, transfer.Amount.Equal(back.Amount))
	assert.True(t, transfer.Fee.Equal(back.Fee))
	assert.Equal(t, transfer.TransferDate.String(), back.TransferDate.String())
	assert.Equal(t, transfer.ScheduledDate, back.ScheduledDate)
	assert.Equal(t, transfer.Status, back.Status)

	doc.Fee = "six"
	_, err = doc.toModel()
	assert.ErrorContains(t, err, "failed to parse fee")
}

func TestMongoTransferRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save allocates id from counter", func(mt *mtest.T) {
		repo := NewMongoTransferRepository(newMockMongoStore(mt))
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: transfersCollection},
				{Key: "seq", Value: int64(7)},
			}}),
			mtest.CreateSuccessResponse(),
		)

		transfer := sampleTransfer("1234567890", "0987654321", models.TransferStatusPending)
		saved, err := repo.Save(context.Background(), transfer)
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), saved.ID)
		assert.Equal(mt, int64(0), transfer.ID)
	})

	mt.Run("save update of missing transfer is not found", func(mt *mtest.T) {
		repo := NewMongoTransferRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(0)},
			bson.E{Key: "nModified", Value: int32(0)},
		))

		transfer := sampleTransfer("1234567890", "0987654321", models.TransferStatusCancelled)
		transfer.ID = 42
		_, err := repo.Save(context.Background(), transfer)
		require.Error(mt, err)
		assert.True(mt, errors.IsNotFound(err))
		assert.Contains(mt, err.Error(), "42")
	})

	mt.Run("save update of existing transfer", func(mt *mtest.T) {
		repo := NewMongoTransferRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))

		transfer := sampleTransfer("1234567890", "0987654321", models.TransferStatusCompleted)
		transfer.ID = 3
		saved, err := repo.Save(context.Background(), transfer)
		require.NoError(mt, err)
		assert.Equal(mt, models.TransferStatusCompleted, saved.Status)
	})

	mt.Run("get by id decodes decimals", func(mt *mtest.T) {
		repo := NewMongoTransferRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, transfersNamespace(mt), mtest.FirstBatch,
			transferDoc(3, "1234567890", "0987654321", "100.50", "6.005", "PENDING")))

		transfer, err := repo.GetByID(context.Background(), 3)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), transfer.ID)
		assert.Equal(mt, "100.5", transfer.Amount.String())
		assert.Equal(mt, "6.005", transfer.Fee.String())
		assert.Equal(mt, "2025-03-15", transfer.TransferDate.String())
		assert.Equal(mt, models.TransferStatusPending, transfer.Status)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewMongoTransferRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, transfersNamespace(mt), mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), 8)
		require.Error(mt, err)
		assert.True(mt, errors.IsNotFound(err))
	})

	mt.Run("list by account matches origin or destination", func(mt *mtest.T) {
		repo := NewMongoTransferRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, transfersNamespace(mt), mtest.FirstBatch,
			transferDoc(1, "1234567890", "0987654321", "50", "2", "PENDING"),
			transferDoc(2, "1111111111", "1234567890", "75", "5.75", "COMPLETED"),
		))
		mt.ClearEvents()

		transfers, err := repo.ListByAccount(context.Background(), "1234567890")
		require.NoError(mt, err)
		require.Len(mt, transfers, 2)
		assert.Equal(mt, int64(1), transfers[0].ID)
		assert.Equal(mt, int64(2), transfers[1].ID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		assert.Equal(mt, "1234567890", started.Command.Lookup("filter", "$or", "0", "origin_account").StringValue())
		assert.Equal(mt, "1234567890", started.Command.Lookup("filter", "$or", "1", "destination_account").StringValue())
	})

	mt.Run("list rejects corrupt amount", func(mt *mtest.T) {
		repo := NewMongoTransferRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, transfersNamespace(mt), mtest.FirstBatch,
			transferDoc(1, "1234567890", "0987654321", "lots", "2", "PENDING")))

		_, err := repo.ListByStatus(context.Background(), models.TransferStatusPending)
		assert.ErrorContains(mt, err, "failed to parse amount")
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		repo := NewMongoTransferRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, transfersNamespace(mt), mtest.FirstBatch))

		transfers, err := repo.List(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, transfers)
		assert.Empty(mt, transfers)
	})
}

func TestMongoAccountRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save upserts", func(mt *mtest.T) {
		repo := NewMongoAccountRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))
		mt.ClearEvents()

		require.NoError(mt, repo.Save(context.Background(), sampleAccount()))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
		assert.True(mt, started.Command.Lookup("updates", "0", "upsert").Boolean())
	})

	mt.Run("get by number", func(mt *mtest.T) {
		repo := NewMongoAccountRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+accountsCollection, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "1234567890"},
			{Key: "account_name", Value: "Alice"},
			{Key: "balance", Value: "1500.25"},
		}))

		account, err := repo.GetByNumber(context.Background(), "1234567890")
		require.NoError(mt, err)
		assert.Equal(mt, "Alice", account.AccountName)
		assert.Equal(mt, "1500.25", account.Balance.String())
	})

	mt.Run("get by number not found", func(mt *mtest.T) {
		repo := NewMongoAccountRepository(newMockMongoStore(mt))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+accountsCollection, mtest.FirstBatch))

		_, err := repo.GetByNumber(context.Background(), "0000000000")
		assert.True(mt, errors.IsNotFound(err))
	})
}
