package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
)

const (
	transfersCollection = "transfers"
	accountsCollection  = "accounts"
	countersCollection  = "counters"
)

// MongoStore owns the client shared by the Mongo-backed repositories.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(dbName)
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "origin_account", Value: 1}}},
		{Keys: bson.D{{Key: "destination_account", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := database.Collection(transfersCollection).Indexes().CreateMany(ctx, indexModels); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &MongoStore{client: client, database: database}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type transferDocument struct {
	ID                 int64     `bson:"_id"`
	OriginAccount      string    `bson:"origin_account"`
	DestinationAccount string    `bson:"destination_account"`
	Amount             string    `bson:"amount"`
	Fee                string    `bson:"fee"`
	TransferDate       time.Time `bson:"transfer_date"`
	ScheduledDate      time.Time `bson:"scheduled_date"`
	Status             string    `bson:"status"`
}

func toTransferDocument(t *models.Transfer) transferDocument {
	return transferDocument{
		ID:                 t.ID,
		OriginAccount:      t.OriginAccount,
		DestinationAccount: t.DestinationAccount,
		Amount:             t.Amount.String(),
		Fee:                t.Fee.String(),
		TransferDate:       t.TransferDate.Time,
		ScheduledDate:      t.ScheduledDate,
		Status:             string(t.Status),
	}
}

func (d transferDocument) toModel() (*models.Transfer, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	fee, err := decimal.NewFromString(d.Fee)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fee: %w", err)
	}
	return &models.Transfer{
		ID:                 d.ID,
		OriginAccount:      d.OriginAccount,
		DestinationAccount: d.DestinationAccount,
		Amount:             amount,
		Fee:                fee,
		TransferDate:       models.NewDate(d.TransferDate),
		ScheduledDate:      d.ScheduledDate,
		Status:             models.TransferStatus(d.Status),
	}, nil
}

// MongoTransferRepository assigns ids from a counters document so they stay
// numeric and monotonic like the Postgres sequence.
type MongoTransferRepository struct {
	transfers *mongo.Collection
	counters  *mongo.Collection
}

func NewMongoTransferRepository(store *MongoStore) *MongoTransferRepository {
	return &MongoTransferRepository{
		transfers: store.database.Collection(transfersCollection),
		counters:  store.database.Collection(countersCollection),
	}
}

func (r *MongoTransferRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": transfersCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate transfer id: %w", err)
	}
	return counter.Seq, nil
}

func (r *MongoTransferRepository) Save(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	saved := transfer.Clone()
	if saved.ID == 0 {
		id, err := r.nextID(ctx)
		if err != nil {
			return nil, err
		}
		saved.ID = id
		if _, err := r.transfers.InsertOne(ctx, toTransferDocument(saved)); err != nil {
			return nil, fmt.Errorf("failed to insert transfer: %w", err)
		}
		return saved, nil
	}

	result, err := r.transfers.ReplaceOne(ctx, bson.M{"_id": saved.ID}, toTransferDocument(saved))
	if err != nil {
		return nil, fmt.Errorf("failed to update transfer: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, errors.NewNotFoundError("transfer", saved.ID)
	}
	return saved, nil
}

func (r *MongoTransferRepository) GetByID(ctx context.Context, id int64) (*models.Transfer, error) {
	var doc transferDocument
	err := r.transfers.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NewNotFoundError("transfer", id)
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return doc.toModel()
}

func (r *MongoTransferRepository) List(ctx context.Context) ([]*models.Transfer, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoTransferRepository) ListByAccount(ctx context.Context, accountNumber string) ([]*models.Transfer, error) {
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"origin_account": accountNumber},
		bson.M{"destination_account": accountNumber},
	}})
}

func (r *MongoTransferRepository) ListByStatus(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error) {
	return r.find(ctx, bson.M{"status": string(status)})
}

func (r *MongoTransferRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.transfers.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return count, nil
}

func (r *MongoTransferRepository) find(ctx context.Context, filter bson.M) ([]*models.Transfer, error) {
	cursor, err := r.transfers.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find transfers: %w", err)
	}

	var docs []transferDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transfers: %w", err)
	}

	transfers := make([]*models.Transfer, 0, len(docs))
	for _, doc := range docs {
		transfer, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, nil
}

type accountDocument struct {
	AccountNumber string `bson:"_id"`
	AccountName   string `bson:"account_name"`
	Balance       string `bson:"balance"`
}

func (d accountDocument) toModel() (*models.Account, error) {
	balance, err := decimal.NewFromString(d.Balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	return &models.Account{
		AccountNumber: d.AccountNumber,
		AccountName:   d.AccountName,
		Balance:       balance,
	}, nil
}

type MongoAccountRepository struct {
	accounts *mongo.Collection
}

func NewMongoAccountRepository(store *MongoStore) *MongoAccountRepository {
	return &MongoAccountRepository{accounts: store.database.Collection(accountsCollection)}
}

func (r *MongoAccountRepository) Save(ctx context.Context, account *models.Account) error {
	doc := accountDocument{
		AccountNumber: account.AccountNumber,
		AccountName:   account.AccountName,
		Balance:       account.Balance.String(),
	}
	_, err := r.accounts.ReplaceOne(ctx, bson.M{"_id": doc.AccountNumber}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	var doc accountDocument
	err := r.accounts.FindOne(ctx, bson.M{"_id": accountNumber}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NewNotFoundError("account", accountNumber)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return doc.toModel()
}

func (r *MongoAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	cursor, err := r.accounts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	accounts := make([]*models.Account, 0, len(docs))
	for _, doc := range docs {
		account, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
