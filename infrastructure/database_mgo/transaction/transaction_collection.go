package transaction

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/errors"
	"access-system/utils/configs"
	"access-system/utils/helpers"
	"access-system/utils/mongoindex"
)

const LenID = 8

type TransactionCollection struct {
	conf                 *configs.Config
	collection           *mongo.Collection
	collection_increment *mongo.Collection
}

func metaKey(key string) string {
	return "metadata." + key
}

func (o *TransactionCollection) Create(ctx context.Context, entity *entities.Transaction) (res *entities.Transaction, err error) {
	if entity.ID == "" {
		entity.ID, err = o.incrementID(ctx, o.conf.Prefix+"ACC")
		if err != nil {
			return
		}
	}

	_, err = o.collection.InsertOne(ctx, entity)
	if err == nil {
		res = entity
	}
	return
}

func (o *TransactionCollection) FindByID(ctx context.Context, id string) (res *entities.Transaction, err error) {
	return o.findOne(ctx, bson.M{"_id": id})
}

func (o *TransactionCollection) FindByGatewayPaymentID(ctx context.Context, gateway, paymentID string) (*entities.Transaction, error) {
	return o.findOne(ctx, bson.M{"gateway": gateway, "gateway_payment_id": paymentID})
}

func (o *TransactionCollection) findOne(ctx context.Context, filter bson.M) (res *entities.Transaction, err error) {
	err = o.collection.FindOne(ctx, filter).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrTransactionNotFound
	}
	return
}

func (o *TransactionCollection) FindPending(ctx context.Context, limit int64) ([]*entities.Transaction, error) {
	return o.find(ctx, bson.M{
		"status":             entities.StatusPending,
		"gateway_payment_id": bson.M{"$nin": []interface{}{nil, ""}},
	}, limit)
}

func (o *TransactionCollection) FindPendingPixBefore(ctx context.Context, before time.Time, limit int64) ([]*entities.Transaction, error) {
	return o.find(ctx, bson.M{
		"status":         entities.StatusPending,
		"payment_method": entities.PaymentMethodPix,
		"created_at":     bson.M{"$lte": before},
	}, limit)
}

func (o *TransactionCollection) FindAccessExpiredBefore(ctx context.Context, now time.Time, limit int64) ([]*entities.Transaction, error) {
	return o.find(ctx, bson.M{
		"status": entities.StatusCompleted,
		metaKey(constants.MetaAccessExpiresAt): bson.M{"$ne": nil, "$lte": now},
	}, limit)
}

func (o *TransactionCollection) FindAccessExpiringBetween(ctx context.Context, from, to time.Time, limit int64) ([]*entities.Transaction, error) {
	return o.find(ctx, bson.M{
		"status": entities.StatusCompleted,
		metaKey(constants.MetaAccessExpiresAt): bson.M{"$gt": from, "$lte": to},
	}, limit)
}

// FindExpiredWithOpenFollowUp returns expired transactions that once granted
// access and still miss either the group removal or the expiry notice.
func (o *TransactionCollection) FindExpiredWithOpenFollowUp(ctx context.Context, limit int64) ([]*entities.Transaction, error) {
	return o.find(ctx, bson.M{
		"status": entities.StatusExpired,
		metaKey(constants.MetaApprovedAt): bson.M{"$ne": nil},
		"$or": []interface{}{
			bson.M{
				metaKey(constants.MetaGroupRemovedAt):      nil,
				metaKey(constants.MetaGroupRemovalSkipped): bson.M{"$in": []interface{}{nil, ""}},
			},
			bson.M{metaKey(constants.MetaAccessExpiredNotifiedAt): nil},
		},
	}, limit)
}

func (o *TransactionCollection) FindCompletedWithoutExpiry(ctx context.Context, limit int64) ([]*entities.Transaction, error) {
	return o.find(ctx, bson.M{
		"status":   entities.StatusCompleted,
		"cycle_id": bson.M{"$nin": []interface{}{nil, ""}},
		metaKey(constants.MetaAccessExpiresAt): nil,
	}, limit)
}

func (o *TransactionCollection) find(ctx context.Context, filter bson.M, limit int64) (res []*entities.Transaction, err error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := o.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var entity entities.Transaction
		if err = cur.Decode(&entity); err != nil {
			return nil, err
		}
		res = append(res, &entity)
	}
	return res, cur.Err()
}

// changeSet turns ledger changes into field-level $set values so concurrent
// writers touching other keys are not clobbered.
func changeSet(changes []entities.MetadataChange) bson.M {
	set := bson.M{}
	for _, c := range changes {
		set[metaKey(c.Key)] = c.Current
	}
	return set
}

func historyPush(changes []entities.MetadataChange) bson.M {
	return bson.M{metaKey(constants.MetaHistory): bson.M{"$each": changes}}
}

// pixGuard keeps the filter from matching once a different pix code is
// stored, so the immutability check holds across processes.
func pixGuard(filter bson.M, patch entities.MetadataPatch) {
	if patch.PixCode != nil {
		filter[metaKey(constants.MetaPixCode)] = bson.M{"$in": []interface{}{nil, "", *patch.PixCode}}
	}
}

// mirrorPaymentID keeps the indexed top-level gateway payment id in step with
// the ledger's gateway_payment_ref.
func mirrorPaymentID(set bson.M, current *entities.Transaction, patch entities.MetadataPatch) {
	if patch.GatewayPaymentRef != nil && *patch.GatewayPaymentRef != "" {
		set["gateway_payment_id"] = *patch.GatewayPaymentRef
		current.GatewayPaymentID = *patch.GatewayPaymentRef
	}
}

func (o *TransactionCollection) MergeMetadata(ctx context.Context, id string, patch entities.MetadataPatch, at time.Time) (*entities.Transaction, []entities.MetadataChange, error) {
	current, err := o.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	changes, err := current.Metadata.Merge(patch, at)
	if err != nil {
		return nil, nil, err
	}
	if len(changes) == 0 {
		return current, nil, nil
	}

	set := changeSet(changes)
	set["updated_at"] = at
	mirrorPaymentID(set, current, patch)
	filter := bson.M{"_id": id}
	pixGuard(filter, patch)

	result, err := o.collection.UpdateOne(ctx, filter, bson.M{"$set": set, "$push": historyPush(changes)})
	if err != nil {
		return nil, nil, err
	}
	if result.MatchedCount == 0 {
		return nil, nil, errors.ErrPixCodeImmutable
	}
	current.UpdatedAt = at
	return current, changes, nil
}

func (o *TransactionCollection) UpdateStatus(ctx context.Context, id string, from, to entities.EntityStatus, patch entities.MetadataPatch, at time.Time) (*entities.Transaction, error) {
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, from, to)
	}

	current, err := o.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != from {
		return nil, errors.ErrStatusConflict
	}

	changes, err := current.Metadata.Merge(patch, at)
	if err != nil {
		return nil, err
	}
	statusChange := entities.MetadataChange{Key: constants.MetaStatus, Previous: from, Current: to, At: at}
	current.Metadata.History = append(current.Metadata.History, statusChange)

	set := changeSet(changes)
	set["status"] = to
	set["updated_at"] = at
	mirrorPaymentID(set, current, patch)
	filter := bson.M{"_id": id, "status": from}
	pixGuard(filter, patch)

	result, err := o.collection.UpdateOne(ctx, filter, bson.M{
		"$set":  set,
		"$push": historyPush(append(changes, statusChange)),
	})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, errors.ErrStatusConflict
	}

	current.Status = to
	current.UpdatedAt = at
	return current, nil
}

func (o *TransactionCollection) ClaimNotification(ctx context.Context, id, key string, at time.Time, minAge time.Duration) (bool, *time.Time, error) {
	if !entities.IsNotificationKey(key) {
		return false, nil, fmt.Errorf("not a notification key: %s", key)
	}

	field := metaKey(key)
	open := []interface{}{bson.M{field: nil}}
	if minAge > 0 {
		open = append(open, bson.M{field: bson.M{"$lte": at.Add(-minAge)}})
	}

	var before entities.Transaction
	err := o.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "$or": open},
		bson.M{"$set": bson.M{field: at, "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)

	if err == mongo.ErrNoDocuments {
		if _, err = o.FindByID(ctx, id); err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, before.Metadata.NotificationTime(key), nil
}

func (o *TransactionCollection) ReleaseNotification(ctx context.Context, id, key string, previous *time.Time) error {
	if !entities.IsNotificationKey(key) {
		return fmt.Errorf("not a notification key: %s", key)
	}

	update := bson.M{"$unset": bson.M{metaKey(key): ""}}
	if previous != nil {
		update = bson.M{"$set": bson.M{metaKey(key): *previous}}
	}
	_, err := o.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (o *TransactionCollection) IncrementNotFound(ctx context.Context, id string, at time.Time) (int, error) {
	var after entities.Transaction
	err := o.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{metaKey(constants.MetaPaymentNotFoundCount): 1},
			"$set": bson.M{metaKey(constants.MetaLastStatusCheck): at, "updated_at": at},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&after)
	if err == mongo.ErrNoDocuments {
		return 0, errors.ErrTransactionNotFound
	}
	if err != nil {
		return 0, err
	}
	return after.Metadata.PaymentNotFoundCount, nil
}

func (r TransactionCollection) incrementID(ctx context.Context, prefix string) (string, error) {
	after := options.After
	upsert := true
	date := helpers.GetCurrentTime().Format("20060102")
	idGenerate := struct {
		Date string `bson:"date"`
		Id   int64  `bson:"id"`
	}{}
	err := r.collection_increment.FindOneAndUpdate(ctx, bson.M{
		"date": date,
	}, bson.M{"$inc": bson.M{"id": 1}}, &options.FindOneAndUpdateOptions{
		ReturnDocument: &after,
		Upsert:         &upsert,
	}).Decode(&idGenerate)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s%0*d", prefix, date, LenID, idGenerate.Id), nil
}

func NewTransactionCollectionImpl(ctx context.Context, db *mongo.Client, conf *configs.Config) (*TransactionCollection, error) {
	database := db.Database(conf.MongoDatabase)
	c := database.Collection("transactions")
	ci := database.Collection("transactions_id_increment")

	// One transaction per gateway payment; unpaid rows have no id yet.
	err := mongoindex.Ensure(ctx, c,
		mongoindex.Index{
			Keys:    bson.D{{Key: "gateway", Value: 1}, {Key: "gateway_payment_id", Value: 1}},
			Unique:  true,
			Partial: bson.M{"gateway_payment_id": bson.M{"$type": "string"}},
		},
		mongoindex.Index{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		mongoindex.Index{Keys: bson.D{{Key: "status", Value: 1}, {Key: metaKey(constants.MetaAccessExpiresAt), Value: 1}}},
	)
	if err != nil {
		return nil, err
	}
	if err := mongoindex.Ensure(ctx, ci, mongoindex.Index{Keys: bson.D{{Key: "date", Value: 1}}, Unique: true}); err != nil {
		return nil, err
	}

	return &TransactionCollection{
		conf:                 conf,
		collection:           c,
		collection_increment: ci,
	}, nil
}
