package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/tourmap/pkg/logger"
	"github.com/BartekS5/tourmap/pkg/models"
	"github.com/BartekS5/tourmap/pkg/utils"
)

const (
	DefaultToursCollection    = "tours"
	DefaultMappingsCollection = "field_mappings"
	// DefaultIDField is the object-section field id used as the Mongo _id.
	DefaultIDField = "tour.code"
)

// MongoLoader upserts transformed tours. The _id comes from the IDField
// ("section.key") of the transformed document; documents without it get a
// random id.
type MongoLoader struct {
	Collection   *mongo.Collection
	IDField      string
	WholesalerID string
}

func NewMongoLoader(client *mongo.Client, database, wholesalerID string) *MongoLoader {
	return &MongoLoader{
		Collection:   client.Database(database).Collection(DefaultToursCollection),
		IDField:      DefaultIDField,
		WholesalerID: wholesalerID,
	}
}

func (m *MongoLoader) documentID(doc map[string]any) string {
	section, key := models.SplitFieldID(m.IDField)
	if obj, ok := doc[section].(map[string]any); ok {
		if id := utils.Stringify(obj[key]); id != "" {
			if m.WholesalerID != "" {
				return m.WholesalerID + ":" + id
			}
			return id
		}
	}
	return uuid.NewString()
}

func (m *MongoLoader) Load(ctx context.Context, docs []map[string]any) error {
	var writes []mongo.WriteModel
	now := time.Now().UTC()

	for _, doc := range docs {
		id := m.documentID(doc)
		set := bson.M{"updated_at": now}
		for k, v := range doc {
			set[k] = v
		}
		if m.WholesalerID != "" {
			set["wholesaler_id"] = m.WholesalerID
		}
		model := mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": set}).
			SetUpsert(true)
		writes = append(writes, model)
	}

	if len(writes) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := m.Collection.BulkWrite(ctx, writes)
	if err != nil {
		return err
	}
	logger.Infof("Mongo BulkWrite: Match %d, Mod %d, Upsert %d", res.MatchedCount, res.ModifiedCount, res.UpsertedCount)
	return nil
}

// MongoMappingStore keeps one mapping document per wholesaler, keyed by its id.
type MongoMappingStore struct {
	Collection *mongo.Collection
}

func NewMongoMappingStore(client *mongo.Client, database string) *MongoMappingStore {
	return &MongoMappingStore{Collection: client.Database(database).Collection(DefaultMappingsCollection)}
}

type mongoMappingDocument struct {
	ID                     string `bson:"_id"`
	models.MappingDocument `bson:",inline"`
}

func (s *MongoMappingStore) Load(ctx context.Context, wholesalerID string) (*models.MappingDocument, error) {
	var d mongoMappingDocument
	err := s.Collection.FindOne(ctx, bson.M{"_id": wholesalerID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("wholesaler %s: %w", wholesalerID, models.ErrMappingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping for %s: %w", wholesalerID, err)
	}
	if _, err := d.MappingDocument.MappingSet(); err != nil {
		return nil, fmt.Errorf("stored mapping for %s: %w", wholesalerID, err)
	}
	return &d.MappingDocument, nil
}

func (s *MongoMappingStore) Save(ctx context.Context, doc *models.MappingDocument) error {
	d := mongoMappingDocument{ID: doc.WholesalerID, MappingDocument: *doc}
	_, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": doc.WholesalerID}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save mapping for %s: %w", doc.WholesalerID, err)
	}
	return nil
}
