package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/codecrest/codecrest_backend/internal/service/contact"
)

// ContactStore keeps contact messages in a single MongoDB collection.
// Documents are schema-relaxed: known fields sit at the top level next to
// whatever extra keys the submission carried.
type ContactStore struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewContactStore(coll *mongo.Collection, opTimeout time.Duration) *ContactStore {
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	return &ContactStore{coll: coll, timeout: opTimeout}
}

var _ contact.Store = (*ContactStore)(nil)

func (s *ContactStore) Insert(ctx context.Context, m *contact.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	oid := bson.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, toDocument(oid, m)); err != nil {
		return err
	}
	m.ID = oid.Hex()
	return nil
}

func (s *ContactStore) List(ctx context.Context) ([]*contact.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: contact.FieldCreatedAt, Value: -1},
		{Key: contact.FieldID, Value: -1},
	})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*contact.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

func (s *ContactStore) Get(ctx context.Context, id string) (*contact.Message, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, contact.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var d bson.D
	err = s.coll.FindOne(ctx, bson.D{{Key: contact.FieldID, Value: oid}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contact.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromDocument(d), nil
}

func (s *ContactStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return contact.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: contact.FieldID, Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func (s *ContactStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the index backing the newest-first listing.
func (s *ContactStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: contact.FieldCreatedAt, Value: -1},
			{Key: contact.FieldID, Value: -1},
		},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("create createdAt index: %w", err)
	}
	return nil
}

func toDocument(oid bson.ObjectID, m *contact.Message) bson.D {
	d := bson.D{{Key: contact.FieldID, Value: oid}}
	appendString := func(key, v string) {
		if v != "" {
			d = append(d, bson.E{Key: key, Value: v})
		}
	}
	appendString(contact.FieldFullName, m.FullName)
	appendString(contact.FieldEmail, m.Email)
	appendString(contact.FieldMobile, m.Mobile)
	appendString(contact.FieldProjectTitle, m.ProjectTitle)
	appendString(contact.FieldDescription, m.Description)
	d = append(d, bson.E{Key: contact.FieldCreatedAt, Value: bson.NewDateTimeFromTime(m.CreatedAt)})

	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		if contact.IsKnown(k) || contact.IsReserved(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: m.Extra[k]})
	}
	return d
}

func fromDocument(d bson.D) *contact.Message {
	m := &contact.Message{}
	for _, e := range d {
		switch e.Key {
		case contact.FieldID:
			switch id := e.Value.(type) {
			case bson.ObjectID:
				m.ID = id.Hex()
			default:
				m.ID = fmt.Sprint(id)
			}
		case contact.FieldCreatedAt:
			switch t := e.Value.(type) {
			case bson.DateTime:
				m.CreatedAt = t.Time().UTC()
			case time.Time:
				m.CreatedAt = t.UTC()
			}
		case contact.FieldFullName:
			m.FullName, _ = e.Value.(string)
		case contact.FieldEmail:
			m.Email, _ = e.Value.(string)
		case contact.FieldMobile:
			m.Mobile, _ = e.Value.(string)
		case contact.FieldProjectTitle:
			m.ProjectTitle, _ = e.Value.(string)
		case contact.FieldDescription:
			m.Description, _ = e.Value.(string)
		default:
			if contact.IsReserved(e.Key) {
				continue
			}
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[e.Key] = normalize(e.Value)
		}
	}
	return m
}

// normalize turns driver value types into plain Go values that encode to
// JSON the way the client sent them.
func normalize(v any) any {
	switch x := v.(type) {
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case bson.A:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case bson.DateTime:
		return x.Time().UTC().Format(time.RFC3339Nano)
	case bson.ObjectID:
		return x.Hex()
	case int32:
		return int64(x)
	default:
		return v
	}
}
