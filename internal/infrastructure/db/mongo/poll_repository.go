package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

const pollsCollection = "polls"

// PollRepository implements ports.PollRepository using MongoDB. Options are
// embedded in the poll document; the set never changes after insert.
type PollRepository struct {
	coll *mongo.Collection
}

func NewPollRepository(db *mongo.Database) *PollRepository {
	return &PollRepository{coll: db.Collection(pollsCollection)}
}

type mongoPollOption struct {
	ID    string `bson:"id"`
	Title string `bson:"title"`
}

type mongoPoll struct {
	ID                string            `bson:"_id"`
	CreatorID         string            `bson:"creator_id"`
	Title             string            `bson:"title"`
	Description       string            `bson:"description,omitempty"`
	Category          string            `bson:"category,omitempty"`
	Options           []mongoPollOption `bson:"options"`
	ResultsVisibility string            `bson:"results_visibility"`
	ChangeVote        bool              `bson:"change_vote"`
	VoteIntervalMs    int64             `bson:"vote_interval_ms"`
	ExpireAt          *time.Time        `bson:"expire_at,omitempty"`
	CreatedAt         time.Time         `bson:"created_at"`
}

func toMongoPoll(p *domain.Poll) mongoPoll {
	doc := mongoPoll{
		ID:                p.ID,
		CreatorID:         p.CreatorID,
		Title:             p.Title,
		Description:       p.Description,
		Category:          p.Category,
		ResultsVisibility: string(p.ResultsVisibility),
		ChangeVote:        p.ChangeVote,
		VoteIntervalMs:    p.VoteInterval.Milliseconds(),
		ExpireAt:          p.ExpireAt,
		CreatedAt:         p.CreatedAt,
	}
	for _, o := range p.Options {
		doc.Options = append(doc.Options, mongoPollOption{ID: o.ID, Title: o.Title})
	}
	return doc
}

func (doc mongoPoll) toDomain() *domain.Poll {
	p := &domain.Poll{
		ID:                doc.ID,
		CreatorID:         doc.CreatorID,
		Title:             doc.Title,
		Description:       doc.Description,
		Category:          doc.Category,
		ResultsVisibility: domain.VisibilityMode(doc.ResultsVisibility),
		ChangeVote:        doc.ChangeVote,
		VoteInterval:      time.Duration(doc.VoteIntervalMs) * time.Millisecond,
		ExpireAt:          doc.ExpireAt,
		CreatedAt:         doc.CreatedAt.UTC(),
	}
	for _, o := range doc.Options {
		p.Options = append(p.Options, domain.PollOption{ID: o.ID, Title: o.Title})
	}
	return p
}

func (r *PollRepository) Create(ctx context.Context, poll *domain.Poll) (*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toMongoPoll(poll)); err != nil {
		return nil, storageErr("insert poll", err)
	}
	return poll, nil
}

func (r *PollRepository) FindByID(ctx context.Context, id string) (*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPoll
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPollNotFound
		}
		return nil, storageErr("find poll", err)
	}
	return doc.toDomain(), nil
}

// ListRecent returns the newest polls with their current vote totals,
// joined from the votes collection.
func (r *PollRepository) ListRecent(ctx context.Context, limit int64) ([]*ports.PollSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: votesCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "poll_id"},
			{Key: "as", Value: "votes"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "results_visibility", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "expire_at", Value: 1},
			{Key: "votes", Value: bson.D{{Key: "$size", Value: "$votes"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("list polls", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID                string     `bson:"_id"`
		Title             string     `bson:"title"`
		ResultsVisibility string     `bson:"results_visibility"`
		CreatedAt         time.Time  `bson:"created_at"`
		ExpireAt          *time.Time `bson:"expire_at"`
		Votes             int64      `bson:"votes"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storageErr("decode polls", err)
	}

	summaries := make([]*ports.PollSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, &ports.PollSummary{
			ID:                row.ID,
			Title:             row.Title,
			ResultsVisibility: domain.VisibilityMode(row.ResultsVisibility),
			CreatedAt:         row.CreatedAt.UTC(),
			ExpireAt:          row.ExpireAt,
			Votes:             row.Votes,
		})
	}
	return summaries, nil
}

// EnsureIndexes creates the listing indexes on the polls collection.
func (r *PollRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "creator_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
