package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openvote/voting-system/internal/core/domain"
)

const votesCollection = "votes"

// VoteRepository implements ports.VoteLedger using MongoDB. The unique
// compound index on (poll_id, voter_id) plus single-document ReplaceOne
// upserts give the at-most-one-record invariant without in-process locking:
// concurrent re-votes for the same pair serialize on the same document.
type VoteRepository struct {
	coll *mongo.Collection
}

func NewVoteRepository(db *mongo.Database) *VoteRepository {
	return &VoteRepository{coll: db.Collection(votesCollection)}
}

type mongoVote struct {
	PollID   string    `bson:"poll_id"`
	VoterID  string    `bson:"voter_id"`
	OptionID string    `bson:"option_id"`
	VotedAt  time.Time `bson:"voted_at"`
}

// Replace atomically installs the record as the voter's current vote.
func (r *VoteRepository) Replace(ctx context.Context, record *domain.VoteRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"poll_id": record.PollID, "voter_id": record.VoterID}
	doc := mongoVote{
		PollID:   record.PollID,
		VoterID:  record.VoterID,
		OptionID: record.OptionID,
		VotedAt:  record.VotedAt,
	}

	res, err := r.coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Two concurrent first votes can both miss the match and race the
		// upsert insert; the loser re-runs and replaces the winner's document.
		res, err = r.coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	}
	if err != nil {
		return false, storageErr("replace vote", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *VoteRepository) FindByPollAndVoter(ctx context.Context, pollID, voterID string) (*domain.VoteRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoVote
	err := r.coll.FindOne(ctx, bson.M{"poll_id": pollID, "voter_id": voterID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, storageErr("find vote", err)
	}

	return &domain.VoteRecord{
		PollID:   doc.PollID,
		VoterID:  doc.VoterID,
		OptionID: doc.OptionID,
		VotedAt:  doc.VotedAt.UTC(),
	}, nil
}

// CountsByOption groups the poll's current vote records by chosen option.
func (r *VoteRepository) CountsByOption(ctx context.Context, pollID string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "poll_id", Value: pollID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$option_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("aggregate votes", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		OptionID string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storageErr("decode vote counts", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.OptionID] = row.Count
	}
	return counts, nil
}

// EnsureIndexes creates the unique (poll_id, voter_id) index the ledger
// invariant rests on.
func (r *VoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "poll_id", Value: 1}, {Key: "voter_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "poll_id", Value: 1}, {Key: "option_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
