package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

const voteEventsCollection = "vote_events"

// AuditRepository implements ports.VoteAuditRepository using MongoDB.
// Events are append-only; the ledger stays the source of truth for counts.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) ports.VoteAuditRepository {
	return &AuditRepository{coll: db.Collection(voteEventsCollection)}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.VoteEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"poll_id":      event.PollID,
		"voter_id":     event.VoterID,
		"option_id":    event.OptionID,
		"voted_at":     event.VotedAt.UTC(),
		"replaced":     event.Replaced,
		"processed_at": time.Now().UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return storageErr("insert vote event", err)
	}
	return nil
}
