package store

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"scrimbot/entity"
	"scrimbot/errs"
	"scrimbot/log"
)

const (
	idxLeader   = "uniq_leader"
	idxSlotUser = "uniq_slot_user"
	idxRegUser  = "uniq_reg_user"
	idxLocation = "uniq_location"
)

// Store holds the two persistent collections: one team document per
// leader, one registration document per (time slot, leader) pair.
type Store struct {
	cTeams  *mongo.Collection
	cScrims *mongo.Collection
}

func New(client *mongo.Client) *Store {
	return &Store{
		cTeams:  client.Database("scrims").Collection("teams"),
		cScrims: client.Database("scrims").Collection("registrations"),
	}
}

// EnsureIndexes creates the unique indexes the invariants rely on:
// one team per leader, one registration per user across all slots, and
// one registration per location across all slots.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.cTeams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName(idxLeader).SetUnique(true),
	})
	if err != nil {
		log.Logger.Error("index creation failed", zap.Error(err))
		return errs.ErrDatabase
	}

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "time_slot", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName(idxSlotUser).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName(idxRegUser).SetUnique(true),
		},
		{
			// Partial: menu-flow registrations carry no location and must
			// not collide with each other.
			Keys: bson.D{{Key: "team.location", Value: 1}},
			Options: options.Index().SetName(idxLocation).SetUnique(true).
				SetPartialFilterExpression(bson.M{"team.location": bson.M{"$gt": ""}}),
		},
	}
	_, err = s.cScrims.Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Logger.Error("index creation failed", zap.Error(err))
		return errs.ErrDatabase
	}

	return nil
}

func (s *Store) Team(ctx context.Context, userID string) (*entity.Team, error) {
	t := &entity.Team{}
	err := s.cTeams.FindOne(ctx, bson.M{"user_id": userID}).Decode(t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("userID", userID))
		return nil, errs.ErrDatabase
	}

	return t, nil
}

// TeamByMember finds the team whose roster contains the given player.
func (s *Store) TeamByMember(ctx context.Context, playerID string) (*entity.Team, error) {
	t := &entity.Team{}
	err := s.cTeams.FindOne(ctx, bson.M{"players.id": playerID}).Decode(t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("playerID", playerID))
		return nil, errs.ErrDatabase
	}

	return t, nil
}

func (s *Store) PutTeam(ctx context.Context, t *entity.Team) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.cTeams.ReplaceOne(ctx, bson.M{"user_id": t.UserID}, t, opts)
	if err != nil {
		log.Logger.Error("database error", zap.Error(err), zap.String("userID", t.UserID))
		return errs.ErrDatabase
	}

	return nil
}

func (s *Store) DeleteTeam(ctx context.Context, userID string) error {
	_, err := s.cTeams.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err), zap.String("userID", userID))
		return errs.ErrDatabase
	}

	return nil
}

func (s *Store) Teams(ctx context.Context) ([]entity.Team, error) {
	cursor, err := s.cTeams.Find(ctx, bson.M{})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return nil, errs.ErrDatabase
	}
	defer cursor.Close(context.Background())

	var teams []entity.Team
	if err := cursor.All(ctx, &teams); err != nil {
		log.Logger.Error("decode error", zap.Error(err))
		return nil, errs.ErrDatabase
	}

	return teams, nil
}

// PutRegistration inserts a registration. The unique indexes make the
// insert an atomic claim: a duplicate key on the location index means the
// location was claimed between the caller's availability check and this
// write, and a duplicate on the user index means the user already holds a
// slot.
func (s *Store) PutRegistration(ctx context.Context, reg *entity.ScrimRegistration) error {
	_, err := s.cScrims.InsertOne(ctx, reg)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), idxLocation) {
				return errs.ErrLocationJustTaken
			}

			return errs.ErrAlreadyRegistered
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("userID", reg.UserID))
		return errs.ErrDatabase
	}

	return nil
}

func (s *Store) Registration(ctx context.Context, timeSlot, userID string) (*entity.ScrimRegistration, error) {
	reg := &entity.ScrimRegistration{}
	err := s.cScrims.FindOne(ctx, bson.M{"time_slot": timeSlot, "user_id": userID}).Decode(reg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("userID", userID))
		return nil, errs.ErrDatabase
	}

	return reg, nil
}

// RegistrationByUser finds the user's single registration regardless of
// slot. The unique user index guarantees there is at most one.
func (s *Store) RegistrationByUser(ctx context.Context, userID string) (*entity.ScrimRegistration, error) {
	reg := &entity.ScrimRegistration{}
	err := s.cScrims.FindOne(ctx, bson.M{"user_id": userID}).Decode(reg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("userID", userID))
		return nil, errs.ErrDatabase
	}

	return reg, nil
}

func (s *Store) DeleteRegistration(ctx context.Context, timeSlot, userID string) error {
	_, err := s.cScrims.DeleteOne(ctx, bson.M{"time_slot": timeSlot, "user_id": userID})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err), zap.String("userID", userID))
		return errs.ErrDatabase
	}

	return nil
}

func (s *Store) RegistrationsBySlot(ctx context.Context, timeSlot string) ([]entity.ScrimRegistration, error) {
	return s.findRegistrations(ctx, bson.M{"time_slot": timeSlot})
}

func (s *Store) Registrations(ctx context.Context) ([]entity.ScrimRegistration, error) {
	return s.findRegistrations(ctx, bson.M{})
}

func (s *Store) findRegistrations(ctx context.Context, filter bson.M) ([]entity.ScrimRegistration, error) {
	cursor, err := s.cScrims.Find(ctx, filter)
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return nil, errs.ErrDatabase
	}
	defer cursor.Close(context.Background())

	var regs []entity.ScrimRegistration
	if err := cursor.All(ctx, &regs); err != nil {
		log.Logger.Error("decode error", zap.Error(err))
		return nil, errs.ErrDatabase
	}

	return regs, nil
}

func (s *Store) DeleteAllTeams(ctx context.Context) error {
	_, err := s.cTeams.DeleteMany(ctx, bson.M{})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return errs.ErrDatabase
	}

	return nil
}

func (s *Store) DeleteAllRegistrations(ctx context.Context) error {
	_, err := s.cScrims.DeleteMany(ctx, bson.M{})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return errs.ErrDatabase
	}

	return nil
}
