package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"scrimbot/entity"
	"scrimbot/errs"
	"scrimbot/log"
)

// MigrateRosters normalizes historical team documents whose rosters were
// stored as bare ID strings into {id, name} records. It runs once at
// startup; the name falls back to the ID because the original display name
// was never recorded.
func (s *Store) MigrateRosters(ctx context.Context) error {
	cursor, err := s.cTeams.Find(ctx, bson.M{})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return errs.ErrDatabase
	}
	defer cursor.Close(context.Background())

	migrated := 0
	for cursor.Next(ctx) {
		raw := bson.M{}
		if err := cursor.Decode(&raw); err != nil {
			log.Logger.Error("decode error", zap.Error(err))
			return errs.ErrDatabase
		}

		players, ok := raw["players"].(bson.A)
		if !ok {
			continue
		}

		normalized := make([]entity.Player, 0, len(players))
		dirty := false
		for _, p := range players {
			switch v := p.(type) {
			case string:
				normalized = append(normalized, entity.Player{ID: v, Name: v})
				dirty = true
			case bson.M:
				id, _ := v["id"].(string)
				name, _ := v["name"].(string)
				normalized = append(normalized, entity.Player{ID: id, Name: name})
			case bson.D:
				player := entity.Player{}
				for _, e := range v {
					if s, ok := e.Value.(string); ok {
						if e.Key == "id" {
							player.ID = s
						}
						if e.Key == "name" {
							player.Name = s
						}
					}
				}
				normalized = append(normalized, player)
			}
		}

		if !dirty {
			continue
		}

		_, err := s.cTeams.UpdateOne(ctx,
			bson.M{"_id": raw["_id"]},
			bson.M{"$set": bson.M{"players": normalized}},
		)
		if err != nil {
			log.Logger.Error("database error", zap.Error(err))
			return errs.ErrDatabase
		}
		migrated++
	}
	if err := cursor.Err(); err != nil {
		log.Logger.Error("cursor error", zap.Error(err))
		return errs.ErrDatabase
	}

	if migrated > 0 {
		log.Logger.Info("migrated legacy rosters", zap.Int("teams", migrated))
	}

	return nil
}
