package entity

import "time"

type Player struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type Team struct {
	UserID         string    `bson:"user_id"`
	TeamName       string    `bson:"team_name"`
	TeamTag        string    `bson:"team_tag"`
	Players        []Player  `bson:"players"`
	EnrollmentTime time.Time `bson:"enrollment_time"`
	LastUpdated    time.Time `bson:"last_updated"`
}

// HasPlayer reports whether id is on the roster.
func (t *Team) HasPlayer(id string) bool {
	for _, p := range t.Players {
		if p.ID == id {
			return true
		}
	}

	return false
}
