package entity

import "time"

// TeamSnapshot is the team as it looked at registration time, plus the
// claimed drop location. It is a copy, never a live reference.
type TeamSnapshot struct {
	Team     `bson:",inline"`
	Location string `bson:"location,omitempty"`
}

// UserSnapshot is the registrant's display identity captured at
// registration time. It is never refreshed.
type UserSnapshot struct {
	ID          string `bson:"id"`
	Username    string `bson:"username"`
	DisplayName string `bson:"display_name"`
	AvatarURL   string `bson:"avatar_url"`
}

type ScrimRegistration struct {
	TimeSlot         string       `bson:"time_slot"`
	UserID           string       `bson:"user_id"`
	Team             TeamSnapshot `bson:"team"`
	RegistrationTime time.Time    `bson:"registration_time"`
	User             UserSnapshot `bson:"user"`
}
