package model

import (
	json "github.com/goccy/go-json"

	"github.com/georgemarshall/serenity/internal/decode"
)

// OnlineStatus is a user's reported availability.
type OnlineStatus string

const (
	StatusDnD       OnlineStatus = "dnd"
	StatusIdle      OnlineStatus = "idle"
	StatusInvisible OnlineStatus = "invisible"
	StatusOffline   OnlineStatus = "offline"
	StatusOnline    OnlineStatus = "online"
)

// ActivityType is the numeric activity kind.
type ActivityType uint8

const (
	ActivityTypePlaying   ActivityType = 0
	ActivityTypeStreaming ActivityType = 1
	ActivityTypeListening ActivityType = 2
)

// ActivityTimestamps are the unix start/end times of an activity.
type ActivityTimestamps struct {
	End   *uint64 `json:"end,omitempty"`
	Start *uint64 `json:"start,omitempty"`
}

// ActivityAssets are the presence images and their hover texts.
type ActivityAssets struct {
	LargeImage *string `json:"large_image,omitempty"`
	LargeText  *string `json:"large_text,omitempty"`
	SmallImage *string `json:"small_image,omitempty"`
	SmallText  *string `json:"small_text,omitempty"`
}

// ActivityParty describes the user's current party.
type ActivityParty struct {
	ID   *string    `json:"id,omitempty"`
	Size *[2]uint64 `json:"size,omitempty"`
}

// Activity is what a user is currently doing.
type Activity struct {
	ApplicationID *ApplicationID      `json:"application_id,omitempty"`
	Assets        *ActivityAssets     `json:"assets,omitempty"`
	Details       *string             `json:"details,omitempty"`
	Instance      *bool               `json:"instance,omitempty"`
	Kind          ActivityType        `json:"type"`
	Name          string              `json:"name"`
	Party         *ActivityParty      `json:"party,omitempty"`
	State         *string             `json:"state,omitempty"`
	Timestamps    *ActivityTimestamps `json:"timestamps,omitempty"`
	URL           *string             `json:"url,omitempty"`
}

// Presence is a user's online status plus activity. The wire `user`
// object may be a bare id reference, in which case only UserID is
// populated; a full user object additionally yields a User record.
type Presence struct {
	Activity     *Activity
	LastModified *uint64
	Nick         *string
	Status       OnlineStatus
	UserID       UserID
	User         *User
}

// partialUser is the presence's user object: sometimes just an id,
// sometimes a full user.
type partialUser struct {
	ID            *UserID        `json:"id"`
	Avatar        *string        `json:"avatar"`
	Bot           bool           `json:"bot"`
	Discriminator *Discriminator `json:"discriminator"`
	Name          *string        `json:"username"`
}

func (p *Presence) UnmarshalJSON(data []byte) error {
	var aux struct {
		Game         *Activity       `json:"game"`
		LastModified *uint64         `json:"last_modified"`
		Nick         *string         `json:"nick"`
		Status       *OnlineStatus   `json:"status"`
		User         json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Status == nil {
		return &decode.MissingFieldError{Field: "status"}
	}
	if len(aux.User) == 0 {
		return &decode.MissingFieldError{Field: "user_id"}
	}
	var pu partialUser
	if err := json.Unmarshal(aux.User, &pu); err != nil {
		return err
	}
	if pu.ID == nil {
		return &decode.MissingFieldError{Field: "id"}
	}
	p.Activity = aux.Game
	p.LastModified = aux.LastModified
	p.Nick = aux.Nick
	p.Status = *aux.Status
	p.UserID = *pu.ID
	p.User = nil
	if pu.Discriminator != nil && pu.Name != nil {
		p.User = &User{
			ID:            *pu.ID,
			Avatar:        pu.Avatar,
			Bot:           pu.Bot,
			Discriminator: *pu.Discriminator,
			Name:          *pu.Name,
		}
	}
	return nil
}

func (p Presence) MarshalJSON() ([]byte, error) {
	out := struct {
		Game         *Activity    `json:"game"`
		LastModified *uint64      `json:"last_modified,omitempty"`
		Nick         *string      `json:"nick"`
		Status       OnlineStatus `json:"status"`
		User         interface{}  `json:"user"`
	}{
		Game:         p.Activity,
		LastModified: p.LastModified,
		Nick:         p.Nick,
		Status:       p.Status,
	}
	if p.User != nil {
		out.User = p.User
	} else {
		out.User = map[string]UserID{"id": p.UserID}
	}
	return json.Marshal(out)
}
