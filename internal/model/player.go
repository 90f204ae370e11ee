package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is an identity with its recovery passphrase and optional login
// credentials. Username and PasswordHash are either both set or both empty.
type Player struct {
	ID           PlayerID
	DisplayName  string
	Passphrase   string // recovery secret, unique and immutable
	Username     string // empty for anonymous players
	PasswordHash string // argon2id PHC string
	Visible      bool   // shown on the leaderboard
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRegistered reports whether the player has upgraded to username/password login
func (p *Player) IsRegistered() bool {
	return p.Username != "" && p.PasswordHash != ""
}

// ProfileUpdate is a partial update of a player's profile.
// A nil field leaves the stored value unchanged.
type ProfileUpdate struct {
	DisplayName *string
	Visible     *bool
}

// Apply merges the update into the player
func (u ProfileUpdate) Apply(p *Player) {
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.Visible != nil {
		p.Visible = *u.Visible
	}
}
