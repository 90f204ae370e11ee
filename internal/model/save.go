package model

import (
	"encoding/json"
	"time"
)

// CloudSave is the single save slot of a player.
// Each upload replaces Data and Version wholesale.
type CloudSave struct {
	PlayerID  PlayerID
	Data      json.RawMessage
	Version   int32 // client-defined, not checked by the server
	UpdatedAt time.Time
}
