package entity

// Player is a browser session. Both seats of a hot-seat game share one session.
type Player struct {
	ID     string `json:"id"`
	GameID string `json:"game_id,omitempty"`
}

func (that *Player) HasGame() bool {
	return that.GameID != ""
}
