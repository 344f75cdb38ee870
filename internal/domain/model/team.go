package model

// TeamMetadata is the per-team record served by the team lookup.
type TeamMetadata struct {
	TeamID int64   `json:"team_id"`
	Name   string  `json:"name"`
	Tag    string  `json:"tag"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Rating float64 `json:"rating"`
}

// PlayerReport is a player line inside a team report.
type PlayerReport struct {
	PersonaName string `json:"personaname" yaml:"personaname"`
	Experience  int64  `json:"experience" yaml:"experience"` // seconds, truncated
	CountryCode string `json:"country_code" yaml:"country_code"`
}

// TeamReport is one ranked team with its metadata and players.
type TeamReport struct {
	TeamID     int64          `json:"team_id" yaml:"team_id"`
	Name       string         `json:"name" yaml:"name"`
	Wins       int            `json:"wins" yaml:"wins"`
	Losses     int            `json:"losses" yaml:"losses"`
	Rating     float64        `json:"rating" yaml:"rating"`
	Experience int64          `json:"experience" yaml:"experience"`
	Players    []PlayerReport `json:"players" yaml:"players"`
}
