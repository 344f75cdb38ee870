// Package model contains domain models passed between layers.
package model

import "strings"

// NoTeam is the sentinel team id of a player not on a tracked team.
const NoTeam int64 = 0

// PlayerRecord is one professional player as returned by the player list.
// Fields mirror the /proPlayers payload; see UnmarshalJSON for decoding.
type PlayerRecord struct {
	AccountID       int64   `json:"account_id"`
	Name            string  `json:"name"`
	PersonaName     string  `json:"personaname"`
	CountryCode     string  `json:"country_code"`
	TeamID          int64   `json:"team_id"`
	TeamName        string  `json:"team_name"`
	FullHistoryTime *string `json:"full_history_time"` // nil when the API sends null or omits it
}

// HasTeam reports whether the player belongs to a tracked team.
func (p PlayerRecord) HasTeam() bool {
	return p.TeamID != NoTeam
}

// HistoryTime returns the trimmed full_history_time and whether it was set.
func (p PlayerRecord) HistoryTime() (string, bool) {
	if p.FullHistoryTime == nil {
		return "", false
	}
	v := strings.TrimSpace(*p.FullHistoryTime)
	return v, v != ""
}

// DisplayName prefers the persona name and falls back to the pro name.
func (p PlayerRecord) DisplayName() string {
	if name := strings.TrimSpace(p.PersonaName); name != "" {
		return name
	}
	return strings.TrimSpace(p.Name)
}
