package model

import (
	"bytes"
	"encoding/json"

	sonic "github.com/bytedance/sonic"
)

// playerWire is the /proPlayers record as sent. full_history_time is kept raw
// so a wrongly typed value reaches the scorer instead of failing the decode.
type playerWire struct {
	AccountID       int64           `json:"account_id"`
	Name            string          `json:"name"`
	PersonaName     string          `json:"personaname"`
	CountryCode     string          `json:"country_code"`
	TeamID          int64           `json:"team_id"`
	TeamName        string          `json:"team_name"`
	FullHistoryTime json.RawMessage `json:"full_history_time"`
}

// UnmarshalJSON decodes a player record. A null or absent full_history_time
// stays nil; a non-string value is kept as its raw JSON text.
func (p *PlayerRecord) UnmarshalJSON(data []byte) error {
	var w playerWire
	if err := sonic.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = PlayerRecord{
		AccountID:       w.AccountID,
		Name:            w.Name,
		PersonaName:     w.PersonaName,
		CountryCode:     w.CountryCode,
		TeamID:          w.TeamID,
		TeamName:        w.TeamName,
		FullHistoryTime: rawHistoryTime(w.FullHistoryTime),
	}
	return nil
}

func rawHistoryTime(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := sonic.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	return &s
}
