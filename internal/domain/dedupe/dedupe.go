// Package dedupe drops repeated player records so each account is processed once.
package dedupe

import "github.com/okian/proteams/internal/domain/model"

// Deduper records seen account ids.
type Deduper interface {
	// SeenAndRecord checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(id int64) bool

	Size() int
}

// inMemoryDeduper implements Deduper with a plain set. One instance lives for
// one pipeline run, so it is neither bounded nor safe for concurrent use.
type inMemoryDeduper struct {
	seen map[int64]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &inMemoryDeduper{seen: make(map[int64]struct{}, cfg.capacity)}
}

func (d *inMemoryDeduper) SeenAndRecord(id int64) bool {
	if _, exists := d.seen[id]; exists {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int {
	return len(d.seen)
}

// Players returns players with repeated account ids removed, keeping the first
// occurrence and the input order. Records without an account id (0) cannot be
// told apart and are always kept. onDuplicate, if set, sees every dropped record.
func Players(d Deduper, players []model.PlayerRecord, onDuplicate func(model.PlayerRecord)) []model.PlayerRecord {
	out := make([]model.PlayerRecord, 0, len(players))
	for _, p := range players {
		if p.AccountID != 0 && d.SeenAndRecord(p.AccountID) {
			if onDuplicate != nil {
				onDuplicate(p)
			}
			continue
		}
		out = append(out, p)
	}
	return out
}
