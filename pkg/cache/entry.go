package cache

import (
	"time"
)

const (
	// DefaultTTL is the default lifetime of a cached lookup. Registry data
	// changes rarely; a day keeps re-runs of overlapping input lists from
	// burning the upstream quota.
	DefaultTTL = 24 * time.Hour
)

// Entry represents a cached registry lookup.
type Entry struct {
	// Data is the decoded lookup payload, JSON-encoded.
	Data []byte `json:"data"`

	// CachedAt is when the lookup was stored.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`
}

// NewEntry creates an entry for data that expires after ttl.
// A ttl <= 0 falls back to DefaultTTL.
func NewEntry(data []byte, ttl time.Duration) *Entry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Entry{
		Data:     data,
		CachedAt: now,
		Expires:  now.Add(ttl),
	}
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration. Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
