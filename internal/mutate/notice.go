package mutate

import (
	"time"

	"github.com/google/uuid"
)

// noticeTTL is how long a failure notice stays visible before auto-dismissal.
const noticeTTL = 4 * time.Second

// Notice is a transient, auto-expiring user-facing failure banner. It names
// the action that failed, never backend internals.
type Notice struct {
	ID        string
	Text      string
	ExpiresAt time.Time
}

func (s *Store) pushNotice(text string) {
	s.notices = append(s.notices, Notice{
		ID:        uuid.New().String(),
		Text:      text,
		ExpiresAt: s.now().Add(noticeTTL),
	})
}

// ActiveNotices returns the notices that have not yet expired at the given
// time and drops expired ones from the store.
func (s *Store) ActiveNotices(now time.Time) []Notice {
	var active []Notice
	for _, n := range s.notices {
		if n.ExpiresAt.After(now) {
			active = append(active, n)
		}
	}
	s.notices = active
	return active
}
