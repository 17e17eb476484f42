//go:build race

package syncsim

import "github.com/llxisdsh/pb"

// MapOf reads bucket metadata without barriers on TSO platforms, which the
// race detector reports. HashTrieMap only goes through sync/atomic.
type progressMap = pb.HashTrieMap[Actor, *actorProgress]

func loadProgress(m *progressMap, a Actor) *actorProgress {
	p, _ := m.LoadOrStoreFn(a, func() *actorProgress {
		return &actorProgress{}
	})
	return p
}
