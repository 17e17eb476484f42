//go:build !race

package syncsim

import "github.com/llxisdsh/pb"

type progressMap = pb.MapOf[Actor, *actorProgress]

func loadProgress(m *progressMap, a Actor) *actorProgress {
	p, _ := m.ProcessEntry(
		a,
		func(l *pb.EntryOf[Actor, *actorProgress]) (*pb.EntryOf[Actor, *actorProgress], *actorProgress, bool) {
			if l != nil {
				return l, l.Value, true
			}
			v := &actorProgress{}
			return &pb.EntryOf[Actor, *actorProgress]{Value: v}, v, false
		},
	)
	return p
}
