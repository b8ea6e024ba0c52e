package layout

import orderedmap "github.com/wk8/go-ordered-map/v2"

// idSet is an insertion-ordered set of node ids.
type idSet struct {
	m *orderedmap.OrderedMap[string, struct{}]
}

func newIDSet(ids ...string) *idSet {
	s := &idSet{m: orderedmap.New[string, struct{}]()}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

// add inserts id and reports whether it was new.
func (s *idSet) add(id string) bool {
	if s.has(id) {
		return false
	}
	s.m.Set(id, struct{}{})
	return true
}

func (s *idSet) has(id string) bool {
	_, ok := s.m.Get(id)
	return ok
}

func (s *idSet) len() int { return s.m.Len() }

// ids returns the members in insertion order.
func (s *idSet) ids() []string {
	out := make([]string, 0, s.m.Len())
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}
