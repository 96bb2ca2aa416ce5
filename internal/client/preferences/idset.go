package preferences

// idSet is a set of strings that remembers insertion order.
type idSet struct {
	order []string
	index map[string]struct{}
}

func newIDSet(ids []string) *idSet {
	s := &idSet{order: make([]string, 0, len(ids)), index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.add(id)
		}
	}
	return s
}

// add reports whether id was inserted.
func (s *idSet) add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *idSet) remove(id string) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *idSet) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) len() int { return len(s.order) }

func (s *idSet) list() []string {
	return append([]string{}, s.order...)
}

func (s *idSet) copyMap() map[string]struct{} {
	m := make(map[string]struct{}, len(s.index))
	for k := range s.index {
		m[k] = struct{}{}
	}
	return m
}
