package results

// Store holds the current payload and a generation counter that advances on
// every replacement. It is owned by a single event loop and is not safe for
// concurrent use.
type Store struct {
	current    *AggregateResult
	generation uint64
}

// NewStore returns an empty store at generation zero.
func NewStore() *Store {
	return &Store{}
}

// Replace installs r as the current payload and returns the new generation.
func (s *Store) Replace(r *AggregateResult) uint64 {
	s.current = r
	s.generation++
	return s.generation
}

// Current returns the payload, if any upload has populated the store.
func (s *Store) Current() (*AggregateResult, bool) {
	return s.current, s.current != nil
}

// Generation is zero until the first Replace.
func (s *Store) Generation() uint64 {
	return s.generation
}

// Year is the dataset year of the current payload, or zero.
func (s *Store) Year() int {
	if s.current == nil {
		return 0
	}
	return s.current.DatasetYear
}
