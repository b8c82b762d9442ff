package events

import "time"

// StoreQuery is emitted after each storage round trip. Kind is the entity
// kind ("user", "post", "profile", "memberType"), Op the repository method
// ("findByIds", "findAll", "create", ...), and Keys the number of keys the
// call serviced (0 for whole-collection reads and single-record writes).
type StoreQuery struct {
	Kind     string
	Op       string
	Keys     int
	Err      error
	Duration time.Duration
}
