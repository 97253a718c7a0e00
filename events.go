package zkgroup

import "sort"

// Event is a notification from a Group monitor, either a MembersEvent or an
// ErrorEvent.
type Event interface {
	isEvent()
}

// MembersEvent carries a fresh membership snapshot. Members is passed through
// in the order ZooKeeper returned the children, which is unspecified; treat
// it as a set. Added and Removed hold the sorted ids that joined or left
// since the previous snapshot; the initial snapshot reports every member as
// Added.
type MembersEvent struct {
	Members []string
	Added   []string
	Removed []string
}

func (MembersEvent) isEvent() {}

// ErrorEvent carries a failure discovered asynchronously by the monitor:
// a failed membership fetch or a session disconnection.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) isEvent() {}

func newMembersEvent(last, current []string) MembersEvent {
	prev := toSet(last)
	next := toSet(current)

	return MembersEvent{
		Members: current,
		Added:   missingFrom(prev, current),
		Removed: missingFrom(next, last),
	}
}

// missingFrom returns the sorted ids in members that are not in set.
func missingFrom(set map[string]struct{}, members []string) []string {
	var ret []string
	for _, m := range members {
		if _, ok := set[m]; ok {
			continue
		}
		ret = append(ret, m)
	}
	sort.Strings(ret)
	return ret
}

func toSet(members []string) map[string]struct{} {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set
}
