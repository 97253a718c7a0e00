package zkgroup

import (
	"time"

	"github.com/go-zookeeper/zk"
)

// Conn is the subset of the ZooKeeper client used by a Group. It is satisfied
// by *zk.Conn and is injected at construction so tests can substitute a fake.
type Conn interface {
	// Create creates a node at path with the given data, flags and ACL. It
	// fails with zk.ErrNodeExists if the node already exists.
	Create(path string, data []byte, flags int32, acl []zk.ACL) (string, error)

	// Children returns the names of the children of the node at path.
	Children(path string) ([]string, *zk.Stat, error)

	// ChildrenW is Children plus a one-shot watch: the returned channel
	// receives a single event on the next structural change under path and
	// is not re-armed.
	ChildrenW(path string) ([]string, *zk.Stat, <-chan zk.Event, error)

	// Get returns the data and stat of the node at path.
	Get(path string) ([]byte, *zk.Stat, error)
}

var _ Conn = (*zk.Conn)(nil)

// Dial connects to the given ZooKeeper ensemble. The returned event channel
// carries session state changes and should be passed to NewGroup so that
// Monitor can surface disconnections. Close the connection when done.
func Dial(servers []string, sessionTimeout time.Duration) (*zk.Conn, <-chan zk.Event, error) {
	return zk.Connect(servers, sessionTimeout)
}
