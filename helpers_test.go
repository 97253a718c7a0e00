package zkgroup

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-zookeeper/zk"
)

// fakeConn is an in-memory stand-in for a ZooKeeper connection implementing
// Conn. It keeps a flat map of paths, fires one-shot child watches on
// structural changes, and can inject latency and failures.
type fakeConn struct {
	mu      sync.Mutex
	nodes   map[string]*fakeNode
	watches map[string][]chan zk.Event

	delay time.Duration

	createErr   error
	childrenErr error
	getErr      error

	createCalls int
}

type fakeNode struct {
	data      []byte
	ephemeral bool
	stat      zk.Stat
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		nodes:   map[string]*fakeNode{"/": {}},
		watches: make(map[string][]chan zk.Event),
	}
}

var _ Conn = (*fakeConn)(nil)

func parentOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

func (c *fakeConn) sleep() {
	c.mu.Lock()
	d := c.delay
	c.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
}

func (c *fakeConn) setDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = d
}

func (c *fakeConn) setErrors(create, children, get error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createErr, c.childrenErr, c.getErr = create, children, get
}

func (c *fakeConn) Create(path string, data []byte, flags int32, acl []zk.ACL) (string, error) {
	c.sleep()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.createCalls++
	if c.createErr != nil {
		return "", c.createErr
	}
	if _, ok := c.nodes[path]; ok {
		return "", zk.ErrNodeExists
	}
	if _, ok := c.nodes[parentOf(path)]; !ok {
		return "", zk.ErrNoNode
	}

	now := time.Now().UnixMilli()
	c.nodes[path] = &fakeNode{
		data:      data,
		ephemeral: flags&zk.FlagEphemeral != 0,
		stat:      zk.Stat{Ctime: now, Mtime: now},
	}
	c.fireLocked(parentOf(path))
	return path, nil
}

// remove deletes a node, simulating the session-loss cleanup ZooKeeper
// performs for ephemeral nodes.
func (c *fakeConn) remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.nodes, path)
	c.fireLocked(parentOf(path))
}

func (c *fakeConn) fireLocked(path string) {
	for _, w := range c.watches[path] {
		w <- zk.Event{Type: zk.EventNodeChildrenChanged, Path: path}
	}
	delete(c.watches, path)
}

func (c *fakeConn) childrenLocked(path string) ([]string, error) {
	if c.childrenErr != nil {
		return nil, c.childrenErr
	}
	if _, ok := c.nodes[path]; !ok {
		return nil, zk.ErrNoNode
	}

	prefix := path + "/"
	if path == "/" {
		prefix = "/"
	}
	var names []string
	for p := range c.nodes {
		if p == "/" || !strings.HasPrefix(p, prefix) {
			continue
		}
		if rest := strings.TrimPrefix(p, prefix); !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	return names, nil
}

func (c *fakeConn) Children(path string) ([]string, *zk.Stat, error) {
	c.sleep()
	c.mu.Lock()
	defer c.mu.Unlock()

	names, err := c.childrenLocked(path)
	if err != nil {
		return nil, nil, err
	}
	return names, &zk.Stat{NumChildren: int32(len(names))}, nil
}

func (c *fakeConn) ChildrenW(path string) ([]string, *zk.Stat, <-chan zk.Event, error) {
	c.sleep()
	c.mu.Lock()
	defer c.mu.Unlock()

	names, err := c.childrenLocked(path)
	if err != nil {
		return nil, nil, nil, err
	}
	watch := make(chan zk.Event, 1)
	c.watches[path] = append(c.watches[path], watch)
	return names, &zk.Stat{NumChildren: int32(len(names))}, watch, nil
}

func (c *fakeConn) Get(path string) ([]byte, *zk.Stat, error) {
	c.sleep()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return nil, nil, c.getErr
	}
	node, ok := c.nodes[path]
	if !ok {
		return nil, nil, zk.ErrNoNode
	}
	stat := node.stat
	return node.data, &stat, nil
}

func (c *fakeConn) exists(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.nodes[path]
	return ok
}

func (c *fakeConn) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createCalls
}

// collectEvents reads up to count events from ch, giving up at the timeout.
func collectEvents(ch <-chan Event, count int, timeout time.Duration) []Event {
	deadline := time.After(timeout)

	var ret []Event
	for len(ret) < count {
		select {
		case ev, ok := <-ch:
			if !ok {
				return ret
			}
			ret = append(ret, ev)
		case <-deadline:
			return ret
		}
	}
	return ret
}

// nextMembers reads the next event and requires it to be a MembersEvent.
func nextMembers(t *testing.T, ch <-chan Event) MembersEvent {
	t.Helper()
	select {
	case ev := <-ch:
		me, ok := ev.(MembersEvent)
		if !ok {
			t.Fatalf("expected MembersEvent, got %#v", ev)
		}
		return me
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for members event")
	}
	return MembersEvent{}
}
