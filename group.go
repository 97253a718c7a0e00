package zkgroup

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/google/uuid"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// RegistrationTimeKey is the field added to every member document at
// registration, holding the registration wall-clock instant in epoch
// milliseconds UTC.
const RegistrationTimeKey = "registrationTimeUTC"

// Member is a successful registration: the member's id and its stored
// document, including the added registration time.
type Member struct {
	ID   string
	Data map[string]interface{}
}

// MemberInfo is a member's stored document together with the node stat
// returned by ZooKeeper (version and modification metadata).
type MemberInfo struct {
	ID   string
	Data map[string]interface{}
	Stat *zk.Stat
}

// Group coordinates membership of a logical group rooted at a path in the
// ZooKeeper tree. The zero value is not usable; construct with NewGroup.
type Group struct {
	conn    Conn
	session <-chan zk.Event
	opts    options

	monitorOnce sync.Once
	events      chan Event
	stop        StopFunc
}

// NewGroup returns a Group using the given connection. The session channel is
// the event stream returned by Dial (or zk.Connect) and is consumed by
// Monitor to surface disconnections; it may be nil if Monitor is never used.
func NewGroup(conn Conn, session <-chan zk.Event, opts ...Option) (*Group, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateOptions(&o); err != nil {
		return nil, err
	}
	return &Group{conn: conn, session: session, opts: o}, nil
}

// Path returns the group root path.
func (g *Group) Path() string {
	return g.opts.path
}

// Setup ensures the group path and any missing ancestors exist. It is
// idempotent: an already existing path is success. Bounded by the setup
// timeout.
func (g *Group) Setup(ctx context.Context) error {
	ctx, cancel := opContext(ctx, g.opts.setupTimeout)
	defer cancel()

	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, ensurePath(g.conn, g.opts.path)
	})
	if err != nil {
		if errors.IsAny(err, ErrTimeout, context.Canceled) {
			return err
		}
		return wrapKind(ErrSetupFailed, err, j.KS("group", g.opts.path))
	}

	g.opts.log.Debug(ctx, "zkgroup: group path ready", j.KS("group", g.opts.path))
	return nil
}

// ensurePath creates each segment of path, tolerating nodes that already
// exist.
func ensurePath(c Conn, path string) error {
	var node strings.Builder
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		node.WriteString("/")
		node.WriteString(segment)
		_, err := c.Create(node.String(), nil, 0, zk.WorldACL(zk.PermAll))
		if err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return err
		}
	}
	return nil
}

// Members returns the current membership snapshot, read fresh from the
// group's children. Bounded by the operation timeout.
func (g *Group) Members(ctx context.Context) ([]string, error) {
	ctx, cancel := opContext(ctx, g.opts.timeout)
	defer cancel()

	members, err := await(ctx, func() ([]string, error) {
		children, _, err := g.conn.Children(g.opts.path)
		return children, err
	})
	if err != nil {
		if errors.IsAny(err, ErrTimeout, context.Canceled) {
			return nil, err
		}
		return nil, wrapKind(ErrMembersUnavailable, err, j.KS("group", g.opts.path))
	}

	membersGauge.WithLabelValues(g.opts.path).Set(float64(len(members)))
	return members, nil
}

// MemberPath derives the node path for a member id. It returns false if the
// id is empty or contains the path separator.
func (g *Group) MemberPath(id string) (string, bool) {
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return g.opts.path + "/" + id, true
}

// Register joins the group by creating an ephemeral member node. An empty id
// is replaced with a generated v4 UUID. The data document (nil for empty) is
// augmented with RegistrationTimeKey before being stored as JSON. The node
// exists for as long as the registering session lives; it is never explicitly
// removed by this package. Bounded by the operation timeout.
func (g *Group) Register(ctx context.Context, id string, data map[string]interface{}) (Member, error) {
	if id == "" {
		id = uuid.NewString()
	}

	memberPath, ok := g.MemberPath(id)
	if !ok {
		return Member{}, errors.Wrap(ErrIllegalMemberID, "", j.KS("member_id", id))
	}

	doc := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		doc[k] = v
	}
	doc[RegistrationTimeKey] = time.Now().UnixMilli()

	payload, err := json.Marshal(doc)
	if err != nil {
		return Member{}, wrapKind(ErrRegistrationFailed, err, j.KS("member_id", id))
	}

	ctx, cancel := opContext(ctx, g.opts.timeout)
	defer cancel()

	_, err = await(ctx, func() (string, error) {
		return g.conn.Create(memberPath, payload, zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	})
	if err != nil {
		if errors.IsAny(err, ErrTimeout, context.Canceled) {
			return Member{}, err
		}
		return Member{}, wrapKind(ErrRegistrationFailed, err, j.KS("member_id", id))
	}

	g.opts.log.Debug(ctx, "zkgroup: member registered",
		j.MKV{"group": g.opts.path, "member_id": id})
	return Member{ID: id, Data: doc}, nil
}

// MemberData fetches and decodes the stored document of a member, along with
// the node's stat. Bounded by the operation timeout.
func (g *Group) MemberData(ctx context.Context, id string) (MemberInfo, error) {
	memberPath, ok := g.MemberPath(id)
	if !ok {
		return MemberInfo{}, errors.Wrap(ErrIllegalMemberID, "", j.KS("member_id", id))
	}

	ctx, cancel := opContext(ctx, g.opts.timeout)
	defer cancel()

	type nodeData struct {
		payload []byte
		stat    *zk.Stat
	}

	node, err := await(ctx, func() (nodeData, error) {
		payload, stat, err := g.conn.Get(memberPath)
		return nodeData{payload: payload, stat: stat}, err
	})
	if err != nil {
		if errors.IsAny(err, ErrTimeout, context.Canceled) {
			return MemberInfo{}, err
		}
		return MemberInfo{}, wrapKind(ErrMemberDataUnavailable, err, j.KS("member_id", id))
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(node.payload, &doc); err != nil {
		return MemberInfo{}, wrapKind(ErrMemberDataUnavailable, err, j.KS("member_id", id))
	}

	return MemberInfo{ID: id, Data: doc, Stat: node.stat}, nil
}
