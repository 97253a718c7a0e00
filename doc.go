// Package zkgroup provides distributed group membership using ZooKeeper.
//
// A Group represents a logical set of cooperating processes rooted at a path in the ZooKeeper tree.
// Each member registers an ephemeral child node under the group path, so membership is tied to the
// liveness of the member's ZooKeeper session: when a session ends, ZooKeeper removes the node and
// the member leaves the group.
//
// Setup creates the group path idempotently, Register joins the group with a generated or supplied
// identity and an arbitrary JSON document, and Members reads the authoritative membership set.
//
// Monitor installs a self re-arming one-shot child watch on the group path and streams a
// MembersEvent for the initial snapshot and for every subsequent structural change, plus
// ErrorEvents when fetches fail or the session loses its connection. ZooKeeper watches fire once,
// so each fetch re-arms the next watch; changes that land while a fetch is in flight are coalesced
// into the next snapshot.
//
// All remote operations are bounded by configurable timeouts. A timed out operation fails with
// ErrTimeout and any late result from the underlying call is discarded.
//
// PickMember consistently hashes a key onto one member of a snapshot, supporting shard assignment
// across the group.
package zkgroup
