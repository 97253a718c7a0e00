package zkgroup

import (
	"github.com/luno/jettison"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

var (
	// ErrTimeout is returned when an operation's deadline elapses before the
	// underlying ZooKeeper call completes.
	ErrTimeout = errors.New("operation timed out", j.C("ERR_cf32cbf54d1f7a63"))

	// ErrIllegalMemberID is returned when a member id contains the path
	// separator and so cannot be used as a node name.
	ErrIllegalMemberID = errors.New("illegal member id", j.C("ERR_9b0937a237a61a11"))

	// ErrSetupFailed is returned when the group path could not be created.
	ErrSetupFailed = errors.New("group setup failed", j.C("ERR_0f3c8d9a51e24c70"))

	// ErrRegistrationFailed is returned when the member node could not be
	// created, for example when the id collides with a live member.
	ErrRegistrationFailed = errors.New("member registration failed", j.C("ERR_6a81de29f57f3b44"))

	// ErrMembersUnavailable is returned when the membership list could not
	// be fetched.
	ErrMembersUnavailable = errors.New("members unavailable", j.C("ERR_e2f41c02e9a4d8c5"))

	// ErrMemberDataUnavailable is returned when a member's data could not be
	// fetched or decoded.
	ErrMemberDataUnavailable = errors.New("member data unavailable", j.C("ERR_7d65f00b8c1e49a2"))

	// ErrDisconnected is emitted by Monitor when the ZooKeeper session
	// reports any state other than fully connected.
	ErrDisconnected = errors.New("zookeeper disconnected", j.C("ERR_3a9e6b74dd02c1f8"))
)

// wrapKind annotates one of the sentinel error kinds above with the
// underlying cause, keeping errors.Is matching on the kind.
func wrapKind(kind, cause error, ol ...jettison.Option) error {
	ol = append(ol, j.KS("cause", cause.Error()))
	return errors.Wrap(kind, "", ol...)
}
