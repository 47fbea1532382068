// Package session implements the session state machine: message-id
// generation, sequence-number policy, the server-salt store, ack
// batching, and encrypted-message assembly (spec §3 Session, §4.4).
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cvsouth/mtproto-go/authkey"
	"github.com/cvsouth/mtproto-go/envelope"
)

// ErrNoSalts is returned by LatestServerSalt when the session holds no
// salt at all; an expired last salt is still returned (spec §4.4, §7).
var ErrNoSalts = errors.New("session: no usable server salt")

// ErrNoAuthKey is returned by CreateEncryptedMessage before a key
// exchange has completed (spec §7).
var ErrNoAuthKey = errors.New("session: no auth key adopted yet")

// AppInfo is the application's read-only identification passed to the
// server during session init (spec §3 Session, §6 Inputs to the core).
// It is the core's only configuration surface; loading it from a file
// is the caller's concern, not this package's (spec.md Non-goals).
type AppInfo struct {
	APIID   int32
	APIHash string
}

// Salt is a server-issued value bound to a validity window (spec §3
// Salt).
type Salt struct {
	ValidSince time.Time
	ValidUntil time.Time
	Salt       int64
}

// Session is the mutable state tied to one (device, user) pair (spec
// §3 Session). It is single-owner: mutated only by its owning task
// (spec §5); the mutex exists so a caller that does serialize access
// via a lock has a safe primitive to hold, matching the teacher's
// circuit.Circuit, which guards its own mutable state with a mutex
// even though circuits are likewise single-owner in steady state.
type Session struct {
	mu sync.Mutex

	sessionID int64
	appInfo   AppInfo

	salts  []Salt
	seqNo  int32
	toAck  map[int64]struct{}
	authKey *authkey.AuthKey

	lastMsgID int64
}

// New creates a session with a fresh random session id and the given
// app info (spec §3 Lifecycle: "a session is created with an id and
// app info").
func New(appInfo AppInfo) (*Session, error) {
	sessionID, err := envelope.RandomSessionID()
	if err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}
	return &Session{
		sessionID: sessionID,
		appInfo:   appInfo,
		toAck:     make(map[int64]struct{}),
	}, nil
}

// SessionID returns the session's immutable random identifier.
func (s *Session) SessionID() int64 {
	return s.sessionID
}

// AppInfo returns the session's read-only app identification.
func (s *Session) AppInfo() AppInfo {
	return s.appInfo
}

// AdoptKey installs the auth key derived by a completed key exchange.
// Once adopted, the key is logically immutable and safe for concurrent
// readers (spec §5 Shared resources).
func (s *Session) AdoptKey(key *authkey.AuthKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authKey = key
}

// AuthKey returns the currently adopted key, or nil if none has been
// adopted.
func (s *Session) AuthKey() *authkey.AuthKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authKey
}

// NextMessageID returns the next message id: (unix_seconds << 32) |
// (nanos & 0xFFFF_FFFC), bumping the low bits on collision with the
// previous value to guarantee strict monotonicity (spec §4.4
// Message-id generation).
func (s *Session) NextMessageID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextMessageIDLocked()
}

func (s *Session) nextMessageIDLocked() int64 {
	now := time.Now()
	id := (int64(now.Unix()) << 32) | (int64(now.Nanosecond()) & 0xFFFFFFFC)
	if id <= s.lastMsgID {
		id = s.lastMsgID + 4
	}
	s.lastMsgID = id
	return id
}

// NextSeqNo returns the sequence number for an outgoing message and
// advances the counter. Content messages get seq_no|1 and advance by
// 2; non-content messages (pure acks, pongs) use the current counter
// unshifted and do not advance it (spec §4.4 Sequence numbers).
func (s *Session) NextSeqNo(content bool) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSeqNoLocked(content)
}

func (s *Session) nextSeqNoLocked(content bool) int32 {
	if !content {
		return s.seqNo
	}
	n := s.seqNo | 1
	s.seqNo += 2
	return n
}

// AddSalt appends a server-issued salt to the ordered salt sequence
// (spec §3 Salt).
func (s *Session) AddSalt(salt Salt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salts = append(s.salts, salt)
}

// LatestServerSalt returns the salt whose interval covers
// min(now, last.valid_until), dropping expired salts and keeping at
// least one (spec §4.4 Salt selection).
func (s *Session) LatestServerSalt() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.salts) == 0 {
		return 0, ErrNoSalts
	}

	now := time.Now()
	last := s.salts[len(s.salts)-1]
	cutoff := now
	if last.ValidUntil.Before(cutoff) {
		cutoff = last.ValidUntil
	}

	// Drop salts that expired before cutoff, but always keep the last
	// one so the session never goes saltless.
	kept := make([]Salt, 0, len(s.salts))
	for i, salt := range s.salts {
		if salt.ValidUntil.Before(cutoff) && i != len(s.salts)-1 {
			continue
		}
		kept = append(kept, salt)
	}
	s.salts = kept

	// Among the survivors, prefer the one whose window actually covers
	// cutoff; fall back to the most recent.
	chosen := s.salts[len(s.salts)-1]
	for _, salt := range s.salts {
		if !salt.ValidSince.After(cutoff) && salt.ValidUntil.After(cutoff) {
			chosen = salt
			break
		}
	}
	return chosen.Salt, nil
}

// AckID records a server message id awaiting acknowledgement (spec
// §4.4 Ack batching).
func (s *Session) AckID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toAck[id] = struct{}{}
}

func (s *Session) drainAckLocked() []int64 {
	if len(s.toAck) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(s.toAck))
	for id := range s.toAck {
		ids = append(ids, id)
	}
	s.toAck = make(map[int64]struct{})
	return ids
}
