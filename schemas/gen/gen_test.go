package gen

import (
	"bytes"
	"testing"

	"github.com/cvsouth/mtproto-go/tl"
)

func TestRegistryRoundTripsGeneratedConstructors(t *testing.T) {
	reg := tl.NewRegistry()
	RegisterAll(reg)

	ping := &Ping{PingId: 0x1122334455667788}
	data, err := ping.MarshalTL()
	if err != nil {
		t.Fatalf("MarshalTL: %v", err)
	}

	obj, err := reg.Decode(tl.NewReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := obj.(*Ping)
	if !ok {
		t.Fatalf("decoded type %T, want *Ping", obj)
	}
	if got.PingId != ping.PingId {
		t.Fatalf("PingId = %#x, want %#x", got.PingId, ping.PingId)
	}
}

func TestRegistryDispatchesAllConstructors(t *testing.T) {
	reg := tl.NewRegistry()
	RegisterAll(reg)

	cases := []tl.Object{
		&PeerUser{UserId: 7},
		&PeerChat{ChatId: 9},
		&UserStatusEmpty{},
		&UserStatusOnline{ExpiresAt: 100},
		&Pong{MsgId: 1, PingId: 2},
		&GeoPoint{Lat: 1.5, Long: -2.5},
	}
	type marshaler interface {
		MarshalTL() ([]byte, error)
	}
	for _, c := range cases {
		m := c.(marshaler)
		data, err := m.MarshalTL()
		if err != nil {
			t.Fatalf("MarshalTL(%T): %v", c, err)
		}
		obj, err := reg.Decode(tl.NewReader(bytes.NewReader(data)))
		if err != nil {
			t.Fatalf("Decode(%T): %v", c, err)
		}
		if obj.ConstructorID() != c.ConstructorID() {
			t.Fatalf("round trip %T: constructor id mismatch", c)
		}
	}
}

// TestNestedEntityFieldsRoundTrip exercises a constructor whose fields
// themselves reference other generated entities: a Dynamic field
// (from_id, which may be either PeerUser or PeerChat), a single-shape
// pointer field (location), and a vector of a Dynamic type
// (participants). Before the registry was threaded through every
// unmarshal function, this case could not be decoded at all.
func TestNestedEntityFieldsRoundTrip(t *testing.T) {
	reg := tl.NewRegistry()
	RegisterAll(reg)

	msg := &Message{
		FromId:   &PeerUser{UserId: 42},
		Location: &GeoPoint{Lat: 37.0, Long: -122.0},
		Participants: []tl.Object{
			&PeerUser{UserId: 42},
			&PeerChat{ChatId: 100},
		},
		Text: "hello",
	}

	data, err := msg.MarshalTL()
	if err != nil {
		t.Fatalf("MarshalTL: %v", err)
	}

	obj, err := reg.Decode(tl.NewReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := obj.(*Message)
	if !ok {
		t.Fatalf("decoded type %T, want *Message", obj)
	}

	fromID, ok := got.FromId.(*PeerUser)
	if !ok || fromID.UserId != 42 {
		t.Fatalf("FromId = %#v, want *PeerUser{UserId: 42}", got.FromId)
	}
	if got.Location == nil || got.Location.Lat != 37.0 || got.Location.Long != -122.0 {
		t.Fatalf("Location = %#v, want {37.0 -122.0}", got.Location)
	}
	if len(got.Participants) != 2 {
		t.Fatalf("Participants = %d entries, want 2", len(got.Participants))
	}
	p0, ok := got.Participants[0].(*PeerUser)
	if !ok || p0.UserId != 42 {
		t.Fatalf("Participants[0] = %#v, want *PeerUser{UserId: 42}", got.Participants[0])
	}
	p1, ok := got.Participants[1].(*PeerChat)
	if !ok || p1.ChatId != 100 {
		t.Fatalf("Participants[1] = %#v, want *PeerChat{ChatId: 100}", got.Participants[1])
	}
	if got.Text != "hello" {
		t.Fatalf("Text = %q, want %q", got.Text, "hello")
	}
}

// TestNestedEntityFieldRequiresNonNil checks the write-side guard: a
// required Dynamic field left nil fails to marshal instead of
// panicking or silently writing nothing.
func TestNestedEntityFieldRequiresNonNil(t *testing.T) {
	msg := &Message{Location: &GeoPoint{}, Text: "x"}
	if _, err := msg.MarshalTL(); err == nil {
		t.Fatal("expected an error when FromId is nil")
	}
}
