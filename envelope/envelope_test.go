package envelope

import (
	"bytes"
	"testing"

	"github.com/cvsouth/mtproto-go/authkey"
)

func TestPlainRoundTrip(t *testing.T) {
	for _, body := range [][]byte{{}, []byte("hello"), bytes.Repeat([]byte{0xaa}, 1000)} {
		frame := EncodePlain(123456789, body)
		msgID, gotBody, err := DecodePlain(frame)
		if err != nil {
			t.Fatalf("DecodePlain: %v", err)
		}
		if msgID != 123456789 {
			t.Fatalf("msgID = %d, want 123456789", msgID)
		}
		if !bytes.Equal(gotBody, body) {
			t.Fatalf("body round trip mismatch for len %d", len(body))
		}
	}
}

func TestDecodePlainRejectsNonZeroAuthKeyID(t *testing.T) {
	frame := EncodePlain(1, []byte("x"))
	frame[0] = 1
	if _, _, err := DecodePlain(frame); err == nil {
		t.Fatal("expected error for non-zero auth_key_id")
	}
}

func testAuthKey(t *testing.T) *authkey.AuthKey {
	t.Helper()
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(0xf0 - i%256)
	}
	k, err := authkey.New(raw)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testAuthKey(t)
	dd := &DecryptedData{
		Salt:      int64(0x1234567890ABCDEF),
		SessionID: 42,
		MessageID: 99999,
		SeqNo:     1,
		Body:      []byte{23, 0, 0, 0},
	}
	plaintext, err := dd.MarshalTL()
	if err != nil {
		t.Fatalf("MarshalTL: %v", err)
	}

	authKeyID, msgKey, ciphertext, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if authKeyID != key.Fingerprint() {
		t.Fatal("authKeyID does not match key fingerprint")
	}

	decodedPlain, err := Decrypt(key, authKeyID, msgKey, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if err := VerifyMessageKey(decodedPlain, msgKey); err != nil {
		t.Fatalf("VerifyMessageKey: %v", err)
	}

	gotDD, err := UnmarshalDecryptedData(decodedPlain)
	if err != nil {
		t.Fatalf("UnmarshalDecryptedData: %v", err)
	}
	if gotDD.Salt != dd.Salt || gotDD.SessionID != dd.SessionID || gotDD.MessageID != dd.MessageID || gotDD.SeqNo != dd.SeqNo {
		t.Fatalf("round trip mismatch: got %+v, want %+v", gotDD, dd)
	}
	if !bytes.Equal(gotDD.Body, dd.Body) {
		t.Fatalf("body round trip mismatch: got %v, want %v", gotDD.Body, dd.Body)
	}
}

func TestDecryptRejectsWrongFingerprint(t *testing.T) {
	key := testAuthKey(t)
	dd := &DecryptedData{Salt: 1, SessionID: 1, MessageID: 1, SeqNo: 1, Body: []byte("x")}
	plaintext, _ := dd.MarshalTL()
	_, msgKey, ciphertext, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decrypt(key, 0, msgKey, ciphertext); err == nil {
		t.Fatal("expected ErrWrongFingerprint")
	}
}

func TestMessageContainerRoundTrip(t *testing.T) {
	c := &MessageContainer{Messages: []ContainedMessage{
		{MsgID: 1, SeqNo: 1, Body: []byte("one")},
		{MsgID: 2, SeqNo: 3, Body: []byte("two")},
	}}
	data, err := c.MarshalTL()
	if err != nil {
		t.Fatalf("MarshalTL: %v", err)
	}
	got, err := UnmarshalMessageContainer(data)
	if err != nil {
		t.Fatalf("UnmarshalMessageContainer: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	for i, m := range got.Messages {
		if m.MsgID != c.Messages[i].MsgID || m.SeqNo != c.Messages[i].SeqNo || !bytes.Equal(m.Body, c.Messages[i].Body) {
			t.Fatalf("message %d mismatch: got %+v, want %+v", i, m, c.Messages[i])
		}
	}
}

func TestMsgsAckRoundTrip(t *testing.T) {
	a := &MsgsAck{MsgIDs: []int64{10, 20, 30}}
	data, err := a.MarshalTL()
	if err != nil {
		t.Fatalf("MarshalTL: %v", err)
	}
	got, err := UnmarshalMsgsAck(data)
	if err != nil {
		t.Fatalf("UnmarshalMsgsAck: %v", err)
	}
	if len(got.MsgIDs) != 3 {
		t.Fatalf("got %d ids, want 3", len(got.MsgIDs))
	}
	for i, id := range got.MsgIDs {
		if id != a.MsgIDs[i] {
			t.Fatalf("id %d: got %d, want %d", i, id, a.MsgIDs[i])
		}
	}
}
