package kex

import (
	"bytes"
	"fmt"

	"github.com/cvsouth/mtproto-go/tl"
)

// Wire constructor ids for the four-message DH handshake (spec §4.3).
// These are manually-shaped TL entities, like envelope's
// MessageContainer/MsgsAck, rather than generated from a .tl schema —
// the handshake predates a schema-registered auth key and so cannot
// depend on a registry that in turn depends on one.
const (
	idReqPQ             tl.ConstructorID = 0x60469778
	idResPQ             tl.ConstructorID = 0x05162463
	idPQInnerData       tl.ConstructorID = 0x83c95aec
	idReqDHParams       tl.ConstructorID = 0xd712e4be
	idServerDHParamsOK  tl.ConstructorID = 0xd0e8075c
	idServerDHInnerData tl.ConstructorID = 0xb5890dba
	idClientDHInnerData tl.ConstructorID = 0x6643b654
	idSetClientDHParams tl.ConstructorID = 0xf5045f1f
	idDHGenOK           tl.ConstructorID = 0x3bcbf734
	idDHGenRetry        tl.ConstructorID = 0x46dc1fb9
	idDHGenFail         tl.ConstructorID = 0xa69dae02
)

type reqPQ struct {
	Nonce [16]byte
}

func (m *reqPQ) marshal() []byte {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	_ = w.WriteConstructorID(idReqPQ)
	_ = w.WriteInt128(m.Nonce)
	return buf.Bytes()
}

type resPQ struct {
	Nonce                       [16]byte
	ServerNonce                 [16]byte
	PQ                          []byte
	ServerPublicKeyFingerprints []int64
}

func unmarshalResPQ(data []byte) (*resPQ, error) {
	r := tl.NewReader(bytes.NewReader(data))
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != idResPQ {
		return nil, &tl.InvalidTypeError{Expected: []tl.ConstructorID{idResPQ}, Got: id}
	}
	m := &resPQ{}
	if m.Nonce, err = r.ReadInt128(); err != nil {
		return nil, fmt.Errorf("kex: resPQ nonce: %w", err)
	}
	if m.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, fmt.Errorf("kex: resPQ server_nonce: %w", err)
	}
	if m.PQ, err = r.ReadBytes(); err != nil {
		return nil, fmt.Errorf("kex: resPQ pq: %w", err)
	}
	decode := func(r *tl.Reader) (int64, error) { return r.ReadInt64() }
	if m.ServerPublicKeyFingerprints, err = tl.ReadBoxedVector(r, decode); err != nil {
		return nil, fmt.Errorf("kex: resPQ fingerprints: %w", err)
	}
	return m, nil
}

type pqInnerData struct {
	PQ          []byte
	P           []byte
	Q           []byte
	Nonce       [16]byte
	ServerNonce [16]byte
	NewNonce    [32]byte
}

func (m *pqInnerData) marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	if err := w.WriteConstructorID(idPQInnerData); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(m.PQ); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(m.P); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(m.Q); err != nil {
		return nil, err
	}
	if err := w.WriteInt128(m.Nonce); err != nil {
		return nil, err
	}
	if err := w.WriteInt128(m.ServerNonce); err != nil {
		return nil, err
	}
	if err := w.WriteInt256(m.NewNonce); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type reqDHParams struct {
	Nonce                [16]byte
	ServerNonce          [16]byte
	P                    []byte
	Q                    []byte
	PublicKeyFingerprint int64
	EncryptedData        []byte
}

func (m *reqDHParams) marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	if err := w.WriteConstructorID(idReqDHParams); err != nil {
		return nil, err
	}
	if err := w.WriteInt128(m.Nonce); err != nil {
		return nil, err
	}
	if err := w.WriteInt128(m.ServerNonce); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(m.P); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(m.Q); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(m.PublicKeyFingerprint); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(m.EncryptedData); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type serverDHParamsOK struct {
	Nonce           [16]byte
	ServerNonce     [16]byte
	EncryptedAnswer []byte
}

func unmarshalServerDHParamsOK(data []byte) (*serverDHParamsOK, error) {
	r := tl.NewReader(bytes.NewReader(data))
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != idServerDHParamsOK {
		return nil, &tl.InvalidTypeError{Expected: []tl.ConstructorID{idServerDHParamsOK}, Got: id}
	}
	m := &serverDHParamsOK{}
	if m.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if m.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if m.EncryptedAnswer, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return m, nil
}

type serverDHInnerData struct {
	Nonce       [16]byte
	ServerNonce [16]byte
	G           int32
	DHPrime     []byte
	GA          []byte
	ServerTime  int32

	wireLen int // bytes of data the encoded inner data occupied
}

func unmarshalServerDHInnerData(data []byte) (*serverDHInnerData, error) {
	br := bytes.NewReader(data)
	r := tl.NewReader(br)
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != idServerDHInnerData {
		return nil, &tl.InvalidTypeError{Expected: []tl.ConstructorID{idServerDHInnerData}, Got: id}
	}
	m := &serverDHInnerData{}
	if m.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if m.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if m.G, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.DHPrime, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if m.GA, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if m.ServerTime, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	m.wireLen = len(data) - br.Len()
	return m, nil
}

type clientDHInnerData struct {
	Nonce       [16]byte
	ServerNonce [16]byte
	RetryID     int64
	GB          []byte
}

func (m *clientDHInnerData) marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	if err := w.WriteConstructorID(idClientDHInnerData); err != nil {
		return nil, err
	}
	if err := w.WriteInt128(m.Nonce); err != nil {
		return nil, err
	}
	if err := w.WriteInt128(m.ServerNonce); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(m.RetryID); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(m.GB); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type setClientDHParams struct {
	Nonce         [16]byte
	ServerNonce   [16]byte
	EncryptedData []byte
}

func (m *setClientDHParams) marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	if err := w.WriteConstructorID(idSetClientDHParams); err != nil {
		return nil, err
	}
	if err := w.WriteInt128(m.Nonce); err != nil {
		return nil, err
	}
	if err := w.WriteInt128(m.ServerNonce); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(m.EncryptedData); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dhGenResult is the decoded form of whichever of dh_gen_ok /
// dh_gen_retry / dh_gen_fail the server returned (spec §4.3 transition
// 4).
type dhGenResult struct {
	Variant     tl.ConstructorID
	Nonce       [16]byte
	ServerNonce [16]byte
	NewNonceHash [16]byte
}

func unmarshalDHGenResult(data []byte) (*dhGenResult, error) {
	r := tl.NewReader(bytes.NewReader(data))
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	switch id {
	case idDHGenOK, idDHGenRetry, idDHGenFail:
	default:
		return nil, &tl.InvalidTypeError{Expected: []tl.ConstructorID{idDHGenOK, idDHGenRetry, idDHGenFail}, Got: id}
	}
	m := &dhGenResult{Variant: id}
	if m.Nonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if m.ServerNonce, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	if m.NewNonceHash, err = r.ReadInt128(); err != nil {
		return nil, err
	}
	return m, nil
}
