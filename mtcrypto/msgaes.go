package mtcrypto

import "github.com/cvsouth/mtproto-go/authkey"

// DeriveMessageAESParams derives the 256-bit AES key and 256-bit IV
// used to encrypt or decrypt one message, from the auth key and that
// message's 128-bit message_key (spec §4.2 AES parameters for message
// encryption). decrypt selects pos=8 instead of pos=0, per the
// direction-dependent offset into the key.
func DeriveMessageAESParams(key *authkey.AuthKey, msgKey [16]byte, decrypt bool) (aesKey, aesIV [32]byte) {
	pos := 0
	if decrypt {
		pos = 8
	}
	k := key.Bytes()

	shaA := SHA1Bytes(msgKey[:], k[pos:pos+32])
	shaB := SHA1Bytes(k[pos+32:pos+48], msgKey[:], k[pos+48:pos+64])
	shaC := SHA1Bytes(k[pos+64:pos+96], msgKey[:])
	shaD := SHA1Bytes(msgKey[:], k[pos+96:pos+128])

	copy(aesKey[0:8], shaA[0:8])
	copy(aesKey[8:20], shaB[8:20])
	copy(aesKey[20:32], shaC[4:16])

	copy(aesIV[0:12], shaA[8:20])
	copy(aesIV[12:20], shaB[0:8])
	copy(aesIV[20:24], shaC[16:20])
	copy(aesIV[24:32], shaD[0:8])

	return aesKey, aesIV
}
