package tl

// ConstructorID is the 32-bit tag identifying a boxed TL variant (spec §3).
type ConstructorID uint32

// Constructor IDs for the handful of types the codec itself understands,
// independent of any generated schema (spec §4.1).
const (
	idBoolTrue  ConstructorID = 0x997275b5
	idBoolFalse ConstructorID = 0xbc799737
	idTrueType  ConstructorID = 0x3fedd339
	idNullType  ConstructorID = 0x56730bcc
	idVector    ConstructorID = 0x1cb5c415
)

// MTProtoLayer is the schema version this codec targets (spec §6).
const MTProtoLayer = 23
