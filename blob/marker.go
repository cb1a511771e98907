package blob

import (
	"encoding/binary"
	"fmt"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

// Markers are single field elements that carry a fixed byte tag packed
// together with small integer counts. A reader scanning a flat field
// sequence recognizes them by tag plus a mandatory zero span, so a random
// field is misidentified as a marker with probability around 2^-112.
//
// Transaction-start marker layout (32-byte big-endian image):
//
//	b[0:2]   tag "TX"
//	b[2:14]  zero (checked on decode)
//	b[14:32] nine 16-bit counts: total fields, note hashes, nullifiers,
//	         L2-to-L1 messages, public data writes, private logs,
//	         private log data length, public log length,
//	         contract-class log length
//
// Block-end marker layout:
//
//	b[0:2]   tag "BK"
//	b[2:12]  zero (checked on decode)
//	b[12:16] 32-bit block number
//	b[16:24] 64-bit timestamp
//	b[24:28] zero (checked on decode)
//	b[28:32] 32-bit transaction count
//
// Both tags start below the top byte of the scalar modulus, so every encoded
// marker is a canonical field element.

// TxStartMarker declares, for the transaction slice that follows it, exactly
// how many subsequent fields belong to the transaction and how they split
// across effect categories.
type TxStartMarker struct {
	TotalFields            int
	NumNoteHashes          int
	NumNullifiers          int
	NumL2ToL1Msgs          int
	NumPublicDataWrites    int
	NumPrivateLogs         int
	PrivateLogsLength      int
	PublicLogsLength       int
	ContractClassLogLength int
}

// NewTxStartMarker validates every packed sub-field against its 16-bit
// width. Out-of-range values are rejected here, at construction, not at
// encode time.
func NewTxStartMarker(totalFields, noteHashes, nullifiers, l2ToL1, publicDataWrites,
	privateLogs, privateLogsLen, publicLogsLen, contractClassLogLen int) (TxStartMarker, error) {
	m := TxStartMarker{
		TotalFields:            totalFields,
		NumNoteHashes:          noteHashes,
		NumNullifiers:          nullifiers,
		NumL2ToL1Msgs:          l2ToL1,
		NumPublicDataWrites:    publicDataWrites,
		NumPrivateLogs:         privateLogs,
		PrivateLogsLength:      privateLogsLen,
		PublicLogsLength:       publicLogsLen,
		ContractClassLogLength: contractClassLogLen,
	}
	for _, sub := range []struct {
		name string
		v    int
	}{
		{"total fields", m.TotalFields},
		{"note hashes", m.NumNoteHashes},
		{"nullifiers", m.NumNullifiers},
		{"l2-to-l1 messages", m.NumL2ToL1Msgs},
		{"public data writes", m.NumPublicDataWrites},
		{"private logs", m.NumPrivateLogs},
		{"private logs length", m.PrivateLogsLength},
		{"public logs length", m.PublicLogsLength},
		{"contract class log length", m.ContractClassLogLength},
	} {
		if sub.v < 0 || sub.v > types.MaxTxMarkerCount {
			return TxStartMarker{}, fmt.Errorf("blob: tx start marker %s %d exceeds 16-bit width", sub.name, sub.v)
		}
	}
	return m, nil
}

// Encode packs the marker into a single field element.
func (m TxStartMarker) Encode() fields.Field {
	var b [32]byte
	binary.BigEndian.PutUint16(b[0:2], types.TxStartTag)
	binary.BigEndian.PutUint16(b[14:16], uint16(m.TotalFields))
	binary.BigEndian.PutUint16(b[16:18], uint16(m.NumNoteHashes))
	binary.BigEndian.PutUint16(b[18:20], uint16(m.NumNullifiers))
	binary.BigEndian.PutUint16(b[20:22], uint16(m.NumL2ToL1Msgs))
	binary.BigEndian.PutUint16(b[22:24], uint16(m.NumPublicDataWrites))
	binary.BigEndian.PutUint16(b[24:26], uint16(m.NumPrivateLogs))
	binary.BigEndian.PutUint16(b[26:28], uint16(m.PrivateLogsLength))
	binary.BigEndian.PutUint16(b[28:30], uint16(m.PublicLogsLength))
	binary.BigEndian.PutUint16(b[30:32], uint16(m.ContractClassLogLength))

	// The tag byte keeps the value below the scalar modulus.
	f, _ := fields.NewFromBytes(b[:])
	return f
}

// DecodeTxStartMarker unpacks a transaction-start marker, failing with a
// DeserializationError when the tag or the zero span does not validate.
func DecodeTxStartMarker(f fields.Field) (TxStartMarker, error) {
	b := f.Bytes()
	if binary.BigEndian.Uint16(b[0:2]) != types.TxStartTag {
		return TxStartMarker{}, deserErr("tx start marker tag", int(types.TxStartTag), int(binary.BigEndian.Uint16(b[0:2])))
	}
	for i := 2; i < 14; i++ {
		if b[i] != 0 {
			return TxStartMarker{}, deserErr("tx start marker zero span", 0, int(b[i]))
		}
	}
	return TxStartMarker{
		TotalFields:            int(binary.BigEndian.Uint16(b[14:16])),
		NumNoteHashes:          int(binary.BigEndian.Uint16(b[16:18])),
		NumNullifiers:          int(binary.BigEndian.Uint16(b[18:20])),
		NumL2ToL1Msgs:          int(binary.BigEndian.Uint16(b[20:22])),
		NumPublicDataWrites:    int(binary.BigEndian.Uint16(b[22:24])),
		NumPrivateLogs:         int(binary.BigEndian.Uint16(b[24:26])),
		PrivateLogsLength:      int(binary.BigEndian.Uint16(b[26:28])),
		PublicLogsLength:       int(binary.BigEndian.Uint16(b[28:30])),
		ContractClassLogLength: int(binary.BigEndian.Uint16(b[30:32])),
	}, nil
}

// IsTxStartMarker reports whether f validates as a transaction-start marker.
// This is a format self-check, not an optimization: decoders rely on it to
// reject wrong offsets in arbitrary data.
func IsTxStartMarker(f fields.Field) bool {
	_, err := DecodeTxStartMarker(f)
	return err == nil
}

// BlockEndMarker declares block number, timestamp and transaction count, and
// terminates a block's slice of a checkpoint's field sequence.
type BlockEndMarker struct {
	BlockNumber uint64
	Timestamp   uint64
	NumTxs      int
}

// NewBlockEndMarker validates the packed sub-fields: 32 bits for the block
// number and transaction count, 64 bits for the timestamp.
func NewBlockEndMarker(blockNumber, timestamp uint64, numTxs int) (BlockEndMarker, error) {
	if blockNumber > types.MaxBlockNumber {
		return BlockEndMarker{}, fmt.Errorf("blob: block number %d exceeds 32-bit width", blockNumber)
	}
	if numTxs < 0 || numTxs > types.MaxTxsPerBlock {
		return BlockEndMarker{}, fmt.Errorf("blob: tx count %d exceeds 32-bit width", numTxs)
	}
	return BlockEndMarker{BlockNumber: blockNumber, Timestamp: timestamp, NumTxs: numTxs}, nil
}

// Encode packs the marker into a single field element.
func (m BlockEndMarker) Encode() fields.Field {
	var b [32]byte
	binary.BigEndian.PutUint16(b[0:2], types.BlockEndTag)
	binary.BigEndian.PutUint32(b[12:16], uint32(m.BlockNumber))
	binary.BigEndian.PutUint64(b[16:24], m.Timestamp)
	binary.BigEndian.PutUint32(b[28:32], uint32(m.NumTxs))

	f, _ := fields.NewFromBytes(b[:])
	return f
}

// DecodeBlockEndMarker unpacks a block-end marker, failing with a
// DeserializationError when the tag or either zero span does not validate.
func DecodeBlockEndMarker(f fields.Field) (BlockEndMarker, error) {
	b := f.Bytes()
	if binary.BigEndian.Uint16(b[0:2]) != types.BlockEndTag {
		return BlockEndMarker{}, deserErr("block end marker tag", int(types.BlockEndTag), int(binary.BigEndian.Uint16(b[0:2])))
	}
	for i := 2; i < 12; i++ {
		if b[i] != 0 {
			return BlockEndMarker{}, deserErr("block end marker zero span", 0, int(b[i]))
		}
	}
	for i := 24; i < 28; i++ {
		if b[i] != 0 {
			return BlockEndMarker{}, deserErr("block end marker zero span", 0, int(b[i]))
		}
	}
	return BlockEndMarker{
		BlockNumber: uint64(binary.BigEndian.Uint32(b[12:16])),
		Timestamp:   binary.BigEndian.Uint64(b[16:24]),
		NumTxs:      int(binary.BigEndian.Uint32(b[28:32])),
	}, nil
}

// IsBlockEndMarker reports whether f validates as a block-end marker.
func IsBlockEndMarker(f fields.Field) bool {
	_, err := DecodeBlockEndMarker(f)
	return err == nil
}
