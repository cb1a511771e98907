package blob

import (
	"fmt"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

// Transaction wire layout, in order:
//
//	tx-start marker, tx hash, fee,
//	note hashes, nullifiers, L2-to-L1 messages,
//	(leaf slot, value) per public data write,
//	(length, data...) per private log,
//	public log fields,
//	contract-class log fields, contract address (only when that log is
//	non-empty).

// TxStartMarkerFor builds the validated transaction-start marker describing
// tx, including the total field count of its encoding.
func TxStartMarkerFor(tx *types.TxEffect) (TxStartMarker, error) {
	m, err := NewTxStartMarker(
		0,
		len(tx.NoteHashes),
		len(tx.Nullifiers),
		len(tx.L2ToL1Msgs),
		len(tx.PublicDataWrites),
		len(tx.PrivateLogs),
		tx.PrivateLogsLength(),
		len(tx.PublicLogFields),
		len(tx.ContractClassLogFields),
	)
	if err != nil {
		return TxStartMarker{}, err
	}
	total := NumTxBlobFields(m)
	if total > types.MaxTxMarkerCount {
		return TxStartMarker{}, fmt.Errorf("blob: tx encoding of %d fields exceeds marker width", total)
	}
	m.TotalFields = total
	return m, nil
}

// NumTxBlobFields computes the exact number of fields a transaction occupies
// from its marker counts: marker, tx hash and fee, then each effect category,
// with two fields per public data write, one length field per private log,
// and one extra contract-address field only when a contract-class log is
// present.
func NumTxBlobFields(m TxStartMarker) int {
	n := 3 +
		m.NumNoteHashes +
		m.NumNullifiers +
		m.NumL2ToL1Msgs +
		2*m.NumPublicDataWrites +
		m.NumPrivateLogs +
		m.PrivateLogsLength +
		m.PublicLogsLength +
		m.ContractClassLogLength
	if m.ContractClassLogLength > 0 {
		n++
	}
	return n
}

// EncodeTxEffect serializes one transaction's effects into its flat field
// slice, prefixed by the self-describing marker.
func EncodeTxEffect(tx *types.TxEffect) ([]fields.Field, error) {
	m, err := TxStartMarkerFor(tx)
	if err != nil {
		return nil, err
	}

	fee, err := fields.NewFromUint256(tx.Fee())
	if err != nil {
		return nil, fmt.Errorf("blob: transaction fee: %w", err)
	}

	out := make([]fields.Field, 0, m.TotalFields)
	out = append(out, m.Encode(), tx.TxHash, fee)
	out = append(out, tx.NoteHashes...)
	out = append(out, tx.Nullifiers...)
	out = append(out, tx.L2ToL1Msgs...)
	for _, w := range tx.PublicDataWrites {
		out = append(out, w.LeafSlot, w.Value)
	}
	for _, l := range tx.PrivateLogs {
		out = append(out, fields.NewFromUint64(uint64(len(l))))
		out = append(out, l...)
	}
	out = append(out, tx.PublicLogFields...)
	out = append(out, tx.ContractClassLogFields...)
	if len(tx.ContractClassLogFields) > 0 {
		out = append(out, tx.ContractClassLogAddress)
	}

	if len(out) != m.TotalFields {
		return nil, fmt.Errorf("blob: tx encoding produced %d fields, marker declares %d", len(out), m.TotalFields)
	}
	return out, nil
}

// DecodeTxEffect reads one transaction slice from r, validating that exactly
// the marker-declared number of fields is consumed.
func DecodeTxEffect(r *FieldReader) (*types.TxEffect, error) {
	start := r.Pos()

	markerField, err := r.Next()
	if err != nil {
		return nil, err
	}
	m, err := DecodeTxStartMarker(markerField)
	if err != nil {
		return nil, err
	}

	tx := &types.TxEffect{}
	if tx.TxHash, err = r.Next(); err != nil {
		return nil, err
	}
	feeField, err := r.Next()
	if err != nil {
		return nil, err
	}
	tx.TransactionFee = fields.ToUint256(feeField)

	if tx.NoteHashes, err = r.Take(m.NumNoteHashes); err != nil {
		return nil, err
	}
	if tx.Nullifiers, err = r.Take(m.NumNullifiers); err != nil {
		return nil, err
	}
	if tx.L2ToL1Msgs, err = r.Take(m.NumL2ToL1Msgs); err != nil {
		return nil, err
	}

	if m.NumPublicDataWrites > 0 {
		tx.PublicDataWrites = make([]types.PublicDataWrite, m.NumPublicDataWrites)
	}
	for i := range tx.PublicDataWrites {
		if tx.PublicDataWrites[i].LeafSlot, err = r.Next(); err != nil {
			return nil, err
		}
		if tx.PublicDataWrites[i].Value, err = r.Next(); err != nil {
			return nil, err
		}
	}

	if m.NumPrivateLogs > 0 {
		tx.PrivateLogs = make([][]fields.Field, m.NumPrivateLogs)
	}
	logsLen := 0
	for i := range tx.PrivateLogs {
		n, err := r.NextUint64("private log length")
		if err != nil {
			return nil, err
		}
		if n > uint64(types.MaxTxMarkerCount) {
			return nil, deserErr("private log length", types.MaxTxMarkerCount, int(n))
		}
		logsLen += int(n)
		if logsLen > m.PrivateLogsLength {
			return nil, deserErr("private logs length", m.PrivateLogsLength, logsLen)
		}
		if tx.PrivateLogs[i], err = r.Take(int(n)); err != nil {
			return nil, err
		}
	}
	if logsLen != m.PrivateLogsLength {
		return nil, deserErr("private logs length", m.PrivateLogsLength, logsLen)
	}

	if tx.PublicLogFields, err = r.Take(m.PublicLogsLength); err != nil {
		return nil, err
	}
	if tx.ContractClassLogFields, err = r.Take(m.ContractClassLogLength); err != nil {
		return nil, err
	}
	if m.ContractClassLogLength > 0 {
		if tx.ContractClassLogAddress, err = r.Next(); err != nil {
			return nil, err
		}
	}

	if consumed := r.Pos() - start; consumed != m.TotalFields {
		return nil, deserErr("tx field count", m.TotalFields, consumed)
	}
	return tx, nil
}
