package failover

import (
	"encoding/json"
	"fmt"
	"io"
)

// Role names the producer that emitted a record.
type Role string

const (
	RoleMaster Role = "Master"
	RoleSlave  Role = "Slave"
)

// DefaultAppID is the producer id stamped on every record.
const DefaultAppID = "Sender"

// Record is one sequenced payload, sent as the whole body of one sink connection.
type Record struct {
	Count  uint64 `json:"count"`
	AppID  string `json:"app_id"`
	NodeID string `json:"node_id"`
}

// NewRecord builds the record for one production cycle.
func NewRecord(count uint64, appID string, role Role) Record {
	return Record{Count: count, AppID: appID, NodeID: string(role)}
}

// Role returns the producer role carried in NodeID.
func (r Record) Role() Role {
	return Role(r.NodeID)
}

// EncodeRecord returns the wire payload of r.
func EncodeRecord(r Record) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record %d: %w", r.Count, err)
	}
	return b, nil
}

// DecodeRecord reads exactly one record from rd.
func DecodeRecord(rd io.Reader) (Record, error) {
	var r Record
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return r, nil
}
