package pkguid

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/bwmarrin/snowflake"
)

// Snowflake mints int64 IDs that sort by generation time.
type Snowflake struct {
	node *snowflake.Node
}

// randomNodeID draws a node ID in [0, 1023], the 10-bit space the snowflake
// layout reserves for it.
func randomNodeID() (int64, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}

	return int64(binary.BigEndian.Uint16(b[:]) % 1024), nil
}

// NewSnowflake builds a generator on a random node ID, so several instances
// can mint IDs without coordinating with each other.
func NewSnowflake() (*Snowflake, error) {
	nodeID, err := randomNodeID()
	if err != nil {
		return nil, err
	}

	// Count milliseconds from Jan 01 2024 00:00:00 UTC.
	snowflake.Epoch = 1704067200000

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique numeric ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
