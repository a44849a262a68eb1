package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates numeric IDs using the Snowflake algorithm. IDs from one
// node increase monotonically, which makes them usable as dataset revisions.
type Snowflake struct {
	node *snowflake.Node
}

func generateRandomNodeID() (int64, error) {
	var nodeID int64
	err := binary.Read(rand.Reader, binary.BigEndian, &nodeID)
	if err != nil {
		return 0, err
	}

	return nodeID & (1<<10 - 1), nil // Limiting to 10 bits for node ID
}

// NewSnowflake constructs a Snowflake generator with a random node ID.
func NewSnowflake() (*Snowflake, error) {
	nodeID, err := generateRandomNodeID()
	if err != nil {
		return nil, err
	}

	snowflake.Epoch = 1735689600000 // Wed Jan 01 2025 00:00:00.000 UTC

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

// Time returns the generation time encoded in id.
func (s *Snowflake) Time(id int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(id).Time())
}
