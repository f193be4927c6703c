package snowflake

import (
	"strconv"
	"time"
)

// ID is a generated identifier.
type ID uint64

// Timestamp returns the millisecond the identifier was issued in, in UTC.
func (id ID) Timestamp() time.Time {
	ms := int64(id>>TimestampShift) + Epoch

	return time.UnixMilli(ms).UTC()
}

func (id ID) DatacenterID() int64 {
	return int64(id>>DatacenterIDShift) & MaxDatacenterID
}

func (id ID) MachineID() int64 {
	return int64(id>>MachineIDShift) & MaxMachineID
}

func (id ID) Sequence() int64 {
	return int64(id) & MaxSequence
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
