package journal

// ============================================================================
// Checksum
// Responsibility: Compute and verify the CRC32 of a journal event
// ============================================================================

import (
	"hash/crc32"
	"strconv"
	"strings"
)

// CalculateChecksum returns the CRC32-IEEE of the event's identifying fields.
// Timestamp is left out so re-encoding an event never changes its checksum.
func CalculateChecksum(e Event) uint32 {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(e.Seq, 10))
	b.WriteByte('|')
	b.WriteString(string(e.Type))
	b.WriteByte('|')
	b.WriteString(e.Engine)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(e.RecordID))
	b.WriteByte('|')
	b.WriteString(e.Detail)
	b.WriteByte('|')
	b.WriteString(e.Session)
	return crc32.ChecksumIEEE([]byte(b.String()))
}

// VerifyChecksum reports whether the stored checksum matches the event.
func VerifyChecksum(e Event) bool {
	return e.Checksum == CalculateChecksum(e)
}
