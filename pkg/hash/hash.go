package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Short returns the first n hex characters of SHA256(input), or the whole
// digest when n is out of range.
func Short(input string, n int) string {
	full := SHA256Hex(input)
	if n <= 0 || n > len(full) {
		return full
	}
	return full[:n]
}

// ForLog is a 12-character hash used to correlate IPs and voter names in
// logs without writing the raw value.
func ForLog(value string) string {
	return Short(value, 12)
}

// VoterKey hashes a voter name case-insensitively so log lines for "Alice"
// and "alice " correlate.
func VoterKey(name string) string {
	return ForLog(strings.ToLower(strings.TrimSpace(name)))
}
