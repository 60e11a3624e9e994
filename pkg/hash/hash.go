package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// clientIDIterations is the work factor applied to raw client ids before
// they are used in storage keys.
const clientIDIterations = 5000

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Short returns the first n hex characters of SHA256(input), or the whole
// hash when n is larger. Used for log correlation.
func Short(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) {
		return full
	}
	return full[:n]
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived hash.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for range iterations {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// HashClientID turns the id a client presents (header or cookie) into the
// id used to scope its vote marks. Raw client ids never reach storage.
func HashClientID(raw string) string {
	return IteratedSHA256(raw, clientIDIterations)
}
