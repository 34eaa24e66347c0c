// Package emv verifies and terminates EMV merchant-presented payment
// strings (PIX "copia e cola" codes). It never rewrites a payload: a code
// that fails validation is rejected, not repaired.
package emv

import (
	"fmt"
	"strings"
)

const (
	polynomial = 0x1021
	initial    = 0xFFFF

	// ChecksumLen is the number of hex characters terminating a code.
	ChecksumLen = 4
	// FormatPrefix is the payload format indicator every code starts with.
	FormatPrefix = "000201"
	// MinPayloadLen is the shortest code accepted by ValidatePayload.
	MinPayloadLen = 100
)

// Calculate returns the CRC-16/CCITT-FALSE of data.
func Calculate(data []byte) uint16 {
	crc := uint16(initial)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Format renders a checksum as four uppercase hex digits.
func Format(value uint16) string {
	return fmt.Sprintf("%04X", value)
}

// Validate reports whether the last four characters of code are the
// checksum of everything before them.
func Validate(code string) bool {
	if len(code) < ChecksumLen {
		return false
	}
	payload, tail := split(code)
	return Format(Calculate([]byte(payload))) == strings.ToUpper(tail)
}

// Append terminates payload with its checksum.
func Append(payload string) string {
	return payload + Format(Calculate([]byte(payload)))
}

func split(code string) (payload, tail string) {
	n := len(code) - ChecksumLen
	return code[:n], code[n:]
}
