package emv

import (
	"fmt"
	"strings"
	"unicode"
)

type PayloadResult struct {
	Valid         bool     `json:"valid"`
	CRCValid      bool     `json:"crc_valid"`
	CalculatedCRC string   `json:"calculated_crc"`
	FoundCRC      string   `json:"found_crc"`
	Length        int      `json:"length"`
	Errors        []string `json:"errors,omitempty"`
}

// ValidatePayload runs the full set of structural checks on a PIX code and
// reports every failure found instead of stopping at the first one.
func ValidatePayload(code string) PayloadResult {
	res := PayloadResult{Length: len(code)}

	if !strings.HasPrefix(code, FormatPrefix) {
		res.Errors = append(res.Errors, fmt.Sprintf("payload must start with %s", FormatPrefix))
	}
	if len(code) < MinPayloadLen {
		res.Errors = append(res.Errors, fmt.Sprintf("payload too short: %d < %d", len(code), MinPayloadLen))
	}

	if len(code) >= ChecksumLen {
		payload, tail := split(code)
		res.CalculatedCRC = Format(Calculate([]byte(payload)))
		res.FoundCRC = strings.ToUpper(tail)
		res.CRCValid = res.CalculatedCRC == res.FoundCRC
		if !res.CRCValid {
			res.Errors = append(res.Errors, fmt.Sprintf("checksum mismatch: calculated %s, found %s", res.CalculatedCRC, res.FoundCRC))
		}
	} else {
		res.Errors = append(res.Errors, "payload shorter than checksum")
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// Sanitize strips whitespace a transport may have introduced. The stripped
// form is only returned when it keeps the format prefix and validates;
// otherwise the original string is kept byte for byte.
func Sanitize(code string) string {
	// Inner spaces are payload (merchant names); only line breaks, tabs and
	// surrounding blanks are transport noise.
	stripped := strings.Map(func(r rune) rune {
		if r != ' ' && unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(code))

	if stripped == code {
		return code
	}
	if !strings.HasPrefix(stripped, FormatPrefix) || !Validate(stripped) {
		return code
	}
	return stripped
}
