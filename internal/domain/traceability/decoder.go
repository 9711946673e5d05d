package traceability

import (
	"fmt"
	"strings"
	"time"
)

// GS1 application identifiers recognized by the decoder.
const (
	aiGTIN   = "01"
	aiLot    = "10"
	aiExpiry = "17"
	aiSerial = "21"
)

const (
	// symbologyPrefix is the 3-character marker some scanner hardware
	// prepends to a GS1-128 payload.
	symbologyPrefix = "]C1"

	// groupSeparator is the ASCII GS control character used between
	// variable-length elements on the wire.
	groupSeparator = "\x1d"

	// minElementStringLen is AI "01" plus a 14-digit GTIN, the smallest
	// payload this decoder accepts.
	minElementStringLen = 16
)

// knownAIs terminate a variable-length element during scanning. Boundary
// detection between adjacent variable-length elements is heuristic: a lot
// number that happens to contain one of these two-digit sequences is cut
// short. This mirrors how printed GS1-128 labels behave in practice when
// the group separator is lost by the scanner.
var knownAIs = []string{aiGTIN, aiLot, "11", "13", "15", aiExpiry, aiSerial}

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind string

const (
	DecodeErrTooShort          DecodeErrorKind = "BARCODE_TOO_SHORT"
	DecodeErrMissingGtinPrefix DecodeErrorKind = "MISSING_GTIN_PREFIX"
	DecodeErrInvalidGtinLength DecodeErrorKind = "INVALID_GTIN_LENGTH"
	DecodeErrMissingLotNumber  DecodeErrorKind = "MISSING_LOT_NUMBER"
)

// DecodeError is a structured decode failure. It carries a diagnostic
// message with the offending fragment so operators can troubleshoot a
// misprinted or miss-scanned label.
type DecodeError struct {
	Kind    DecodeErrorKind
	Message string
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return e.Message
}

func newDecodeError(kind DecodeErrorKind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// DecodedBarcode is the structured result of decoding a GS1-128 element string.
type DecodedBarcode struct {
	GTIN           string
	LotNumber      string
	ExpirationDate *time.Time
	SerialNumber   string
	RawBarcode     string
}

// Decode parses a scanned GS1-128 element string into its structured elements.
//
// The GTIN element (AI 01) must lead the payload and the lot number element
// (AI 10) is mandatory; the expiration date (AI 17) and serial number (AI 21)
// are optional. Elements after the GTIN are extracted independently of the
// order in which they appear. On failure a *DecodeError is returned and no
// partial data is produced.
func Decode(barcode string) (*DecodedBarcode, error) {
	buf := strings.TrimSpace(barcode)
	buf = strings.TrimPrefix(buf, symbologyPrefix)
	buf = strings.ReplaceAll(buf, groupSeparator, "")

	if len(buf) < minElementStringLen {
		return nil, newDecodeError(DecodeErrTooShort,
			"element string has %d characters, need at least %d for AI 01 and a 14-digit GTIN", len(buf), minElementStringLen)
	}

	if buf[:2] != aiGTIN {
		return nil, newDecodeError(DecodeErrMissingGtinPrefix,
			"element string must start with application identifier %s, found %q", aiGTIN, buf[:2])
	}

	gtin := buf[2:minElementStringLen]
	if n := leadingDigits(gtin); n < gtinLength {
		return nil, newDecodeError(DecodeErrInvalidGtinLength,
			"expected %d GTIN digits after AI %s, found %d", gtinLength, aiGTIN, n)
	}
	rest := buf[minElementStringLen:]

	var expirationDate *time.Time
	if digits, remainder, ok := extractFixed(rest, aiExpiry, 6); ok {
		rest = remainder
		expirationDate = parseExpiryDate(digits)
	}

	lotNumber, remainder, ok := extractVariable(rest, aiLot)
	if !ok {
		return nil, newDecodeError(DecodeErrMissingLotNumber,
			"no lot number element (AI %s) in remainder %q", aiLot, rest)
	}
	rest = remainder

	serialNumber, _, _ := extractVariable(rest, aiSerial)

	return &DecodedBarcode{
		GTIN:           gtin,
		LotNumber:      lotNumber,
		ExpirationDate: expirationDate,
		SerialNumber:   serialNumber,
		RawBarcode:     barcode,
	}, nil
}

// parseExpiryDate converts a YYMMDD expiry segment to a date.
// YY always maps to 20YY; no pivot-year disambiguation is performed.
// A "00" day means the lot expires within the month and maps to day 1.
func parseExpiryDate(digits string) *time.Time {
	yy := int(digits[0]-'0')*10 + int(digits[1]-'0')
	mm := int(digits[2]-'0')*10 + int(digits[3]-'0')
	dd := int(digits[4]-'0')*10 + int(digits[5]-'0')
	if dd == 0 {
		dd = 1
	}
	date := time.Date(2000+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	return &date
}

// extractFixed finds the first occurrence of ai followed by exactly n digits
// and removes the whole segment from buf. It returns the digits, the
// remaining buffer, and whether a match was found.
func extractFixed(buf, ai string, n int) (string, string, bool) {
	for i := 0; i+len(ai)+n <= len(buf); i++ {
		if buf[i:i+len(ai)] != ai {
			continue
		}
		digits := buf[i+len(ai) : i+len(ai)+n]
		if leadingDigits(digits) == n {
			return digits, buf[:i] + buf[i+len(ai)+n:], true
		}
	}
	return "", buf, false
}

// extractVariable finds the first occurrence of ai and captures the
// alphanumeric run that follows, terminated by the next recognized AI
// marker, a non-alphanumeric character, or the end of the buffer. The
// captured segment is removed from buf.
func extractVariable(buf, ai string) (string, string, bool) {
	start := strings.Index(buf, ai)
	if start < 0 {
		return "", buf, false
	}

	begin := start + len(ai)
	end := begin
	for end < len(buf) {
		if end > begin && startsWithKnownAI(buf[end:]) {
			break
		}
		if !isAlphanumeric(buf[end]) {
			break
		}
		end++
	}

	value := buf[begin:end]
	if value == "" {
		return "", buf, false
	}
	return value, buf[:start] + buf[end:], true
}

func startsWithKnownAI(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, ai := range knownAIs {
		if s[:2] == ai {
			return true
		}
	}
	return false
}

// leadingDigits returns the number of consecutive ASCII digits at the start of s.
func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func isAlphanumeric(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
