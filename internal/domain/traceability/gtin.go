package traceability

// gtinLength is the number of digits in a GTIN-14 trade item number.
const gtinLength = 14

// IsValidGTIN reports whether code is a 14-digit trade item number whose
// final digit satisfies the GS1 weighted mod-10 check.
//
// Digits d0..d12 are weighted alternately 3 and 1 starting with 3 at d0;
// the check digit is (10 - sum mod 10) mod 10 and must equal d13.
// Anything that is not exactly 14 ASCII digits is reported as invalid,
// not as an error.
func IsValidGTIN(code string) bool {
	if len(code) != gtinLength {
		return false
	}

	sum := 0
	for i := 0; i < gtinLength-1; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if i%2 == 0 {
			digit *= 3
		}
		sum += digit
	}

	check := code[gtinLength-1]
	if check < '0' || check > '9' {
		return false
	}

	return (10-sum%10)%10 == int(check-'0')
}
