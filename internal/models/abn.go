package models

import "strings"

var abnWeights = [11]int{10, 1, 3, 5, 7, 9, 11, 13, 15, 17, 19}

// ValidABN reports whether value is an 11-digit Australian Business Number
// with a valid checksum. Spaces are ignored.
func ValidABN(value string) bool {
	digits := strings.ReplaceAll(value, " ", "")
	if len(digits) != 11 {
		return false
	}
	sum := 0
	for i, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
		d := int(r - '0')
		if i == 0 {
			d--
		}
		sum += d * abnWeights[i]
	}
	return sum%89 == 0
}

// FormatABN groups an 11-digit ABN as "51 824 753 556". Other values are
// returned trimmed and unchanged.
func FormatABN(value string) string {
	digits := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if len(digits) != 11 {
		return strings.TrimSpace(value)
	}
	return digits[0:2] + " " + digits[2:5] + " " + digits[5:8] + " " + digits[8:11]
}
