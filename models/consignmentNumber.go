package models

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const ConsignmentNumberPrefix = "C"

// NextConsignmentNumber increments the digits of the last issued number.
// An empty or digit-less last number starts the sequence at C001.
func NextConsignmentNumber(last string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, last)
	n, err := strconv.Atoi(digits)
	if err != nil {
		n = 0
	}
	return fmt.Sprintf("%s%03d", ConsignmentNumberPrefix, n+1)
}
