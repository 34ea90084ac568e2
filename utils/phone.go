package utils

import (
	"fmt"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhone parses a free-form phone number and returns its E.164 form without the leading '+'.
// Numbers without a country code are read in the given region.
func NormalizePhone(phoneNumber, region string) (string, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return "", fmt.Errorf("phone number is empty")
	}
	p, err := libphonenumber.Parse(phoneNumber, region)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return strings.TrimPrefix(libphonenumber.Format(p, libphonenumber.E164), "+"), nil
}

func ValidatePhoneNumber(phoneNumber, region string) error {
	_, err := NormalizePhone(phoneNumber, region)
	return err
}
