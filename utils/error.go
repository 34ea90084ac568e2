package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

var ErrorLockNotObtained = errors.New("could not obtain lock, try again")
