package config

import (
	"os"
	"strings"
)

// StoreInfo is printed in the header of every consignment note.
type StoreInfo struct {
	Name     string
	Document string
	Phone    string
}

func GetStoreInfo() StoreInfo {
	name := strings.TrimSpace(os.Getenv("STORE_NAME"))
	if name == "" {
		name = "Maluks"
	}
	return StoreInfo{
		Name:     name,
		Document: strings.TrimSpace(os.Getenv("STORE_DOCUMENT")),
		Phone:    strings.TrimSpace(os.Getenv("STORE_PHONE")),
	}
}

// ChatDefaultRegion is the libphonenumber region used for numbers typed without a country code.
func ChatDefaultRegion() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("CHAT_DEFAULT_REGION")))
	if v == "" {
		return "BR"
	}
	return v
}

func RateLimitMaxRequests() int {
	return intFromEnv("RATE_LIMIT_MAX_REQUESTS", 120)
}

func RateLimitWindowSeconds() int {
	return intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
}

func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}
