package config

import (
	"os"
	"strings"
)

// PaidSyncPolicy decides how an installment's paid flag follows its paid amount.
type PaidSyncPolicy string

const (
	// PaidSyncAsymmetric: paid amount >= amount marks paid, zero unmarks,
	// any other change leaves the flag alone.
	PaidSyncAsymmetric PaidSyncPolicy = "asymmetric"
	// PaidSyncSymmetric: paid iff paid amount >= amount > 0.
	PaidSyncSymmetric PaidSyncPolicy = "symmetric"
)

// InstallmentPaidSync reads INSTALLMENT_PAID_SYNC; unknown values fall back to asymmetric.
func InstallmentPaidSync() PaidSyncPolicy {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("INSTALLMENT_PAID_SYNC")))
	if v == string(PaidSyncSymmetric) {
		return PaidSyncSymmetric
	}
	return PaidSyncAsymmetric
}

// SkipMigrations is set by SKIP_MIGRATIONS=true for deployments where the schema is managed outside the app.
func SkipMigrations() bool {
	return envBool("SKIP_MIGRATIONS")
}

// RateLimitEnabled needs redis; it is ignored when redis is not connected.
func RateLimitEnabled() bool {
	return envBool("RATE_LIMIT_ENABLED")
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
