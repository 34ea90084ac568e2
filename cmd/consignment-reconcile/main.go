// consignment-reconcile compares the cached totals on every consignment note with the totals
// recomputed from its lines and installments. Findings go to reconciliation_reports.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/consignment-reconcile
//	go run ./cmd/consignment-reconcile --repair --confirm=REPAIR_TOTALS
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/utils"
	"github.com/maluks/consignment_backend/workflow"
)

func main() {
	repair := flag.Bool("repair", false, "Rewrite drifted note totals (default: report only)")
	confirm := flag.String("confirm", "", "Type REPAIR_TOTALS to proceed when --repair is set")
	correlationID := flag.String("correlation-id", "", "Optional: id stamped on the report rows (default: random uuid)")
	flag.Parse()

	if *repair && strings.TrimSpace(*confirm) != "REPAIR_TOTALS" {
		fmt.Fprintln(os.Stderr, "set --confirm=REPAIR_TOTALS to proceed with --repair")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	cid := strings.TrimSpace(*correlationID)
	if cid == "" {
		cid = uuid.NewString()
	}
	ctx := utils.SetCorrelationIdInContext(context.Background(), cid)

	result, err := workflow.ReconcileNoteTotals(ctx, db, config.GetLogger(), *repair)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconcile failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("correlation_id=%s checked=%d mismatched=%d repaired=%d\n",
		result.CorrelationId, result.Checked, result.Mismatched, result.Repaired)
	if result.Mismatched > result.Repaired {
		// non-zero so schedulers flag unrepaired drift
		os.Exit(3)
	}
}
