// =============================================================================
// Loyalty Card Report - Main Entry Point
// =============================================================================
//
// loyalty-report builds the monthly loyalty card sales report of the service
// stations. All commands live in the cmd package.
//
// USAGE:
//   loyalty-report run       - Build, mail and archive the monthly report
//   loyalty-report inspect   - Normalize one export and print its records
//   loyalty-report version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : pipeline stages, store, delivery, configuration, logging
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/loyalty-card-report/cmd"
)

func main() {
	cmd.Execute()
}
