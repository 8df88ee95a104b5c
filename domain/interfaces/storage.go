package interfaces

import "seleniumacros/domain/entities"

// ReportStore persists run reports between invocations
type ReportStore interface {
	// SaveReport stores the report as the last run and appends it to the history
	SaveReport(report entities.RunReport) error
	// LoadReport loads the report of the last run
	LoadReport() (entities.RunReport, error)
	// LoadHistory loads earlier reports, oldest first
	LoadHistory() ([]entities.RunReport, error)
}
