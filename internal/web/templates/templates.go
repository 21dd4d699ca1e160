// Package templates holds the templ components of the upload UI. The
// *_templ.go files are generated from the .templ sources by templ generate.
package templates

//go:generate templ generate

import (
	"fmt"

	"github.com/JonMunkholm/fixedwidth/internal/service"
)

const sampleLayout = `name: cars
header: true
padding: "_"
fields:
  - {name: Year, width: 4}
  - {name: Make, width: 5}
  - {name: Model, width: 40}
  - {name: Description, width: 40}
  - {name: Price, width: 8}
`

// PageData configures IndexPage.
type PageData struct {
	PreviewRows int
	HasDatabase bool
}

func databaseNote(hasDatabase bool) string {
	if hasDatabase {
		return "Database loading is available via POST /api/load."
	}
	return "Database loading is disabled."
}

func previewSummary(view service.TableView) string {
	s := fmt.Sprintf("%d rows, %d columns", view.RowCount, len(view.Columns))
	if view.Truncated {
		s += fmt.Sprintf(", showing the first %d", len(view.Rows))
	}
	return s
}
