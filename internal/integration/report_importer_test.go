package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aro-geo/washguard-prototype/internal/entities"
)

// mockHTMLServer creates a test server that serves a fixed HTML response
func mockHTMLServer(html string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, html)
	}))
}

// TestFetchInfrastructureReport parses a standard partner report table
func TestFetchInfrastructureReport(t *testing.T) {
	mockHTML := `
<!DOCTYPE html>
<html>
<head><title>Field Report</title></head>
<body>
	<table>
		<thead>
			<tr><th>Location</th><th>Generator</th><th>Pump</th><th>Leak</th><th>Road</th><th>Comments</th><th>Water (L)</th></tr>
		</thead>
		<tbody>
			<tr><td>Zone A</td><td>Yes</td><td>Yes</td><td>No</td><td>Good</td><td>All systems go</td><td>800</td></tr>
			<tr><td>Zone B</td><td>No</td><td>Yes</td><td>Yes</td><td>Flooded</td><td>Generator failure and pipe leak</td><td>400</td></tr>
			<tr><td>Zone E</td><td>Yes</td><td>Yes</td><td>Yes</td><td>Muddy</td><td>Small pipe leak detected</td><td>not-a-number</td></tr>
			<tr><td></td><td>Yes</td><td>Yes</td><td>No</td><td>Good</td><td></td><td>100</td></tr>
		</tbody>
	</table>
</body>
</html>`

	server := mockHTMLServer(mockHTML)
	defer server.Close()

	importer := NewReportImporter(server.URL)
	statuses, err := importer.FetchInfrastructureReport()
	if err != nil {
		t.Fatalf("Failed to fetch report: %v", err)
	}

	// The malformed litres row and the empty-location row are skipped
	if len(statuses) != 2 {
		t.Fatalf("Expected 2 valid statuses, got %d", len(statuses))
	}

	zoneB := statuses[1]
	if zoneB.Location != "Zone B" {
		t.Errorf("Expected Zone B, got %s", zoneB.Location)
	}
	if zoneB.GeneratorOK != entities.No || zoneB.PipeLeak != entities.Yes {
		t.Errorf("Unexpected Zone B fields: %+v", zoneB)
	}
	if zoneB.RoadCondition != entities.RoadFlooded {
		t.Errorf("Expected flooded road, got %s", zoneB.RoadCondition)
	}
	if zoneB.WaterAvailableLiters != 400 {
		t.Errorf("Expected 400L, got %d", zoneB.WaterAvailableLiters)
	}
	if zoneB.Comments != "Generator failure and pipe leak" {
		t.Errorf("Unexpected comments: %q", zoneB.Comments)
	}
}

// TestFetchInfrastructureReportBadStatus verifies non-200 responses fail
func TestFetchInfrastructureReportBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	importer := NewReportImporter(server.URL)
	if _, err := importer.FetchInfrastructureReport(); err == nil {
		t.Error("Expected an error for a 503 response")
	}
}

// TestFetchInfrastructureReportEmptyTable verifies an empty report parses
// to an empty result without error
func TestFetchInfrastructureReportEmptyTable(t *testing.T) {
	server := mockHTMLServer(`<html><body><table><tbody></tbody></table></body></html>`)
	defer server.Close()

	importer := NewReportImporter(server.URL)
	statuses, err := importer.FetchInfrastructureReport()
	if err != nil {
		t.Fatalf("Failed to fetch report: %v", err)
	}
	if len(statuses) != 0 {
		t.Errorf("Expected no statuses, got %d", len(statuses))
	}
}
