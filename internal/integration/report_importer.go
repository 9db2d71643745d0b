// Package integration handles external service interactions
package integration

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Aro-geo/washguard-prototype/internal/entities"
	"github.com/PuerkitoBio/goquery"
)

// ReportImporter fetches field reports published as HTML tables and turns
// the rows into infrastructure status reports. Partner organizations export
// these tables from their own tooling; column order follows the standard
// report layout: location, generator, pump, pipe leak, road, comments,
// water litres.
type ReportImporter struct {
	sourceURL string
}

// NewReportImporter creates a new field report importer
func NewReportImporter(url string) *ReportImporter {
	return &ReportImporter{sourceURL: url}
}

// FetchInfrastructureReport retrieves and parses the report table
func (ri *ReportImporter) FetchInfrastructureReport() ([]entities.InfrastructureStatus, error) {
	log.Printf("Sending HTTP request to field report source %s", ri.sourceURL)
	res, err := http.Get(ri.sourceURL)
	if err != nil {
		log.Printf("Error fetching report: %v", err)
		return nil, fmt.Errorf("failed to fetch the report: %v", err)
	}
	defer res.Body.Close()

	// Check for successful response
	if res.StatusCode != 200 {
		log.Printf("Received unexpected status code: %d %s", res.StatusCode, res.Status)
		return nil, fmt.Errorf("unexpected status code: %d %s", res.StatusCode, res.Status)
	}
	log.Printf("Successfully received HTTP response with status: %s", res.Status)

	// Parse the HTML document
	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		log.Printf("Error parsing HTML: %v", err)
		return nil, fmt.Errorf("failed to parse the report: %v", err)
	}

	var statuses []entities.InfrastructureStatus
	rowCount := 0

	// Iterate over each table row in the document
	doc.Find("table tbody tr").Each(func(index int, row *goquery.Selection) {
		rowCount++
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		location := strings.TrimSpace(cells.Eq(0).Text())
		if location == "" {
			return
		}

		liters, err := strconv.Atoi(strings.TrimSpace(cells.Eq(6).Text()))
		if err != nil {
			log.Printf("Skipping row %d: invalid water litres value %q", index, cells.Eq(6).Text())
			return
		}

		statuses = append(statuses, entities.InfrastructureStatus{
			Location:             location,
			GeneratorOK:          entities.YesNo(strings.TrimSpace(cells.Eq(1).Text())),
			PumpOK:               entities.YesNo(strings.TrimSpace(cells.Eq(2).Text())),
			PipeLeak:             entities.YesNo(strings.TrimSpace(cells.Eq(3).Text())),
			RoadCondition:        entities.RoadCondition(strings.TrimSpace(cells.Eq(4).Text())),
			Comments:             strings.TrimSpace(cells.Eq(5).Text()),
			WaterAvailableLiters: liters,
		})
	})

	log.Printf("Parsed %d rows, extracted %d valid status reports", rowCount, len(statuses))
	return statuses, nil
}
