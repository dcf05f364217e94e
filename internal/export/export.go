// ABOUTME: Export functionality for a participant's collected study data.
// ABOUTME: Supports JSON, YAML, and XLSX export formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stepforwardrx/stepforward/internal/models"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format: %q", s)
	}
}

// Bundle represents the full export format for one participant's data.
type Bundle struct {
	Version     string              `json:"version" yaml:"version"`
	ExportedAt  time.Time           `json:"exported_at" yaml:"exported_at"`
	Tool        string              `json:"tool" yaml:"tool"`
	Participant models.Participant  `json:"participant" yaml:"participant"`
	Samples     []models.DaySample  `json:"samples" yaml:"samples"`
	Medications []models.Medication `json:"medications" yaml:"medications"`
	SideEffects []models.SideEffect `json:"side_effects" yaml:"side_effects"`
}

// NewBundle assembles an export bundle stamped at the given time.
func NewBundle(participant models.Participant, samples []models.DaySample, medications []models.Medication, sideEffects []models.SideEffect, at time.Time) Bundle {
	return Bundle{
		Version:     "1.0",
		ExportedAt:  at,
		Tool:        "stepforward",
		Participant: participant,
		Samples:     samples,
		Medications: medications,
		SideEffects: sideEffects,
	}
}

// Write encodes the bundle to w in the given format.
func Write(w io.Writer, format Format, bundle Bundle) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(bundle)
	case FormatXLSX:
		return writeXLSX(w, bundle)
	default:
		return fmt.Errorf("unknown export format: %q", format)
	}
}

const (
	sheetMetrics     = "Gait Metrics"
	sheetMedications = "Medications"
	sheetSideEffects = "Side Effects"
)

func writeXLSX(w io.Writer, bundle Bundle) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetMetrics); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeMetricsSheet(f, bundle.Samples); err != nil {
		return err
	}
	if err := writeMedicationsSheet(f, bundle.Medications); err != nil {
		return err
	}
	if err := writeSideEffectsSheet(f, bundle.SideEffects); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeMetricsSheet(f *excelize.File, samples []models.DaySample) error {
	header := []interface{}{"Date"}
	for _, metric := range models.AllMetrics {
		label := models.MetricLabels[metric]
		if unit := models.MetricUnits[metric]; unit != "" {
			label = fmt.Sprintf("%s (%s)", label, unit)
		}
		header = append(header, label)
	}
	if err := f.SetSheetRow(sheetMetrics, "A1", &header); err != nil {
		return fmt.Errorf("metrics header: %w", err)
	}

	for i, sample := range samples {
		row := []interface{}{sample.Date}
		for _, metric := range models.AllMetrics {
			if v := sample.Value(metric); v != nil {
				row = append(row, *v)
			} else {
				row = append(row, nil)
			}
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetMetrics, cell, &row); err != nil {
			return fmt.Errorf("metrics row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeMedicationsSheet(f *excelize.File, medications []models.Medication) error {
	if _, err := f.NewSheet(sheetMedications); err != nil {
		return fmt.Errorf("medications sheet: %w", err)
	}

	header := []interface{}{"Medication", "Dose", "Frequency", "Start Date", "End Date"}
	if err := f.SetSheetRow(sheetMedications, "A1", &header); err != nil {
		return fmt.Errorf("medications header: %w", err)
	}

	for i, med := range medications {
		endDate := ""
		if med.EndDate != nil {
			endDate = *med.EndDate
		}
		row := []interface{}{
			med.MedicationName,
			med.Dose,
			models.FrequencyLabels[med.Frequency],
			med.StartDate,
			endDate,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetMedications, cell, &row); err != nil {
			return fmt.Errorf("medications row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeSideEffectsSheet(f *excelize.File, reports []models.SideEffect) error {
	if _, err := f.NewSheet(sheetSideEffects); err != nil {
		return fmt.Errorf("side effects sheet: %w", err)
	}

	header := []interface{}{"Reported At", "Message"}
	if err := f.SetSheetRow(sheetSideEffects, "A1", &header); err != nil {
		return fmt.Errorf("side effects header: %w", err)
	}

	for i, report := range reports {
		row := []interface{}{report.ReportedAt, report.Message}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetSideEffects, cell, &row); err != nil {
			return fmt.Errorf("side effects row %d: %w", i+2, err)
		}
	}
	return nil
}
