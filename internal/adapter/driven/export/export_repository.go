package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
	"github.com/diillson/aws-cur-sync/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

var summaryHeaders = []string{
	"File", "Lines Read", "Lines Dropped", "Groups",
	"Unblended Cost", "Blended Cost", "Amortized Cost", "On-Demand Cost",
}

// ExportSummaryToCSV writes one row per report file followed by a TOTAL row.
func (r *ExportRepositoryImpl) ExportSummaryToCSV(summary entity.SyncSummary, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(summaryHeaders); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	var lines, dropped, groups int
	for _, f := range summary.Files {
		lines += f.LinesRead
		dropped += f.LinesDropped
		groups += f.Groups
		if err := writer.Write(summaryRecord(f.Key, f.LinesRead, f.LinesDropped, f.Groups, f.Totals)); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	if err := writer.Write(summaryRecord("TOTAL", lines, dropped, groups, summary.TotalCosts())); err != nil {
		return "", fmt.Errorf("error writing CSV row: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

func summaryRecord(name string, lines, dropped, groups int, t entity.CostTotals) []string {
	return []string{
		name,
		fmt.Sprintf("%d", lines),
		fmt.Sprintf("%d", dropped),
		fmt.Sprintf("%d", groups),
		fmt.Sprintf("%.2f", t.Unblended),
		fmt.Sprintf("%.2f", t.Blended),
		fmt.Sprintf("%.2f", t.Amortized),
		fmt.Sprintf("%.2f", t.OnDemand),
	}
}

func (r *ExportRepositoryImpl) ExportSummaryToJSON(summary entity.SyncSummary, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportSummaryToPDF(summary entity.SyncSummary, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, title)
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		drawTitle(title)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  AWS Cost Report Sync"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	subtitle := fmt.Sprintf("  Run %s | Account %s | %s", summary.RunID, orDash(summary.AccountID), summary.StartedAt.UTC().Format(time.RFC3339))
	if summary.DryRun {
		subtitle += " | dry run"
	}
	pdf.CellFormat(0, 8, tr(subtitle), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	drawTitle("Report Files")
	widths := []float64{70, 20, 20, 20, 30, 30}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	for i, h := range []string{"File", "Lines", "Dropped", "Groups", "Unblended", "Amortized"} {
		pdf.CellFormat(widths[i], 7, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, f := range summary.Files {
		row := []string{
			truncate(filepath.Base(f.Key), 45),
			fmt.Sprintf("%d", f.LinesRead),
			fmt.Sprintf("%d", f.LinesDropped),
			fmt.Sprintf("%d", f.Groups),
			fmt.Sprintf("$%.2f", f.Totals.Unblended),
			fmt.Sprintf("$%.2f", f.Totals.Amortized),
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, tr(cell), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(8)

	totals := summary.TotalCosts()
	drawSection("Cost Totals", strings.Join([]string{
		fmt.Sprintf("Unblended: $%.2f", totals.Unblended),
		fmt.Sprintf("Blended: $%.2f", totals.Blended),
		fmt.Sprintf("Amortized: $%.2f", totals.Amortized),
		fmt.Sprintf("On-Demand: $%.2f", totals.OnDemand),
	}, "\n"))

	drawSection("Catalog", strings.Join([]string{
		fmt.Sprintf("Cost entities upserted: %d (failed: %d)", summary.EntitiesUpserted, summary.EntitiesFailed),
		fmt.Sprintf("Cloud resources upserted: %d (failed: %d)", summary.ResourcesUpserted, summary.ResourcesFailed),
		fmt.Sprintf("Retention cutoff: %s", summary.RetentionCutoff.UTC().Format(time.RFC3339)),
		fmt.Sprintf("Stale entities: %d, deleted: %d (failed: %d)", summary.StaleFound, summary.Deleted, summary.DeleteFailed),
	}, "\n"))

	var recon []string
	for _, rec := range summary.Reconciliation {
		recon = append(recon, fmt.Sprintf("%s: report $%.2f | billed $%.2f | drift $%.2f",
			rec.BillStartDate, rec.ReportCost, rec.BilledCost, rec.Drift))
	}
	drawSection("Cost Explorer Reconciliation", strings.Join(recon, "\n"))

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated by aws-cur-sync | %s", r.now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
