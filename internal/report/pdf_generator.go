package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/skygp_go/internal/analysis"
)

// Plot keys understood by BuildPDFReport.
const (
	PlotDoubleRatio   = "double_ratio"
	PlotHeatmap       = "heatmap"
	PlotTrainingSlice = "training_slice"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)

	// Parameter rows beyond this are summarized in one line.
	maxParameterRows = 40
)

// pdfStyler holds reusable styling and the flowing Y position.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := len(s.pdf.SplitLines([]byte(text), pdfContentWidth))
	s.checkAddPage(float64(max(lines, 1)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// addImage places a PNG at the content width fraction given, keeping its
// aspect ratio.
func (s *pdfStyler) addImage(imageBytes []byte, imageName string, widthFrac float64, caption string) {
	info := s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if info == nil || info.Width() == 0 {
		s.writeParagraph(fmt.Sprintf("Plot %s could not be embedded.", imageName), "normal", "L")
		return
	}
	width := pdfContentWidth * widthFrac
	height := width * info.Height() / info.Width()
	if maxHeight := s.pageHeight - s.contentTopY - 2*s.lineHeight; height > maxHeight {
		width *= maxHeight / height
		height = maxHeight
	}

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.Image(imageName, x, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// writeTable draws a header row and body rows; relWidths are fractions of
// the content width.
func (s *pdfStyler) writeTable(headers []string, relWidths []float64, rows [][]string) {
	widths := make([]float64, len(relWidths))
	for i, rel := range relWidths {
		widths[i] = rel * pdfContentWidth
	}
	header := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for i, h := range headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, h, "1", 0, "C", true, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	header()
	for _, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			header()
		}
		s.applyStyle("tableCell")
		x := pdfMargin
		for i, cell := range row {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}
}

// BuildPDFReport writes a landscape Letter report of a training set: an
// overview, the parameter table, the per-energy summary and any plots found
// under the Plot* keys.
func BuildPDFReport(path, title string, ts *analysis.TrainingSet,
	summary []analysis.EnergySummary, plotImages map[string][]byte) error {
	if ts == nil {
		return errors.New("no training set for report")
	}

	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(title, false)
	pdf.SetCreator("skygp", false)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph(title, "h1", "C")
	styler.addSpacer(5)
	styler.writeParagraph(fmt.Sprintf("%d runs, %d energies from %s to %s MeV, parameters: %s",
		ts.Len(), len(ts.Energies), energyBound(ts.Energies, 0), energyBound(ts.Energies, -1),
		strings.Join(ts.ParameterNames, ", ")), "normal", "L")
	styler.addSpacer(5)

	styler.writeParagraph("Model parameters", "h2", "L")
	writeParameterTable(styler, ts)
	styler.addSpacer(5)

	styler.writeParagraph("Double ratio by energy", "h2", "L")
	if len(summary) > 0 {
		rows := make([][]string, len(summary))
		for i, es := range summary {
			rows[i] = []string{
				fmt.Sprintf("%g", es.Energy),
				fmt.Sprintf("%.4f", es.Mean),
				fmt.Sprintf("%.4f", es.StdDev),
				fmt.Sprintf("%.4f", es.Min),
				fmt.Sprintf("%.4f", es.Max),
			}
		}
		styler.writeTable([]string{"E_cm (MeV)", "Mean", "Std Dev", "Min", "Max"},
			[]float64{0.2, 0.2, 0.2, 0.2, 0.2}, rows)
	} else {
		styler.writeParagraph("No summary available.", "normal", "L")
	}

	plotDefs := []struct {
		Key     string
		Title   string
		Caption string
	}{
		{PlotDoubleRatio, "Double Ratio Curves", "Double ratio of every run against center-of-mass energy"},
		{PlotHeatmap, "Training Outputs Heatmap", "Double ratio by parameter code and energy"},
		{PlotTrainingSlice, "Emulator Training Slice", "Training outputs (points) and emulator predictions (dashed)"},
	}
	for _, pDef := range plotDefs {
		imgBytes, ok := plotImages[pDef.Key]
		if !ok || len(imgBytes) == 0 {
			continue
		}
		styler.newPage()
		styler.writeParagraph(pDef.Title, "h2", "L")
		styler.addImage(imgBytes, pDef.Key, 0.9, pDef.Caption)
	}

	if pdf.Err() {
		return fmt.Errorf("failed to build PDF: %w", pdf.Error())
	}
	return pdf.OutputFileAndClose(path)
}

func writeParameterTable(styler *pdfStyler, ts *analysis.TrainingSet) {
	if ts.Inputs == nil || len(ts.ParameterNames) == 0 {
		styler.writeParagraph("No parameters.", "normal", "L")
		return
	}
	headers := append([]string{"code"}, ts.ParameterNames...)
	rel := make([]float64, len(headers))
	for i := range rel {
		rel[i] = 1 / float64(len(headers))
	}
	n := min(ts.Len(), maxParameterRows)
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := []string{fmt.Sprintf("%03d", ts.Codes[i])}
		for j := range ts.ParameterNames {
			row = append(row, fmt.Sprintf("%.4g", ts.Inputs.At(i, j)))
		}
		rows[i] = row
	}
	styler.writeTable(headers, rel, rows)
	if ts.Len() > n {
		styler.writeParagraph(fmt.Sprintf("... %d more runs omitted.", ts.Len()-n), "normal", "L")
	}
}

func energyBound(energies []float64, idx int) string {
	if len(energies) == 0 {
		return "-"
	}
	if idx < 0 {
		idx = len(energies) - 1
	}
	return fmt.Sprintf("%g", energies[idx])
}
