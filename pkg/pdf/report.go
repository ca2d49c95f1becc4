package pdf

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"

	"storymail-backend/pkg/gemini"
)

// Renderer builds the digest report PDF: title, narrative summary, a pie
// chart of category counts with a count table, highlights and clusters.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) RenderDigest(start, end time.Time, data *gemini.DigestData) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 10, fmt.Sprintf("Email Digest: %s to %s",
		start.Format("2006-01-02"), end.Format("2006-01-02")), "", "L", false)
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 8, "Weekly Summary", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	narrative := data.NarrativeSummary
	if narrative == "" {
		narrative = "No summary available"
	}
	doc.MultiCell(0, 5, narrative, "", "L", false)
	doc.Ln(4)

	counts := nonZeroCounts(data.CategoryCounts)
	if len(counts) > 0 {
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 8, "Email Categories", "", 1, "L", false, 0, "")

		if png, err := renderPieChart(counts); err != nil {
			log.Printf("[PDF] Failed to render category chart: %v", err)
		} else {
			doc.RegisterImageOptionsReader("categories",
				fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
			doc.ImageOptions("categories", 60, -1, 90, 0, true,
				fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			doc.Ln(4)
		}

		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(100, 7, "Category", "1", 0, "C", false, 0, "")
		doc.CellFormat(40, 7, "Count", "1", 1, "C", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		for _, c := range counts {
			doc.CellFormat(100, 7, c.label, "1", 0, "C", false, 0, "")
			doc.CellFormat(40, 7, fmt.Sprintf("%d", c.count), "1", 1, "C", false, 0, "")
		}
		doc.Ln(6)
	}

	if len(data.Highlights) > 0 {
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 8, "Email Highlights", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		for _, h := range data.Highlights {
			doc.MultiCell(0, 5, "- "+h, "", "L", false)
		}
		doc.Ln(4)
	}

	if len(data.Clusters) > 0 {
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 8, "Email Clusters", "", 1, "L", false, 0, "")
		names := make([]string, 0, len(data.Clusters))
		for name := range data.Clusters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			doc.SetFont("Helvetica", "B", 12)
			doc.CellFormat(0, 7, name, "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 11)
			for _, item := range data.Clusters[name] {
				doc.MultiCell(0, 5, "- "+item, "", "L", false)
			}
			doc.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type categoryCount struct {
	label string
	count int
}

func nonZeroCounts(counts map[string]int) []categoryCount {
	out := make([]categoryCount, 0, len(counts))
	for label, count := range counts {
		if count > 0 {
			out = append(out, categoryCount{label: label, count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].label < out[j].label })
	return out
}

func renderPieChart(counts []categoryCount) ([]byte, error) {
	values := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		values = append(values, chart.Value{Value: float64(c.count), Label: c.label})
	}

	pie := chart.PieChart{
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
