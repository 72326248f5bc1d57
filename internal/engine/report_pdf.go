package engine

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfHeaderColor = &props.Color{Red: 44, Green: 62, Blue: 80}
	pdfAccentColor = &props.Color{Red: 52, Green: 152, Blue: 219}
	pdfGrayColor   = &props.Color{Red: 127, Green: 140, Blue: 141}

	pdfTitleStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: pdfHeaderColor,
	}
	pdfSectionStyle = props.Text{
		Size:  13,
		Style: fontstyle.Bold,
		Color: pdfHeaderColor,
		Top:   4,
	}
	pdfCellStyle = props.Text{
		Size: 9,
	}
	pdfCellBoldStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: pdfAccentColor,
	}
	pdfSmallStyle = props.Text{
		Size:  8,
		Color: pdfGrayColor,
	}
)

// PDFReport renders a comparison batch as a one-page PDF summary.
func PDFReport(cmp *Comparison, author string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14, text.NewCol(12, fmt.Sprintf("Pipeline Optimization Report - %s", cmp.NetworkName), pdfTitleStyle))
	m.AddRow(4, line.NewCol(12))
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Author: %s", author), pdfSmallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")),
			props.Text{Size: 8, Color: pdfGrayColor, Align: align.Right}),
	)
	m.AddRow(6)

	addPDFSection(m, "Algorithm Comparison")
	m.AddRow(7,
		text.NewCol(3, "Algorithm", pdfCellBoldStyle),
		text.NewCol(2, "Status", pdfCellBoldStyle),
		text.NewCol(2, "Objective", pdfCellBoldStyle),
		text.NewCol(2, "Throughput", pdfCellBoldStyle),
		text.NewCol(2, "Total Cost", pdfCellBoldStyle),
		text.NewCol(1, "ms", pdfCellBoldStyle),
	)
	for _, res := range cmp.Results {
		m.AddRow(6,
			text.NewCol(3, res.Algorithm, pdfCellStyle),
			text.NewCol(2, string(res.Status), pdfCellStyle),
			text.NewCol(2, fmt.Sprintf("%.2f", res.ObjectiveValue), pdfCellStyle),
			text.NewCol(2, fmt.Sprintf("%.1f", res.Metrics.TotalThroughput), pdfCellStyle),
			text.NewCol(2, fmt.Sprintf("%.2f", res.TotalCost), pdfCellStyle),
			text.NewCol(1, fmt.Sprintf("%d", res.ElapsedMs), pdfCellStyle),
		)
	}

	for _, res := range cmp.Results {
		if !res.Status.Succeeded() {
			continue
		}
		addPDFSection(m, fmt.Sprintf("Segment Flows - %s", res.Algorithm))
		m.AddRow(7,
			text.NewCol(3, "Segment", pdfCellBoldStyle),
			text.NewCol(3, "Flow (MMscfd)", pdfCellBoldStyle),
			text.NewCol(3, "Capacity", pdfCellBoldStyle),
			text.NewCol(3, "Utilization %", pdfCellBoldStyle),
		)
		for _, id := range sortedKeys(res.SegmentFlows) {
			sf := res.SegmentFlows[id]
			m.AddRow(6,
				text.NewCol(3, sf.SegmentID, pdfCellStyle),
				text.NewCol(3, fmt.Sprintf("%.2f", sf.Flow), pdfCellStyle),
				text.NewCol(3, fmt.Sprintf("%.2f", sf.Capacity), pdfCellStyle),
				text.NewCol(3, fmt.Sprintf("%.1f", sf.Utilization), pdfCellStyle),
			)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFSection(m core.Maroto, title string) {
	m.AddRow(9, text.NewCol(12, title, pdfSectionStyle))
	m.AddRow(2, line.NewCol(12))
}
