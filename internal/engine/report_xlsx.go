package engine

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"gaspipe/internal/result"
)

// ExcelReport renders a comparison batch as an XLSX workbook: a summary
// sheet with one row per algorithm and a detail sheet per successful
// result.
func ExcelReport(cmp *Comparison) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	summary := "Summary"
	f.NewSheet(summary)
	f.DeleteSheet("Sheet1")

	row := 1
	f.SetCellValue(summary, cellAddr("A", row), fmt.Sprintf("Optimization Comparison - %s", cmp.NetworkName))
	f.MergeCell(summary, cellAddr("A", row), cellAddr("G", row))
	row += 2

	headers := []string{"Algorithm", "Status", "Objective", "Throughput (MMscfd)", "Total Cost ($)", "Avg Util (%)", "Elapsed (ms)"}
	for i, h := range headers {
		cell := cellAddr(string(rune('A'+i)), row)
		f.SetCellValue(summary, cell, h)
		f.SetCellStyle(summary, cell, cell, headerStyle)
	}
	row++

	for _, res := range cmp.Results {
		f.SetCellValue(summary, cellAddr("A", row), res.Algorithm)
		f.SetCellValue(summary, cellAddr("B", row), string(res.Status))
		f.SetCellValue(summary, cellAddr("C", row), res.ObjectiveValue)
		f.SetCellValue(summary, cellAddr("D", row), res.Metrics.TotalThroughput)
		f.SetCellValue(summary, cellAddr("E", row), res.TotalCost)
		f.SetCellValue(summary, cellAddr("F", row), res.Metrics.AvgUtilization)
		f.SetCellValue(summary, cellAddr("G", row), res.ElapsedMs)
		row++
	}

	for _, res := range cmp.Results {
		if res.Status.Succeeded() {
			writeResultSheet(f, res, headerStyle)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeResultSheet(f *excelize.File, res *result.OptimizationResult, headerStyle int) {
	sheet := res.Algorithm
	if len(sheet) > 31 {
		sheet = sheet[:31] // sheet name limit
	}
	f.NewSheet(sheet)

	row := 1
	f.SetCellValue(sheet, cellAddr("A", row), "Segment Flows")
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("E", row), headerStyle)
	row++
	for i, h := range []string{"Segment", "Flow", "Capacity", "Utilization %", "Cost $/MMscf"} {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), row), h)
	}
	row++
	for _, id := range sortedKeys(res.SegmentFlows) {
		sf := res.SegmentFlows[id]
		f.SetCellValue(sheet, cellAddr("A", row), sf.SegmentID)
		f.SetCellValue(sheet, cellAddr("B", row), sf.Flow)
		f.SetCellValue(sheet, cellAddr("C", row), sf.Capacity)
		f.SetCellValue(sheet, cellAddr("D", row), sf.Utilization)
		f.SetCellValue(sheet, cellAddr("E", row), sf.TransportationCost)
		row++
	}
	row++

	f.SetCellValue(sheet, cellAddr("A", row), "Point Pressures")
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("E", row), headerStyle)
	row++
	for i, h := range []string{"Point", "Pressure (psia)", "Within Window", "Boost (psi)", "Fuel (MMscfd)"} {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), row), h)
	}
	row++
	for _, id := range sortedKeys(res.PointPressures) {
		pp := res.PointPressures[id]
		f.SetCellValue(sheet, cellAddr("A", row), pp.PointID)
		f.SetCellValue(sheet, cellAddr("B", row), pp.Pressure)
		f.SetCellValue(sheet, cellAddr("C", row), pp.WithinConstraints)
		f.SetCellValue(sheet, cellAddr("D", row), pp.Boost)
		f.SetCellValue(sheet, cellAddr("E", row), pp.FuelConsumption)
		row++
	}
	row++

	f.SetCellValue(sheet, cellAddr("A", row), "Cost Breakdown")
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++
	for _, item := range []struct {
		label string
		value float64
	}{
		{"Transportation", res.Costs.Transportation},
		{"Fuel", res.Costs.Fuel},
		{"Compressor", res.Costs.Compressor},
		{"Other", res.Costs.Other},
		{"Total", res.TotalCost},
	} {
		f.SetCellValue(sheet, cellAddr("A", row), item.label)
		f.SetCellValue(sheet, cellAddr("B", row), item.value)
		row++
	}
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
