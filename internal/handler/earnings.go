package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/ledger"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// EarningsHandler reports token earnings and exports them.
type EarningsHandler struct {
	Goal int
}

func NewEarningsHandler(goal int) *EarningsHandler {
	return &EarningsHandler{Goal: goal}
}

func (h *EarningsHandler) Report(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{"report": s.Ledger.Earnings(h.Goal)})
}

var exportHeaders = []string{"Source", "Title", "Progress(%)", "Earned", "Max reward"}

func exportRows(r ledger.Report) [][]string {
	rows := make([][]string, 0, len(r.Courses)+len(r.Games)+1)
	for _, ce := range r.Courses {
		rows = append(rows, []string{
			"course", ce.Title, strconv.Itoa(ce.Percent), strconv.Itoa(ce.Earned), strconv.Itoa(ce.Reward),
		})
	}
	for _, g := range r.Games {
		rows = append(rows, []string{
			"game", g.Title, "", strconv.Itoa(g.Earned), strconv.Itoa(g.MaxReward),
		})
	}
	rows = append(rows, []string{"total", "", "", strconv.Itoa(r.Total), strconv.Itoa(r.Goal)})
	return rows
}

// ExportCSV 导出收益为 CSV
func (h *EarningsHandler) ExportCSV(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	report := s.Ledger.Earnings(h.Goal)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	_ = writer.WriteAll(exportRows(report))
}

// ExportXLSX 导出收益为 XLSX
func (h *EarningsHandler) ExportXLSX(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	report := s.Ledger.Earnings(h.Goal)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Earnings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
	}
	for r, row := range exportRows(report) {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			if n, err := strconv.Atoi(v); err == nil {
				_ = f.SetCellValue(sheetName, cell, n)
			} else {
				_ = f.SetCellValue(sheetName, cell, v)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	_ = f.SetColWidth(sheetName, "B", "B", 28)
	_ = f.SetColWidth(sheetName, "C", "E", 14)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
