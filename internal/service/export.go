package service

import (
	"bytes"
	"fmt"

	"github.com/SimoHua/symphonyx/internal/model"

	"github.com/xuri/excelize/v2"
)

const chapterSheet = "Chapter"

// ChapterWorkbook writes a week rollup as a spreadsheet: one row per member
// with paragraph counts per day, followed by a subtotal row per team.
func ChapterWorkbook(teams []*model.TeamNode, labels Labels) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), chapterSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Team", "Member"}
	for d := 1; d <= 7; d++ {
		header = append(header, labels.WeekDayName(d))
	}
	header = append(header, "Done", "Total")
	if err := f.SetSheetRow(chapterSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("new style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(chapterSheet, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, team := range teams {
		for _, m := range team.Users {
			values := []any{team.TeamName, m.UserName}
			counts := make([]int, 7)
			for _, d := range m.WeekDays {
				counts[d.WeekDay-1] = len(d.Paragraphs)
			}
			for _, c := range counts {
				values = append(values, c)
			}
			values = append(values, m.Done, 7)
			if err := writeRow(f, row, values); err != nil {
				return nil, err
			}
			row++
		}

		subtotal := []any{team.TeamName, ""}
		for i := 0; i < 7; i++ {
			subtotal = append(subtotal, "")
		}
		subtotal = append(subtotal, team.Done, team.Total)
		if err := writeRow(f, row, subtotal); err != nil {
			return nil, err
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(subtotal), row)
		if err := f.SetCellStyle(chapterSheet, first, end, bold); err != nil {
			return nil, fmt.Errorf("style subtotal: %w", err)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(chapterSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
