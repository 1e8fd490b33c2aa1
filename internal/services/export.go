package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

const exportSheet = "Users"

// BuildUserWorkbook renders the given users into an xlsx workbook with one
// header row and one row per user. The caller owns the returned file and is
// responsible for closing it.
func BuildUserWorkbook(users []models.User) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, apperr.NewInternal("failed to create export sheet", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Email", "Name", "Phone No", "Status", "Created At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, apperr.NewInternal("failed to build export header", err)
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			f.Close()
			return nil, apperr.NewInternal("failed to build export header", err)
		}
	}

	for i, user := range users {
		row := i + 2
		phone := ""
		if user.PhoneNo != nil {
			phone = *user.PhoneNo
		}
		values := []interface{}{
			user.ID.String(),
			user.Email,
			user.Name,
			phone,
			user.Status,
			user.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, apperr.NewInternal("failed to build export row", err)
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				f.Close()
				return nil, apperr.NewInternal(fmt.Sprintf("failed to write export row %d", row), err)
			}
		}
	}

	return f, nil
}
