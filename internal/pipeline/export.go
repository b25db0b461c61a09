package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"coletaflow/internal"
)

// ExportRowsToXLSX writes the review sheet the logistics team works
// from: one row per item, collection fields repeated.
func ExportRowsToXLSX(rows []internal.CollectionExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"numero_unico", "parceiro", "endereco_origem", "previsao_coleta",
		"status", "tipo", "controle_cliente", "telefone", "contrato",
		"item_codigo", "item_quantidade",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.UniqueNumber)
		set(2, row.Parceiro)
		set(3, row.EnderecoOrigem)
		set(4, row.PrevisaoColeta)
		set(5, row.Status)
		set(6, row.Type)
		set(7, derefString(row.ClientControl))
		set(8, derefString(row.Telefone))
		set(9, derefString(row.Contrato))
		set(10, derefString(row.ItemCode))
		set(11, derefInt(row.ItemQuantity))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
