package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"Código", "Descrição", "Quantidade"},
		{"MD-01", "Modem óptico", 2},
		{"RT-07", "Roteador", 1},
	})

	rows, err := Read(bytes.NewReader(blob), KindXLSX)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0]["código"] != "MD-01" {
		t.Fatalf("first code: %v", rows[0]["código"])
	}
	if rows[1]["descrição"] != "Roteador" {
		t.Fatalf("second description: %v", rows[1]["descrição"])
	}
}

func TestReadCSVSemicolon(t *testing.T) {
	csvData := "nome;telefone;cidade\nAcme Ltda;(11) 4002-8922;São Paulo\n;;\n"
	rows, err := Read(strings.NewReader(csvData), KindCSV)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("blank row not dropped, len=%d", len(rows))
	}
	if rows[0]["nome"] != "Acme Ltda" {
		t.Fatalf("nome: %v", rows[0]["nome"])
	}
}

func TestReadJSON(t *testing.T) {
	data := `[{"Code":"MD-01","Quantity":3},{"Code":"RT-07"}]`
	rows, err := Read(strings.NewReader(data), KindJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0]["code"] != "MD-01" {
		t.Fatalf("code: %v", rows[0]["code"])
	}
	if rows[0]["quantity"] != float64(3) {
		t.Fatalf("quantity: %v", rows[0]["quantity"])
	}
}

func TestReadHTMLTable(t *testing.T) {
	html := `<html><body><table>
<tr><th>Descrição</th><th>Quant. Inst.</th></tr>
<tr><td>Modem</td><td>2</td></tr>
<tr><td>Roteador</td><td>1</td></tr>
</table></body></html>`
	rows, err := Read(strings.NewReader(html), KindHTML)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0]["descrição"] != "Modem" {
		t.Fatalf("descrição: %v", rows[0]["descrição"])
	}
}

func TestReadMalformed(t *testing.T) {
	cases := []struct {
		kind Kind
		data string
	}{
		{kind: KindXLSX, data: "not a zip archive"},
		{kind: KindJSON, data: "{`broken"},
		{kind: KindHTML, data: "<p>no table here</p>"},
		{kind: Kind("parquet"), data: ""},
	}
	for _, tc := range cases {
		_, err := Read(strings.NewReader(tc.data), tc.kind)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("kind %s: want ErrMalformed, got %v", tc.kind, err)
		}
	}
}

func TestReadUnreadable(t *testing.T) {
	_, err := ReadFile("/nonexistent/arquivo.xlsx", KindXLSX)
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("want ErrUnreadable, got %v", err)
	}
}
