package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"coletaflow/internal"
	"coletaflow/internal/config"
	"coletaflow/internal/storage"
)

func TestSmokeDocumentToXLSX(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	products := []internal.CatalogProduct{
		{Code: "MOD-100", Description: "Modem X200", RawJSON: `{}`},
		{Code: "ROT-200", Description: "Roteador R1", RawJSON: `{}`},
	}
	if err := db.UpsertProducts(products); err != nil {
		t.Fatal(err)
	}

	raw := "Subject: Coleta de equipamentos\r\n" +
		"From: cliente@example.com\r\n" +
		"To: logistica@example.com\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Cliente: Acme Telecom LTDA\r\n" +
		"Endereço: Rua das Flores, 120, 13010-200\r\n" +
		"Data da coleta: 25/03/2024\r\n" +
		"\r\n" +
		"Descrição Quant. Inst.\r\n" +
		"1 Modem X200 2\r\n"
	rawPath := filepath.Join(tmp, "fixture.eml")
	if err := os.WriteFile(rawPath, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := db.UpsertDocument("gmail", "<fixture-1@example.com>", "Coleta de equipamentos", "cliente@example.com", "2026-08-30T00:00:00Z", "hash", rawPath, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)
	res, err := proc.ProcessDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped {
		t.Fatal("document skipped")
	}
	if res.Items != 1 {
		t.Fatalf("items=%d", res.Items)
	}

	updated, err := db.GetDocumentByID(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated == nil || updated.Status != "processed" {
		t.Fatalf("status: %+v", updated)
	}

	rows, err := db.GetExportRows("")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 {
		t.Fatal("no export rows")
	}
	if rows[0].Parceiro != "Acme Telecom LTDA" {
		t.Fatalf("parceiro: %q", rows[0].Parceiro)
	}
	if rows[0].ItemCode == nil || *rows[0].ItemCode != "Modem X200" {
		t.Fatalf("item code: %v", rows[0].ItemCode)
	}

	out := filepath.Join(tmp, "result.xlsx")
	if err := ExportRowsToXLSX(rows, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}
