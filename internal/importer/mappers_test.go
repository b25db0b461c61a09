package importer

import (
	"testing"

	"coletaflow/internal"
	"coletaflow/internal/tabular"
)

func TestMapCollectionRow(t *testing.T) {
	row := tabular.Row{
		"cliente":        "Acme Telecom",
		"endereço":       "Rua das Flores, 120",
		"telefone":       "(11) 98765-4321",
		"quantidade":     "3",
		"valor do frete": "1.250,00",
		"data da coleta": "25/03/2024",
		"status":         "AGENDADA",
		"tipo":           "Entrega",
		"modelo":         "Modem X200",
	}

	mapped := MapCollectionRow(row)
	if mapped.Parceiro != "Acme Telecom" {
		t.Fatalf("parceiro: %q", mapped.Parceiro)
	}
	if mapped.Telefone == nil || *mapped.Telefone != "11987654321" {
		t.Fatalf("telefone: %v", mapped.Telefone)
	}
	if mapped.Quantity != 3 {
		t.Fatalf("quantity: %d", mapped.Quantity)
	}
	if mapped.FreightValue == nil || *mapped.FreightValue != 1250 {
		t.Fatalf("freight: %v", mapped.FreightValue)
	}
	if mapped.PrevisaoColeta != "2024-03-25" {
		t.Fatalf("previsao: %s", mapped.PrevisaoColeta)
	}
	if mapped.StatusColeta != internal.StatusAgendada {
		t.Fatalf("status: %s", mapped.StatusColeta)
	}
	if mapped.Type != internal.TypeEntrega {
		t.Fatalf("type: %s", mapped.Type)
	}
}

func TestMapCollectionRowDefaults(t *testing.T) {
	mapped := MapCollectionRow(tabular.Row{"cliente": "Acme", "quantidade": "zero ou mais", "status": "em rota", "tipo": ""})
	if mapped.Quantity != 1 {
		t.Fatalf("quantity default: %d", mapped.Quantity)
	}
	if mapped.FreightValue != nil {
		t.Fatalf("freight default: %v", mapped.FreightValue)
	}
	if mapped.StatusColeta != internal.StatusPendente {
		t.Fatalf("status default: %s", mapped.StatusColeta)
	}
	if mapped.Type != internal.TypeColeta {
		t.Fatalf("type default: %s", mapped.Type)
	}
}

func TestMapCollectionRowsFilterAndSentinels(t *testing.T) {
	rows := []tabular.Row{
		{"cliente": "Acme"},
		{"observação": "linha vazia"},
		{"modelo": "Roteador R1"},
	}
	mapped := MapCollectionRows(rows)
	if len(mapped) != 2 {
		t.Fatalf("len=%d", len(mapped))
	}
	if mapped[0].EnderecoOrigem != internal.UnknownAddress {
		t.Fatalf("address sentinel: %q", mapped[0].EnderecoOrigem)
	}
	if mapped[1].Parceiro != internal.UnknownClient {
		t.Fatalf("client sentinel: %q", mapped[1].Parceiro)
	}
}

func TestMapProductRows(t *testing.T) {
	rows := []tabular.Row{
		{"código": "MD-01", "descrição": "Modem óptico"},
		{"código": "RT-07"},
		{"descrição": "sem código"},
	}
	mapped := MapProductRows(rows)
	if len(mapped) != 2 {
		t.Fatalf("len=%d", len(mapped))
	}
	if mapped[1].Description != "RT-07" {
		t.Fatalf("description should default to code: %q", mapped[1].Description)
	}
}

func TestMapProductRowsNumericCells(t *testing.T) {
	// JSON-decoded rows carry numbers as float64, XLSX rows sometimes
	// as int. Neither may drop the row.
	rows := []tabular.Row{
		{"código": float64(10045), "descrição": "Modem óptico"},
		{"código": 7731, "quantidade": float64(2)},
	}
	mapped := MapProductRows(rows)
	if len(mapped) != 2 {
		t.Fatalf("len=%d", len(mapped))
	}
	if mapped[0].Code != "10045" {
		t.Fatalf("code: %q", mapped[0].Code)
	}
	if mapped[1].Code != "7731" || mapped[1].Description != "7731" {
		t.Fatalf("code/description: %q %q", mapped[1].Code, mapped[1].Description)
	}
}

func TestMapClientRows(t *testing.T) {
	rows := []tabular.Row{
		{"razão social": "Acme Ltda", "cnpj": "12.345.678/0001-90", "telefone": "(11) 4002-8922"},
		{"cidade": "Campinas"},
	}
	mapped := MapClientRows(rows)
	if len(mapped) != 1 {
		t.Fatalf("len=%d", len(mapped))
	}
	if mapped[0].Phone == nil || *mapped[0].Phone != "1140028922" {
		t.Fatalf("phone: %v", mapped[0].Phone)
	}
}

func TestMapTechnicianRowNameSplit(t *testing.T) {
	mapped := MapTechnicianRow(tabular.Row{"nome": "João da Silva", "turno": "noturno"})
	if mapped.FirstName != "João" || mapped.LastName != "da Silva" {
		t.Fatalf("split: %q %q", mapped.FirstName, mapped.LastName)
	}
	if mapped.Shift != internal.ShiftNight {
		t.Fatalf("shift: %s", mapped.Shift)
	}

	blank := MapTechnicianRow(tabular.Row{})
	if blank.FirstName != "Tecnico" {
		t.Fatalf("default name: %q", blank.FirstName)
	}
	if blank.Shift != internal.ShiftDay {
		t.Fatalf("default shift: %s", blank.Shift)
	}
}

func TestMapTechnicianSupervisorRef(t *testing.T) {
	valid := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	mapped := MapTechnicianRow(tabular.Row{"nome": "Ana", "supervisor_id": valid})
	if mapped.SupervisorID == nil || *mapped.SupervisorID != valid {
		t.Fatalf("supervisor id: %v", mapped.SupervisorID)
	}

	garbage := MapTechnicianRow(tabular.Row{"nome": "Ana", "supervisor_id": "Carlos (gerente)"})
	if garbage.SupervisorID != nil {
		t.Fatalf("garbage supervisor id kept: %v", garbage.SupervisorID)
	}
}

func TestMapSupervisorRows(t *testing.T) {
	rows := []tabular.Row{
		{"nome": "Maria Souza", "perfil": "Administrador"},
		{"perfil": "standard"},
	}
	mapped := MapSupervisorRows(rows)
	if len(mapped) != 2 {
		t.Fatalf("len=%d", len(mapped))
	}
	if mapped[0].Role != internal.RoleAdmin {
		t.Fatalf("role: %s", mapped[0].Role)
	}
	if mapped[1].FirstName != "Supervisor" {
		t.Fatalf("default name: %q", mapped[1].FirstName)
	}
	if mapped[1].Role != internal.RoleStandard {
		t.Fatalf("role default: %s", mapped[1].Role)
	}
}
