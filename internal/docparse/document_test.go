package docparse

import (
	"strings"
	"testing"
	"time"

	"coletaflow/internal"
)

const sampleDocument = `Cliente: Acme Telecom LTDA
Contato: Maria Souza
Código do parceiro: P-4521
Nr. contrato Sankhya: CT-88321
Nr. contrato: 5512
Endereço: Rua das Flores, 120 - Centro, 13010-200
Telefone: (11) 98765-4321
E-mail: maria@acme.com.br
Data da coleta: 25/03/2024
Técnico responsável: Carlos Lima
Pedido: 99887
Observação: Retirar na portaria

Descrição do equipamento    Quant. Inst.
1 Modem X200 2
2 Roteador R1 1
3 Cabo de força 0
Obs.: Conferir etiquetas
`

func TestParseDocumentText(t *testing.T) {
	data := ParseDocumentText(sampleDocument)

	if data.Parceiro != "Acme Telecom LTDA" {
		t.Fatalf("parceiro: %q", data.Parceiro)
	}
	if data.Contato == nil || *data.Contato != "Maria Souza" {
		t.Fatalf("contato: %v", data.Contato)
	}
	if data.PartnerCode == nil || *data.PartnerCode != "4521" {
		t.Fatalf("partner code: %v", data.PartnerCode)
	}
	if data.NFGlbl == nil || *data.NFGlbl != "88321" {
		t.Fatalf("nf_glbl: %v", data.NFGlbl)
	}
	if data.Contrato == nil || *data.Contrato != "5512" {
		t.Fatalf("contrato: %v", data.Contrato)
	}
	if data.EnderecoOrigem != "Rua das Flores, 120 - Centro, 13010-200" {
		t.Fatalf("endereço: %q", data.EnderecoOrigem)
	}
	if data.CEPOrigem == nil || *data.CEPOrigem != "13010-200" {
		t.Fatalf("cep: %v", data.CEPOrigem)
	}
	if data.OriginAddressNumber == nil || *data.OriginAddressNumber != "120" {
		t.Fatalf("number: %v", data.OriginAddressNumber)
	}
	if data.Telefone == nil || *data.Telefone != "11987654321" {
		t.Fatalf("telefone: %v", data.Telefone)
	}
	if data.Email == nil || *data.Email != "maria@acme.com.br" {
		t.Fatalf("email: %v", data.Email)
	}
	if data.PrevisaoColeta != "2024-03-25" {
		t.Fatalf("previsão: %s", data.PrevisaoColeta)
	}
	if data.Responsavel == nil || *data.Responsavel != "Carlos Lima" {
		t.Fatalf("responsável: %v", data.Responsavel)
	}
	if data.ClientControl == nil || *data.ClientControl != "99887" {
		t.Fatalf("client control: %v", data.ClientControl)
	}
	if data.Observacao == nil || *data.Observacao != "Retirar na portaria\nConferir etiquetas" {
		t.Fatalf("observação: %v", data.Observacao)
	}
	if data.StatusColeta != internal.StatusPendente || data.Type != internal.TypeColeta {
		t.Fatalf("enum defaults: %s %s", data.StatusColeta, data.Type)
	}
}

func TestParseDocumentTextItems(t *testing.T) {
	data := ParseDocumentText(sampleDocument)

	if len(data.Items) != 2 {
		t.Fatalf("items len=%d", len(data.Items))
	}
	if data.Items[0].ProductCode != "Modem X200" || data.Items[0].Quantity != 2 {
		t.Fatalf("first item: %+v", data.Items[0])
	}
	if data.Items[1].ProductCode != "Roteador R1" || data.Items[1].Quantity != 1 {
		t.Fatalf("second item: %+v", data.Items[1])
	}
	if data.ModeloAparelho == nil || *data.ModeloAparelho != "Modem X200" {
		t.Fatalf("modelo aparelho: %v", data.ModeloAparelho)
	}
}

func TestParseDocumentTextZeroQuantityExcluded(t *testing.T) {
	text := "Descrição Quant. Inst.\n1 Modem 2\n2 Roteador 0\n"
	data := ParseDocumentText(text)
	if len(data.Items) != 1 {
		t.Fatalf("items len=%d", len(data.Items))
	}
	if data.Items[0].ProductCode != "Modem" || data.Items[0].Quantity != 2 {
		t.Fatalf("item: %+v", data.Items[0])
	}
}

func TestParseDocumentTextDefaults(t *testing.T) {
	data := ParseDocumentText("")

	if data.Parceiro != internal.UnknownClient {
		t.Fatalf("parceiro: %q", data.Parceiro)
	}
	if data.EnderecoOrigem != internal.UnknownAddress {
		t.Fatalf("endereço: %q", data.EnderecoOrigem)
	}
	if data.PrevisaoColeta != time.Now().Format("2006-01-02") {
		t.Fatalf("previsão: %s", data.PrevisaoColeta)
	}
	if len(data.Items) != 0 {
		t.Fatalf("items: %v", data.Items)
	}
	if data.ModeloAparelho != nil {
		t.Fatalf("modelo: %v", data.ModeloAparelho)
	}
}

func TestParseDocumentTextNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t\n   ",
		"texto sem rótulo nenhum",
		strings.Repeat(":", 500),
		"Descrição Quant. Inst.\nlinha que não é item\n",
	}
	for _, input := range inputs {
		data := ParseDocumentText(input)
		if data.UniqueNumber == "" {
			t.Fatalf("missing unique number for %q", input)
		}
	}
}

func TestParseDocumentTextClientControlPrecision(t *testing.T) {
	loose := ParseDocumentText("Observação: Pedido importante para hoje\n")
	if loose.ClientControl != nil {
		t.Fatalf("client control from observação: %v", loose.ClientControl)
	}
	strict := ParseDocumentText("Pedido: 12345\n")
	if strict.ClientControl == nil || *strict.ClientControl != "12345" {
		t.Fatalf("client control: %v", strict.ClientControl)
	}
}

func TestParseDocumentTextFirstDateLabelWins(t *testing.T) {
	text := "Data da coleta: 01/02/2024\nData prevista: 05/06/2024\n"
	data := ParseDocumentText(text)
	if data.PrevisaoColeta != "2024-02-01" {
		t.Fatalf("previsão: %s", data.PrevisaoColeta)
	}
}

func TestParseDocumentTextContractFallback(t *testing.T) {
	data := ParseDocumentText("Nr. contrato: SEM/NUMERO\n")
	if data.Contrato == nil || *data.Contrato != "SEM/NUMERO" {
		t.Fatalf("contrato fallback: %v", data.Contrato)
	}
}

func TestParseDocumentTextPhoneInNoisyLine(t *testing.T) {
	data := ParseDocumentText("Telefone: falar com recepção (11) 4002-8922 ramal\n")
	if data.Telefone == nil || *data.Telefone != "1140028922" {
		t.Fatalf("telefone: %v", data.Telefone)
	}
}

func TestParseDocumentTextFreshUniqueNumbers(t *testing.T) {
	a := ParseDocumentText(sampleDocument)
	b := ParseDocumentText(sampleDocument)
	if a.UniqueNumber == b.UniqueNumber {
		t.Fatalf("unique numbers repeated: %s", a.UniqueNumber)
	}
}
