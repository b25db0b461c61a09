// Package importer maps generic tabular rows onto the typed import
// shapes the persistence layer expects. Spreadsheets arrive with
// headers in any language and spelling, so every field is resolved
// through an ordered alias list instead of fixed column access.
package importer

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"coletaflow/internal"
	"coletaflow/internal/tabular"
	"coletaflow/internal/util"
)

var (
	aliasParceiro       = []string{"parceiro", "cliente", "nome do cliente", "client", "partner"}
	aliasClientControl  = []string{"controle cliente", "controle", "pedido", "nº pedido", "numero do pedido", "client_control"}
	aliasEnderecoOrigem = []string{"endereço de origem", "endereco de origem", "endereço", "endereco", "origem", "address"}
	aliasCEPOrigem      = []string{"cep de origem", "cep origem", "cep"}
	aliasEnderecoDest   = []string{"endereço de destino", "endereco de destino", "destino"}
	aliasCEPDest        = []string{"cep de destino", "cep destino"}
	aliasContato        = []string{"contato", "contact"}
	aliasTelefone       = []string{"telefone", "fone", "celular", "phone"}
	aliasEmail          = []string{"e-mail", "email"}
	aliasModelo         = []string{"modelo aparelho", "modelo", "equipamento", "aparelho"}
	aliasQuantidade     = []string{"quantidade", "qtde", "qtd", "quant", "quantity"}
	aliasFrete          = []string{"valor do frete", "valor frete", "frete", "freight"}
	aliasPrevisao       = []string{"previsão de coleta", "previsao de coleta", "data da coleta", "data prevista", "data"}
	aliasObservacao     = []string{"observação", "observacao", "observações", "observacoes", "obs"}
	aliasStatus         = []string{"status coleta", "status", "situação", "situacao"}
	aliasTipo           = []string{"tipo", "type", "operação", "operacao"}

	aliasCodigo    = []string{"código", "codigo", "cod.", "cod", "code", "sku"}
	aliasDescricao = []string{"descrição", "descricao", "description", "produto", "nome"}
	aliasMarca     = []string{"marca", "fabricante", "brand"}
	aliasModel     = []string{"modelo", "model"}

	aliasNome       = []string{"razão social", "razao social", "nome", "cliente", "name"}
	aliasCNPJ       = []string{"cnpj"}
	aliasCidade     = []string{"cidade", "município", "municipio", "city"}
	aliasFirstName  = []string{"primeiro nome", "first name", "first_name"}
	aliasLastName   = []string{"sobrenome", "last name", "last_name"}
	aliasFullName   = []string{"nome completo", "nome", "name", "técnico", "tecnico", "supervisor"}
	aliasTurno      = []string{"turno", "shift"}
	aliasPerfil     = []string{"perfil", "função", "funcao", "role"}
	aliasSupervisor = []string{"supervisor_id", "id supervisor", "id do supervisor", "supervisorid"}
)

func MapCollectionRow(row tabular.Row) internal.CollectionImportRow {
	quantity := util.ParseIntOr(fieldValue(row, aliasQuantidade), 1)
	if quantity <= 0 {
		quantity = 1
	}

	return internal.CollectionImportRow{
		Parceiro:        stringField(row, aliasParceiro),
		ClientControl:   stringPtrField(row, aliasClientControl),
		EnderecoOrigem:  stringField(row, aliasEnderecoOrigem),
		CEPOrigem:       stringPtrField(row, aliasCEPOrigem),
		EnderecoDestino: stringPtrField(row, aliasEnderecoDest),
		CEPDestino:      stringPtrField(row, aliasCEPDest),
		Contato:         stringPtrField(row, aliasContato),
		Telefone:        phoneField(row, aliasTelefone),
		Email:           stringPtrField(row, aliasEmail),
		ModeloAparelho:  stringPtrField(row, aliasModelo),
		Quantity:        quantity,
		FreightValue:    util.ParseFloatPtr(fieldValue(row, aliasFrete)),
		PrevisaoColeta:  util.NormalizeDate(fieldValue(row, aliasPrevisao)),
		Observacao:      stringPtrField(row, aliasObservacao),
		StatusColeta:    MatchStatus(stringField(row, aliasStatus)),
		Type:            MatchType(stringField(row, aliasTipo)),
	}
}

// MapCollectionRows drops rows that identify neither a partner nor an
// appliance; everything else is recoverable through sentinels.
func MapCollectionRows(rows []tabular.Row) []internal.CollectionImportRow {
	out := make([]internal.CollectionImportRow, 0, len(rows))
	for _, row := range rows {
		mapped := MapCollectionRow(row)
		if mapped.Parceiro == "" && mapped.ModeloAparelho == nil {
			continue
		}
		if mapped.Parceiro == "" {
			mapped.Parceiro = internal.UnknownClient
		}
		if mapped.EnderecoOrigem == "" {
			mapped.EnderecoOrigem = internal.UnknownAddress
		}
		out = append(out, mapped)
	}
	return out
}

func MapProductRow(row tabular.Row) internal.ProductImportRow {
	code := stringField(row, aliasCodigo)
	description := stringField(row, aliasDescricao)
	if description == "" {
		description = code
	}
	return internal.ProductImportRow{
		Code:        code,
		Description: description,
		Brand:       stringPtrField(row, aliasMarca),
		Model:       stringPtrField(row, aliasModel),
	}
}

func MapProductRows(rows []tabular.Row) []internal.ProductImportRow {
	out := make([]internal.ProductImportRow, 0, len(rows))
	for _, row := range rows {
		mapped := MapProductRow(row)
		if mapped.Code == "" {
			continue
		}
		out = append(out, mapped)
	}
	return out
}

func MapClientRow(row tabular.Row) internal.ClientImportRow {
	return internal.ClientImportRow{
		Name:    stringField(row, aliasNome),
		CNPJ:    stringPtrField(row, aliasCNPJ),
		Email:   stringPtrField(row, aliasEmail),
		Phone:   phoneField(row, aliasTelefone),
		Address: stringPtrField(row, aliasEnderecoOrigem),
		CEP:     stringPtrField(row, aliasCEPOrigem),
		City:    stringPtrField(row, aliasCidade),
		Contact: stringPtrField(row, aliasContato),
	}
}

func MapClientRows(rows []tabular.Row) []internal.ClientImportRow {
	out := make([]internal.ClientImportRow, 0, len(rows))
	for _, row := range rows {
		mapped := MapClientRow(row)
		if mapped.Name == "" {
			continue
		}
		out = append(out, mapped)
	}
	return out
}

func MapTechnicianRow(row tabular.Row) internal.TechnicianImportRow {
	first, last := personName(row, "Tecnico")
	return internal.TechnicianImportRow{
		FirstName:    first,
		LastName:     last,
		Email:        stringPtrField(row, aliasEmail),
		Phone:        phoneField(row, aliasTelefone),
		Shift:        matchShift(stringField(row, aliasTurno)),
		SupervisorID: supervisorRef(row),
	}
}

func MapTechnicianRows(rows []tabular.Row) []internal.TechnicianImportRow {
	out := make([]internal.TechnicianImportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, MapTechnicianRow(row))
	}
	return out
}

func MapSupervisorRow(row tabular.Row) internal.SupervisorImportRow {
	first, last := personName(row, "Supervisor")
	return internal.SupervisorImportRow{
		FirstName: first,
		LastName:  last,
		Email:     stringPtrField(row, aliasEmail),
		Phone:     phoneField(row, aliasTelefone),
		Role:      matchRole(stringField(row, aliasPerfil)),
	}
}

func MapSupervisorRows(rows []tabular.Row) []internal.SupervisorImportRow {
	out := make([]internal.SupervisorImportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, MapSupervisorRow(row))
	}
	return out
}

// MatchStatus resolves a free-text status against the closed enum;
// anything unrecognized is pendente.
func MatchStatus(value string) internal.CollectionStatus {
	switch normalizeEnum(value) {
	case "concluida", "concluída", "concluido", "concluído":
		return internal.StatusConcluida
	case "agendada", "agendado":
		return internal.StatusAgendada
	default:
		return internal.StatusPendente
	}
}

func MatchType(value string) internal.CollectionType {
	if normalizeEnum(value) == "entrega" {
		return internal.TypeEntrega
	}
	return internal.TypeColeta
}

func matchShift(value string) internal.TechnicianShift {
	switch normalizeEnum(value) {
	case "night", "noite", "noturno":
		return internal.ShiftNight
	default:
		return internal.ShiftDay
	}
}

func matchRole(value string) internal.SupervisorRole {
	switch normalizeEnum(value) {
	case "admin", "administrador", "administradora":
		return internal.RoleAdmin
	default:
		return internal.RoleStandard
	}
}

// supervisorRef keeps only UUID-shaped references. Free-text garbage in
// this column must never reach the database as a foreign key.
func supervisorRef(row tabular.Row) *string {
	value := stringField(row, aliasSupervisor)
	if value == "" {
		return nil
	}
	if !util.IsUUID(value) {
		log.Printf("importer: dropping invalid supervisor_id %q", value)
		return nil
	}
	return &value
}

func personName(row tabular.Row, defaultFirst string) (string, string) {
	first := stringField(row, aliasFirstName)
	last := stringField(row, aliasLastName)
	if first != "" {
		return first, last
	}

	full := stringField(row, aliasFullName)
	parts := strings.Fields(full)
	switch {
	case len(parts) == 0:
		return defaultFirst, ""
	case len(parts) == 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func fieldValue(row tabular.Row, aliases []string) any {
	for _, alias := range aliases {
		if value, ok := row[alias]; ok {
			return value
		}
	}
	return nil
}

func stringField(row tabular.Row, aliases []string) string {
	for _, alias := range aliases {
		value, ok := row[alias]
		if !ok {
			continue
		}
		if s := asString(value); s != "" {
			return s
		}
	}
	return ""
}

func stringPtrField(row tabular.Row, aliases []string) *string {
	if s := stringField(row, aliases); s != "" {
		return &s
	}
	return nil
}

func phoneField(row tabular.Row, aliases []string) *string {
	return util.CleanPhone(stringField(row, aliases))
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func normalizeEnum(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
