// Package docparse infers structured coleta/entrega records from
// unstructured inputs: pasted document dumps and spreadsheet cell
// selections. Parsing is best-effort and never fails; missing fields
// fall back to sentinels a human reviews before anything is saved.
package docparse

import (
	"regexp"
	"strconv"
	"strings"

	"coletaflow/internal"
	"coletaflow/internal/util"
)

var (
	itemLinePattern    = regexp.MustCompile(`^(\d+)\s+(.+?)\s+(\d+)$`)
	cepPattern         = regexp.MustCompile(`\d{5}-?\d{3}`)
	houseNumberPattern = regexp.MustCompile(`,\s*(?:nº|n°|no\.?|num\.?)?\s*(\d+)`)
	digitRunPattern    = regexp.MustCompile(`\d+`)
	phoneRunPattern    = regexp.MustCompile(`\(?\d{2,3}\)?[\s.-]?\d{4,5}[\s.-]?\d{4}`)
)

// Markers that close the items table and return the parser to the
// header region. The line itself is still offered to the header rules.
var itemsExitMarkers = []string{
	"recolhimento:",
	"obs.:",
	"data do recolhimento:",
	"técnico responsável:",
	"tecnico responsável:",
	"tecnico responsavel:",
	"nr. contrato:",
	"cliente:",
}

// client_control is recognized only from this closed set. Matching any
// colon-containing line here used to swallow unrelated fields, so the
// rule trades recall for precision.
var clientControlPrefixes = []string{
	"controle cliente:",
	"controle:",
	"nº pedido:",
	"no pedido:",
	"número do pedido:",
	"numero do pedido:",
	"pedido:",
	"ordem de compra:",
	"oc:",
}

type docState struct {
	inItems bool
	dateSet bool
	obs     []string
}

type headerRule struct {
	prefixes []string
	apply    func(d *internal.ParsedCollectionData, s *docState, value, line string)
}

// Ordered: more specific prefixes before the generic ones they contain
// ("contrato sankhya" before "contrato", "endereço de destino" before
// "endereço"). First match consumes the line.
var headerRules = []headerRule{
	{
		prefixes: []string{"contato:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.Contato, value)
		},
	},
	{
		prefixes: []string{"cliente:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			if d.Parceiro == "" {
				d.Parceiro = value
			}
		},
	},
	{
		prefixes: []string{"código do parceiro:", "codigo do parceiro:", "cod. parceiro:", "cod parceiro:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.PartnerCode, digitsOrFull(value))
		},
	},
	{
		prefixes: []string{"nr. contrato sankhya:", "contrato sankhya:", "nf glbl:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.NFGlbl, digitsOrFull(value))
		},
	},
	{
		prefixes: []string{"nr. contrato:", "contrato:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.Contrato, digitsOrFull(value))
		},
	},
	{
		prefixes: []string{"endereço de destino:", "endereco de destino:", "destino:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.EnderecoDestino, value)
			if cep := cepPattern.FindString(value); cep != "" && d.CEPDestino == nil {
				d.CEPDestino = util.StringPtr(cep)
			}
			if m := houseNumberPattern.FindStringSubmatch(value); m != nil && d.DestinationAddressNumber == nil {
				d.DestinationAddressNumber = util.StringPtr(m[1])
			}
		},
	},
	{
		prefixes: []string{"endereço de origem:", "endereco de origem:", "endereço:", "endereco:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			if d.EnderecoOrigem == "" {
				d.EnderecoOrigem = value
			}
			if cep := cepPattern.FindString(value); cep != "" && d.CEPOrigem == nil {
				d.CEPOrigem = util.StringPtr(cep)
			}
			if m := houseNumberPattern.FindStringSubmatch(value); m != nil && d.OriginAddressNumber == nil {
				d.OriginAddressNumber = util.StringPtr(m[1])
			}
		},
	},
	{
		prefixes: []string{"telefone:", "fone:", "tel:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, line string) {
			phone := util.CleanPhone(value)
			if phone == nil {
				// The labeled value may be prose; look for a digit run
				// anywhere in the line instead.
				phone = util.CleanPhone(phoneRunPattern.FindString(line))
			}
			if d.Telefone == nil {
				d.Telefone = phone
			}
		},
	},
	{
		prefixes: []string{"e-mail:", "email:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.Email, value)
		},
	},
	{
		prefixes: []string{"cnpj:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.CNPJ, value)
		},
	},
	{
		prefixes: []string{"data da coleta:", "previsão de coleta:", "previsao de coleta:", "data prevista:"},
		apply: func(d *internal.ParsedCollectionData, s *docState, value, _ string) {
			if s.dateSet {
				return
			}
			d.PrevisaoColeta = util.NormalizeDate(value)
			s.dateSet = true
		},
	},
	{
		prefixes: []string{"técnico responsável:", "tecnico responsável:", "tecnico responsavel:", "responsável:", "responsavel:"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.Responsavel, value)
		},
	},
	{
		prefixes: clientControlPrefixes,
		apply: func(d *internal.ParsedCollectionData, _ *docState, value, _ string) {
			setStringPtr(&d.ClientControl, value)
		},
	},
	{
		prefixes: []string{"observação:", "observacao:", "obs.:", "obs:"},
		apply: func(_ *internal.ParsedCollectionData, s *docState, value, _ string) {
			if value != "" {
				s.obs = append(s.obs, value)
			}
		},
	},
}

// ParseDocumentText runs a single line-oriented pass over a pasted
// document. Unmatched lines are skipped; the function never fails.
func ParseDocumentText(text string) internal.ParsedCollectionData {
	data := internal.ParsedCollectionData{
		StatusColeta: internal.StatusPendente,
		Type:         internal.TypeColeta,
		Items:        []internal.ParsedItem{},
	}
	state := docState{}

	for _, rawLine := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if state.inItems {
			if hasItemsExitMarker(lower) {
				state.inItems = false
			} else {
				if item, ok := parseItemLine(line); ok {
					data.Items = append(data.Items, item)
				}
				continue
			}
		}

		if isItemsTableHeader(lower) {
			state.inItems = true
			continue
		}

		applyHeaderRules(&data, &state, line, lower)
	}

	finalizeDocument(&data, &state)
	return data
}

func applyHeaderRules(d *internal.ParsedCollectionData, s *docState, line, lower string) {
	for _, rule := range headerRules {
		for _, prefix := range rule.prefixes {
			if strings.HasPrefix(lower, prefix) {
				value := strings.TrimSpace(line[len(prefix):])
				rule.apply(d, s, value, line)
				return
			}
		}
	}
}

// parseItemLine matches "<index> <description> <quantity>". Items with
// a non-positive quantity or an empty description are not emitted.
func parseItemLine(line string) (internal.ParsedItem, bool) {
	m := itemLinePattern.FindStringSubmatch(line)
	if m == nil {
		return internal.ParsedItem{}, false
	}
	description := strings.TrimSpace(m[2])
	quantity, err := strconv.Atoi(m[3])
	if err != nil || quantity <= 0 || description == "" {
		return internal.ParsedItem{}, false
	}
	return internal.ParsedItem{
		ProductCode:        description,
		ProductDescription: description,
		Quantity:           quantity,
	}, true
}

func isItemsTableHeader(lower string) bool {
	return strings.Contains(lower, "descri") &&
		strings.Contains(lower, "quant") &&
		strings.Contains(lower, "inst")
}

func hasItemsExitMarker(lower string) bool {
	for _, marker := range itemsExitMarkers {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}

func finalizeDocument(d *internal.ParsedCollectionData, s *docState) {
	if len(s.obs) > 0 {
		d.Observacao = util.StringPtr(strings.Join(s.obs, "\n"))
	}
	if strings.TrimSpace(d.Parceiro) == "" {
		d.Parceiro = internal.UnknownClient
	}
	if strings.TrimSpace(d.EnderecoOrigem) == "" {
		d.EnderecoOrigem = internal.UnknownAddress
	}
	if d.PrevisaoColeta == "" {
		d.PrevisaoColeta = util.NormalizeDate(nil)
	}
	if len(d.Items) > 0 {
		d.ModeloAparelho = util.StringPtr(d.Items[0].ProductCode)
		d.ModeloAparelhoDescription = util.StringPtr(d.Items[0].ProductDescription)
	}
	d.UniqueNumber = util.NewUniqueNumber("col")
}

func setStringPtr(target **string, value string) {
	value = strings.TrimSpace(value)
	if value == "" || *target != nil {
		return
	}
	*target = util.StringPtr(value)
}

// digitsOrFull keeps only the digits of a labeled value, falling back
// to the full value when it carries no digits at all. Non-numeric
// identifiers pass through rather than being dropped.
func digitsOrFull(value string) string {
	if digits := strings.Join(digitRunPattern.FindAllString(value, -1), ""); digits != "" {
		return digits
	}
	return value
}
