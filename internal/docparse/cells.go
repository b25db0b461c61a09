package docparse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"coletaflow/internal"
	"coletaflow/internal/util"
)

// Grid is a 2D block of spreadsheet cell values: string, float64 or nil.
type Grid [][]any

// Selection is the sparse set of selected cell coordinates, keyed
// "<rowIndex>:<colIndex>".
type Selection map[string]struct{}

func SelectionKey(row, col int) string {
	return fmt.Sprintf("%d:%d", row, col)
}

type cellRef struct {
	row, col int
}

type labelRule struct {
	keywords []string
	apply    func(d *internal.ParsedCollectionData, s *docState, value any)
}

// Label vocabulary for header-field extraction. Substring matched,
// case-insensitive, in order: destination variants and the Sankhya
// contract have to fire before the generic terms they contain.
var cellLabelRules = []labelRule{
	{
		keywords: []string{"cnpj"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.CNPJ, cellText(value))
		},
	},
	{
		keywords: []string{"cep de destino", "cep destino"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.CEPDestino, cellText(value))
		},
	},
	{
		keywords: []string{"cep de origem", "cep origem", "cep"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.CEPOrigem, cellText(value))
		},
	},
	{
		keywords: []string{"número de destino", "numero de destino", "nº destino"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.DestinationAddressNumber, cellText(value))
		},
	},
	{
		keywords: []string{"número de origem", "numero de origem", "nº origem"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.OriginAddressNumber, cellText(value))
		},
	},
	{
		keywords: []string{"endereço de destino", "endereco de destino", "destino"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			text := cellText(value)
			setStringPtr(&d.EnderecoDestino, text)
			if cep := cepPattern.FindString(text); cep != "" && d.CEPDestino == nil {
				d.CEPDestino = util.StringPtr(cep)
			}
			if m := houseNumberPattern.FindStringSubmatch(text); m != nil && d.DestinationAddressNumber == nil {
				d.DestinationAddressNumber = util.StringPtr(m[1])
			}
		},
	},
	{
		keywords: []string{"endereço", "endereco"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			text := cellText(value)
			if d.EnderecoOrigem == "" {
				d.EnderecoOrigem = text
			}
			if cep := cepPattern.FindString(text); cep != "" && d.CEPOrigem == nil {
				d.CEPOrigem = util.StringPtr(cep)
			}
			if m := houseNumberPattern.FindStringSubmatch(text); m != nil && d.OriginAddressNumber == nil {
				d.OriginAddressNumber = util.StringPtr(m[1])
			}
		},
	},
	{
		keywords: []string{"controle cliente", "controle", "pedido", "ordem de compra"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.ClientControl, cellText(value))
		},
	},
	{
		keywords: []string{"código do parceiro", "codigo do parceiro", "cod. parceiro"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.PartnerCode, digitsOrFull(cellText(value)))
		},
	},
	{
		keywords: []string{"cliente", "parceiro"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			if d.Parceiro == "" {
				d.Parceiro = cellText(value)
			}
		},
	},
	{
		keywords: []string{"contato"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.Contato, cellText(value))
		},
	},
	{
		keywords: []string{"telefone", "fone", "celular"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			if d.Telefone == nil {
				d.Telefone = util.CleanPhone(cellText(value))
			}
		},
	},
	{
		keywords: []string{"e-mail", "email"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.Email, cellText(value))
		},
	},
	{
		keywords: []string{"data da coleta", "previsão de coleta", "previsao de coleta", "data prevista", "data"},
		apply: func(d *internal.ParsedCollectionData, s *docState, value any) {
			if s.dateSet {
				return
			}
			d.PrevisaoColeta = util.NormalizeDate(value)
			s.dateSet = true
		},
	},
	{
		keywords: []string{"responsável", "responsavel", "técnico", "tecnico"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.Responsavel, cellText(value))
		},
	},
	{
		keywords: []string{"observação", "observacao", "obs"},
		apply: func(_ *internal.ParsedCollectionData, s *docState, value any) {
			if text := cellText(value); text != "" {
				s.obs = append(s.obs, text)
			}
		},
	},
	{
		keywords: []string{"contrato sankhya", "nf glbl"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.NFGlbl, digitsOrFull(cellText(value)))
		},
	},
	{
		keywords: []string{"contrato"},
		apply: func(d *internal.ParsedCollectionData, _ *docState, value any) {
			setStringPtr(&d.Contrato, digitsOrFull(cellText(value)))
		},
	},
}

// ParseSelectedCells infers one collection record from the cells the
// user highlighted: label/value pairs for the header fields plus an
// embedded item table.
func ParseSelectedCells(grid Grid, selected Selection) internal.ParsedCollectionData {
	data := internal.ParsedCollectionData{
		StatusColeta: internal.StatusPendente,
		Type:         internal.TypeColeta,
		Items:        ExtractItems(grid, selected),
	}
	state := docState{}

	for _, ref := range sortedRefs(selected) {
		text := cellText(cellAt(grid, ref.row, ref.col))
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)

		for _, rule := range cellLabelRules {
			if !matchesAny(lower, rule.keywords) {
				continue
			}
			value := labelValue(grid, ref, text)
			if value != nil {
				rule.apply(&data, &state, value)
			}
			break
		}
	}

	finalizeDocument(&data, &state)
	return data
}

// labelValue takes the text after a colon inside the label cell. For a
// bare label it takes the cell one column to the right.
func labelValue(grid Grid, ref cellRef, text string) any {
	if idx := strings.Index(text, ":"); idx >= 0 {
		if after := strings.TrimSpace(text[idx+1:]); after != "" {
			return after
		}
	}
	return cellAt(grid, ref.row, ref.col+1)
}

// ExtractItems pulls the item table out of a selection. Tier one looks
// for explicit header cells; only when no headers exist does the
// statistical column-role fallback take over.
func ExtractItems(grid Grid, selected Selection) []internal.ParsedItem {
	refs := sortedRefs(selected)
	if items, ok := itemsFromHeaders(grid, refs); ok {
		return items
	}
	return itemsFromColumnRoles(grid, refs)
}

// itemsFromHeaders scans the selection for a description header cell
// and a "quant. inst." header cell; the row after the description
// header is the first data row.
func itemsFromHeaders(grid Grid, refs []cellRef) ([]internal.ParsedItem, bool) {
	descCol, qtyCol, dataStart := -1, -1, -1
	for _, ref := range refs {
		lower := strings.ToLower(cellText(cellAt(grid, ref.row, ref.col)))
		if lower == "" {
			continue
		}
		if descCol < 0 && strings.Contains(lower, "descri") {
			descCol = ref.col
			dataStart = ref.row + 1
		}
		if qtyCol < 0 && strings.Contains(lower, "quant") && strings.Contains(lower, "inst") {
			qtyCol = ref.col
		}
	}
	if descCol < 0 || qtyCol < 0 {
		return nil, false
	}

	member := map[cellRef]struct{}{}
	for _, ref := range refs {
		member[ref] = struct{}{}
	}

	items := []internal.ParsedItem{}
	for _, row := range selectedRows(refs) {
		if row < dataStart {
			continue
		}
		// A data row counts only when both its description and
		// quantity cells are part of the selection.
		if _, ok := member[cellRef{row, descCol}]; !ok {
			continue
		}
		if _, ok := member[cellRef{row, qtyCol}]; !ok {
			continue
		}
		description := cellText(cellAt(grid, row, descCol))
		quantity := cellQuantity(cellAt(grid, row, qtyCol))
		if description == "" || quantity <= 0 {
			continue
		}
		items = append(items, internal.ParsedItem{
			ProductCode:        description,
			ProductDescription: description,
			Quantity:           quantity,
		})
	}
	return items, true
}

// itemsFromColumnRoles infers which selected column holds descriptions
// and which holds quantities by counting textual vs numeric values.
// Candidate pairs are walked in ascending column order with strict
// improvement required, so ties resolve to the lowest column indices
// regardless of map iteration order.
func itemsFromColumnRoles(grid Grid, refs []cellRef) []internal.ParsedItem {
	textCount := map[int]int{}
	numCount := map[int]int{}
	for _, ref := range refs {
		value := cellAt(grid, ref.row, ref.col)
		text := cellText(value)
		if text == "" {
			continue
		}
		if isNumericValue(value) {
			numCount[ref.col]++
		} else {
			textCount[ref.col]++
		}
	}

	cols := selectedCols(refs)
	descCol, qtyCol := -1, -1
	bestText, bestNum := 0, 0
	for _, a := range cols {
		if textCount[a] <= numCount[a] {
			continue
		}
		for _, b := range cols {
			if a == b || numCount[b] <= textCount[b] {
				continue
			}
			if textCount[a] > bestText || (textCount[a] == bestText && numCount[b] > bestNum) {
				descCol, qtyCol = a, b
				bestText, bestNum = textCount[a], numCount[b]
			}
		}
	}
	if descCol < 0 || qtyCol < 0 {
		return []internal.ParsedItem{}
	}

	items := []internal.ParsedItem{}
	for _, row := range selectedRows(refs) {
		description := cellText(cellAt(grid, row, descCol))
		quantity := cellQuantity(cellAt(grid, row, qtyCol))
		if description == "" || quantity <= 0 {
			continue
		}
		items = append(items, internal.ParsedItem{
			ProductCode:        description,
			ProductDescription: description,
			Quantity:           quantity,
		})
	}
	return items
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func sortedRefs(selected Selection) []cellRef {
	refs := make([]cellRef, 0, len(selected))
	for key := range selected {
		parts := strings.SplitN(key, ":", 2)
		if len(parts) != 2 {
			continue
		}
		row, errR := strconv.Atoi(parts[0])
		col, errC := strconv.Atoi(parts[1])
		if errR != nil || errC != nil || row < 0 || col < 0 {
			continue
		}
		refs = append(refs, cellRef{row: row, col: col})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].row != refs[j].row {
			return refs[i].row < refs[j].row
		}
		return refs[i].col < refs[j].col
	})
	return refs
}

func selectedRows(refs []cellRef) []int {
	seen := map[int]struct{}{}
	rows := []int{}
	for _, ref := range refs {
		if _, ok := seen[ref.row]; ok {
			continue
		}
		seen[ref.row] = struct{}{}
		rows = append(rows, ref.row)
	}
	return rows
}

func selectedCols(refs []cellRef) []int {
	seen := map[int]struct{}{}
	cols := []int{}
	for _, ref := range refs {
		if _, ok := seen[ref.col]; ok {
			continue
		}
		seen[ref.col] = struct{}{}
		cols = append(cols, ref.col)
	}
	sort.Ints(cols)
	return cols
}

func cellAt(grid Grid, row, col int) any {
	if row < 0 || row >= len(grid) {
		return nil
	}
	if col < 0 || col >= len(grid[row]) {
		return nil
	}
	return grid[row][col]
}

func cellText(value any) string {
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

func cellQuantity(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return 0
}

func isNumericValue(value any) bool {
	switch v := value.(type) {
	case float64, int:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64)
		return err == nil
	default:
		return false
	}
}
