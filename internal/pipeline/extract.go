package pipeline

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"coletaflow/internal"
	"coletaflow/internal/docparse"
)

// ExtractFromMailRaw parses a stored .eml into one collection record.
// Every MIME part that can carry the request (plain text, HTML tables,
// xlsx and pdf attachments) is parsed independently; the candidate with
// the most recovered fields wins.
func ExtractFromMailRaw(raw []byte) (internal.ParsedCollectionData, string, string, []string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return internal.ParsedCollectionData{}, "", "", nil, err
	}

	candidates := []internal.ParsedCollectionData{}
	if strings.TrimSpace(env.Text) != "" {
		candidates = append(candidates, docparse.ParseDocumentText(env.Text))
	}
	if strings.TrimSpace(env.HTML) != "" {
		if data, ok := documentFromHTML(env.HTML); ok {
			candidates = append(candidates, data)
		}
	}

	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)
		lower := strings.ToLower(filename)

		if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
			if data, ok := documentFromXLSX(att.Content); ok {
				candidates = append(candidates, data)
			}
		}
		if strings.HasSuffix(lower, ".pdf") {
			if data, ok := documentFromPDF(att.Content); ok {
				candidates = append(candidates, data)
			}
		}
	}

	best := bestCandidate(candidates)
	return best, env.GetHeader("Subject"), env.Text, attachmentNames, nil
}

// documentFromHTML flattens every table in the HTML body into a grid
// and runs the cell parser over all of it.
func documentFromHTML(html string) (internal.ParsedCollectionData, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return internal.ParsedCollectionData{}, false
	}

	grid := docparse.Grid{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []any{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				grid = append(grid, cells)
			}
		})
	})
	if len(grid) == 0 {
		return internal.ParsedCollectionData{}, false
	}

	return docparse.ParseSelectedCells(grid, selectWholeGrid(grid)), true
}

func documentFromXLSX(content []byte) (internal.ParsedCollectionData, bool) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return internal.ParsedCollectionData{}, false
	}
	defer f.Close()

	grid := docparse.Grid{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			cells := make([]any, 0, len(row))
			for _, cell := range row {
				cells = append(cells, strings.TrimSpace(cell))
			}
			grid = append(grid, cells)
		}
	}
	if len(grid) == 0 {
		return internal.ParsedCollectionData{}, false
	}

	return docparse.ParseSelectedCells(grid, selectWholeGrid(grid)), true
}

func documentFromPDF(content []byte) (internal.ParsedCollectionData, bool) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return internal.ParsedCollectionData{}, false
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	if strings.TrimSpace(text.String()) == "" {
		return internal.ParsedCollectionData{}, false
	}

	return docparse.ParseDocumentText(text.String()), true
}

func selectWholeGrid(grid docparse.Grid) docparse.Selection {
	sel := docparse.Selection{}
	for r, row := range grid {
		for c := range row {
			sel[docparse.SelectionKey(r, c)] = struct{}{}
		}
	}
	return sel
}

// bestCandidate is the record with the most recovered fields; items
// weigh double since they are what the technicians act on. An empty
// candidate list yields an all-sentinel record.
func bestCandidate(candidates []internal.ParsedCollectionData) internal.ParsedCollectionData {
	if len(candidates) == 0 {
		return docparse.ParseDocumentText("")
	}

	best := candidates[0]
	bestScore := candidateScore(best)
	for _, c := range candidates[1:] {
		if score := candidateScore(c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

func candidateScore(d internal.ParsedCollectionData) int {
	score := 0
	if d.Parceiro != "" && d.Parceiro != internal.UnknownClient {
		score += 2
	}
	if d.EnderecoOrigem != "" && d.EnderecoOrigem != internal.UnknownAddress {
		score += 2
	}
	for _, field := range []*string{
		d.ClientControl, d.Contato, d.Telefone, d.Email, d.CNPJ,
		d.CEPOrigem, d.EnderecoDestino, d.CEPDestino, d.Observacao,
		d.Responsavel, d.Contrato, d.NFGlbl, d.PartnerCode,
	} {
		if field != nil {
			score++
		}
	}
	score += 2 * len(d.Items)
	return score
}
