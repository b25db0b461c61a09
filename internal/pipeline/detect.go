package pipeline

import (
	"regexp"
	"strings"
)

type DetectResult struct {
	IsCollection bool
	Score        float64
	Reason       string
}

var detectKeywords = []string{"coleta", "recolhimento", "retirada", "devoluç", "entrega", "equipament", "autoriza", "protocolo"}

var detectCEPPattern = regexp.MustCompile(`\d{5}-?\d{3}`)

// DetectCollectionDocument scores an inbound message for looking like a
// coleta/entrega request. Pure rules; the threshold keeps newsletters
// and signature-only replies out of the pipeline.
func DetectCollectionDocument(subject, text, html string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	if strings.Contains(text, "descri") && strings.Contains(text, "quant") {
		score += 0.3
	}
	if detectCEPPattern.MatchString(text) {
		score += 0.2
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") || strings.HasSuffix(ln, ".pdf") {
			score += 0.25
			break
		}
	}

	if strings.Contains(html, "<table") {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isCollection := score >= 0.45
	reason := "rules_negative"
	if isCollection {
		reason = "rules_positive"
	}

	return DetectResult{IsCollection: isCollection, Score: score, Reason: reason}
}
