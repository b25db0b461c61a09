package intake

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"coletaflow/internal/config"
	gmailconnector "coletaflow/internal/intake/gmail"
	imapconnector "coletaflow/internal/intake/imap"
	"coletaflow/internal/pipeline"
	"coletaflow/internal/storage"
)

// Listener polls the configured mailbox, registers new documents and
// runs them through the processing pipeline.
type Listener struct {
	db  *storage.DB
	cfg config.Config
}

func NewListener(db *storage.DB, cfg config.Config) *Listener {
	return &Listener{db: db, cfg: cfg}
}

func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.runCycle(); err != nil {
			log.Printf("intake cycle error: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(l.cfg.IntakeIntervalSec) * time.Second):
		}
	}
}

func (l *Listener) runCycle() error {
	provider := strings.ToLower(strings.TrimSpace(l.cfg.IntakeProvider))
	connector, err := l.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := NewFetchService(l.db, l.cfg.RawDocDir, connector)
	fetchResult, err := fetchService.FetchAndStore(l.cfg.IntakeLabel, l.cfg.IntakeFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(l.db, l.cfg)
	processedDocs, _, err := processor.ProcessPending(l.cfg.IntakeProcessBatch, provider)
	if err != nil {
		return err
	}

	if l.cfg.IntakeAutoExport {
		if err := l.exportProcessed(provider); err != nil {
			return err
		}
	}

	log.Printf("intake cycle done provider=%s fetched=%d stored=%d processed=%d", provider, fetchResult.Fetched, fetchResult.Stored, processedDocs)
	return nil
}

func (l *Listener) exportProcessed(provider string) error {
	docs, err := l.db.ListDocumentsByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if doc.Provider != provider {
			continue
		}
		rows, err := l.db.GetDocumentExportRows(doc.ID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s.xlsx", doc.ID, sanitizeMessageID(doc.MessageID))
		outputPath := filepath.Join(l.cfg.OutputDir, "intake", filename)
		if err := pipeline.ExportRowsToXLSX(rows, outputPath); err != nil {
			return err
		}
		_ = l.db.UpdateDocumentStatus(doc.ID, "exported")
	}
	return nil
}

func (l *Listener) makeConnector(provider string) (MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(l.cfg)
	case "imap":
		return imapconnector.NewConnector(l.cfg)
	default:
		return nil, fmt.Errorf("unsupported intake provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
