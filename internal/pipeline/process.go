package pipeline

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"coletaflow/internal"
	"coletaflow/internal/config"
	"coletaflow/internal/storage"
)

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg}
}

type ProcessResult struct {
	DocumentID   int
	CollectionID int64
	Items        int
	Skipped      bool
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	doc, err := s.db.MustDocumentByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessDocument(doc)
}

// ProcessPending walks documents in fetched state and turns each into a
// collection record. Returns documents touched and items extracted.
func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListDocumentsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedDocs := 0
	extractedItems := 0
	for _, doc := range pending {
		if provider != "" && doc.Provider != provider {
			continue
		}
		res, err := s.ProcessDocument(doc)
		if err != nil {
			return processedDocs, extractedItems, err
		}
		processedDocs++
		extractedItems += res.Items
	}
	return processedDocs, extractedItems, nil
}

func (s *ProcessingService) ProcessDocument(doc internal.DocumentRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(doc.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	data, subject, text, attachmentNames, err := ExtractFromMailRaw(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	detect := DetectCollectionDocument(firstNonEmpty(subject, doc.Subject), text, "", attachmentNames)
	if err := s.db.ClearDocumentCollections(doc.ID); err != nil {
		return ProcessResult{}, err
	}

	documentID := int64(doc.ID)
	if !detect.IsCollection {
		_ = s.db.UpdateDocumentStatus(doc.ID, "skipped")
		_ = s.db.InsertRun(uuid.NewString(), &documentID,
			map[string]float64{"totalMs": float64(time.Since(start).Milliseconds()), "score": detect.Score},
			map[string]int{"collections": 0, "items": 0})
		return ProcessResult{DocumentID: doc.ID, Skipped: true}, nil
	}

	collectionID, err := s.db.InsertCollection(&documentID, data)
	if err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.UpdateDocumentStatus(doc.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(uuid.NewString(), &documentID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds()), "score": detect.Score},
		map[string]int{"collections": 1, "items": len(data.Items)})

	return ProcessResult{DocumentID: doc.ID, CollectionID: collectionID, Items: len(data.Items)}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
