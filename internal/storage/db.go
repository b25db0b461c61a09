package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"coletaflow/internal"
	"coletaflow/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS collections (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  uniqueNumber TEXT NOT NULL UNIQUE,
  parceiro TEXT NOT NULL,
  clientControl TEXT,
  enderecoOrigem TEXT NOT NULL,
  cepOrigem TEXT,
  originNumber TEXT,
  enderecoDestino TEXT,
  cepDestino TEXT,
  destinationNumber TEXT,
  contato TEXT,
  telefone TEXT,
  email TEXT,
  cnpj TEXT,
  observacao TEXT,
  responsavel TEXT,
  contrato TEXT,
  nfGlbl TEXT,
  partnerCode TEXT,
  previsaoColeta TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pendente',
  type TEXT NOT NULL DEFAULT 'coleta',
  modeloAparelho TEXT,
  freightValue REAL,
  documentId INTEGER,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_collections_status ON collections(status);
CREATE INDEX IF NOT EXISTS idx_collections_previsao ON collections(previsaoColeta);
CREATE INDEX IF NOT EXISTS idx_collections_document ON collections(documentId);

CREATE TABLE IF NOT EXISTS collection_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  collectionId INTEGER NOT NULL,
  productCode TEXT NOT NULL,
  productDescription TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  FOREIGN KEY(collectionId) REFERENCES collections(id)
);
CREATE INDEX IF NOT EXISTS idx_items_collection ON collection_items(collectionId);

CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  brand TEXT,
  model TEXT,
  updatedAt TEXT,
  raw_json TEXT NOT NULL DEFAULT '{}',
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_description ON products(description);

CREATE TABLE IF NOT EXISTS clients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  cnpj TEXT,
  email TEXT,
  phone TEXT,
  address TEXT,
  cep TEXT,
  city TEXT,
  contact TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS technicians (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  firstName TEXT NOT NULL,
  lastName TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  shift TEXT NOT NULL DEFAULT 'day',
  supervisorId TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS supervisors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  firstName TEXT NOT NULL,
  lastName TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'standard',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  documentId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertCollection stores a parsed record and its items in one
// transaction. documentID links the record back to the inbound
// document it came from; nil for manual imports and pastes.
func (d *DB) InsertCollection(documentID *int64, data internal.ParsedCollectionData) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`
INSERT INTO collections (
  uniqueNumber, parceiro, clientControl, enderecoOrigem, cepOrigem, originNumber,
  enderecoDestino, cepDestino, destinationNumber, contato, telefone, email, cnpj,
  observacao, responsavel, contrato, nfGlbl, partnerCode,
  previsaoColeta, status, type, modeloAparelho, documentId
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		data.UniqueNumber, data.Parceiro, data.ClientControl, data.EnderecoOrigem, data.CEPOrigem, data.OriginAddressNumber,
		data.EnderecoDestino, data.CEPDestino, data.DestinationAddressNumber, data.Contato, data.Telefone, data.Email, data.CNPJ,
		data.Observacao, data.Responsavel, data.Contrato, data.NFGlbl, data.PartnerCode,
		data.PrevisaoColeta, string(data.StatusColeta), string(data.Type), data.ModeloAparelho, documentID,
	)
	if err != nil {
		return 0, err
	}
	collectionID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, item := range data.Items {
		if _, err := tx.Exec(`
INSERT INTO collection_items (collectionId, productCode, productDescription, quantity)
VALUES (?, ?, ?, ?)
`, collectionID, item.ProductCode, item.ProductDescription, item.Quantity); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return collectionID, nil
}

// InsertImportedCollections stores spreadsheet import rows in one
// transaction, minting a fresh unique number per row.
func (d *DB) InsertImportedCollections(rows []internal.CollectionImportRow) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, row := range rows {
		result, err := tx.Exec(`
INSERT INTO collections (
  uniqueNumber, parceiro, clientControl, enderecoOrigem, cepOrigem,
  enderecoDestino, cepDestino, contato, telefone, email, observacao,
  previsaoColeta, status, type, modeloAparelho, freightValue
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			util.NewUniqueNumber("col"), row.Parceiro, row.ClientControl, row.EnderecoOrigem, row.CEPOrigem,
			row.EnderecoDestino, row.CEPDestino, row.Contato, row.Telefone, row.Email, row.Observacao,
			row.PrevisaoColeta, string(row.StatusColeta), string(row.Type), row.ModeloAparelho, row.FreightValue,
		)
		if err != nil {
			return 0, err
		}
		if row.ModeloAparelho != nil {
			collectionID, err := result.LastInsertId()
			if err != nil {
				return 0, err
			}
			if _, err := tx.Exec(`
INSERT INTO collection_items (collectionId, productCode, productDescription, quantity)
VALUES (?, ?, ?, ?)
`, collectionID, *row.ModeloAparelho, *row.ModeloAparelho, row.Quantity); err != nil {
				return 0, err
			}
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (d *DB) UpsertProducts(products []internal.CatalogProduct) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (code, description, brand, model, updatedAt, raw_json, lastSeenAt)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(code) DO UPDATE SET
  description=excluded.description,
  brand=excluded.brand,
  model=excluded.model,
  updatedAt=excluded.updatedAt,
  raw_json=excluded.raw_json,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(p.Code, p.Description, p.Brand, p.Model, p.UpdatedAt, p.RawJSON); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListProducts() ([]internal.CatalogProduct, error) {
	rows, err := d.conn.Query(`
SELECT id, code, description, brand, model, updatedAt, raw_json
FROM products ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CatalogProduct
	for rows.Next() {
		var p internal.CatalogProduct
		if err := rows.Scan(&p.ID, &p.Code, &p.Description, &p.Brand, &p.Model, &p.UpdatedAt, &p.RawJSON); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (d *DB) UpsertClients(rows []internal.ClientImportRow) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO clients (name, cnpj, email, phone, address, cep, city, contact)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  cnpj=excluded.cnpj,
  email=excluded.email,
  phone=excluded.phone,
  address=excluded.address,
  cep=excluded.cep,
  city=excluded.city,
  contact=excluded.contact
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.Name, row.CNPJ, row.Email, row.Phone, row.Address, row.CEP, row.City, row.Contact); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (d *DB) InsertTechnicians(rows []internal.TechnicianImportRow) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range rows {
		if _, err := tx.Exec(`
INSERT INTO technicians (firstName, lastName, email, phone, shift, supervisorId)
VALUES (?, ?, ?, ?, ?, ?)
`, row.FirstName, row.LastName, row.Email, row.Phone, string(row.Shift), row.SupervisorID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (d *DB) InsertSupervisors(rows []internal.SupervisorImportRow) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range rows {
		if _, err := tx.Exec(`
INSERT INTO supervisors (firstName, lastName, email, phone, role)
VALUES (?, ?, ?, ?, ?)
`, row.FirstName, row.LastName, row.Email, row.Phone, string(row.Role)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (d *DB) UpsertDocument(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.DocumentRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO documents (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.DocumentRow{}, err
	}

	row, err := d.GetDocumentByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	if row == nil {
		return internal.DocumentRow{}, errors.New("failed to upsert document")
	}
	return *row, nil
}

func (d *DB) GetDocumentByProviderMessageID(provider, messageID string) (*internal.DocumentRow, error) {
	var row internal.DocumentRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM documents WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetDocumentByID(id int) (*internal.DocumentRow, error) {
	var row internal.DocumentRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM documents WHERE id = ?
`, id).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListDocumentsByStatus(status string, limit int) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM documents WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		var row internal.DocumentRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateDocumentStatus(documentID int, status string) error {
	_, err := d.conn.Exec(`UPDATE documents SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, documentID)
	return err
}

// ClearDocumentCollections removes the collections a document produced
// so a reprocess starts clean.
func (d *DB) ClearDocumentCollections(documentID int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`SELECT id FROM collections WHERE documentId = ?`, documentID)
	if err != nil {
		return err
	}
	var collectionIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		collectionIDs = append(collectionIDs, id)
	}
	_ = rows.Close()

	for _, id := range collectionIDs {
		if _, err := tx.Exec(`DELETE FROM collection_items WHERE collectionId = ?`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM collections WHERE id = ?`, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) InsertRun(traceID string, documentID *int64, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, documentId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, documentID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// GetExportRows flattens collections into the review sheet layout: one
// row per item, collection fields repeated, itemless collections kept.
// status narrows the result; empty exports everything.
func (d *DB) GetExportRows(status string) ([]internal.CollectionExportRow, error) {
	query := `
SELECT
  c.id,
  c.uniqueNumber,
  c.parceiro,
  c.enderecoOrigem,
  c.previsaoColeta,
  c.status,
  c.type,
  c.clientControl,
  c.telefone,
  c.contrato,
  i.productCode,
  i.quantity
FROM collections c
LEFT JOIN collection_items i ON i.collectionId = c.id
`
	args := []any{}
	if status != "" {
		query += `WHERE c.status = ?
`
		args = append(args, status)
	}
	query += `ORDER BY c.previsaoColeta ASC, c.id ASC, i.id ASC`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CollectionExportRow
	for rows.Next() {
		var row internal.CollectionExportRow
		if err := rows.Scan(
			&row.CollectionID,
			&row.UniqueNumber,
			&row.Parceiro,
			&row.EnderecoOrigem,
			&row.PrevisaoColeta,
			&row.Status,
			&row.Type,
			&row.ClientControl,
			&row.Telefone,
			&row.Contrato,
			&row.ItemCode,
			&row.ItemQuantity,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// GetDocumentExportRows is GetExportRows narrowed to the collections
// one inbound document produced.
func (d *DB) GetDocumentExportRows(documentID int) ([]internal.CollectionExportRow, error) {
	rows, err := d.conn.Query(`
SELECT
  c.id,
  c.uniqueNumber,
  c.parceiro,
  c.enderecoOrigem,
  c.previsaoColeta,
  c.status,
  c.type,
  c.clientControl,
  c.telefone,
  c.contrato,
  i.productCode,
  i.quantity
FROM collections c
LEFT JOIN collection_items i ON i.collectionId = c.id
WHERE c.documentId = ?
ORDER BY c.id ASC, i.id ASC
`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CollectionExportRow
	for rows.Next() {
		var row internal.CollectionExportRow
		if err := rows.Scan(
			&row.CollectionID,
			&row.UniqueNumber,
			&row.Parceiro,
			&row.EnderecoOrigem,
			&row.PrevisaoColeta,
			&row.Status,
			&row.Type,
			&row.ClientControl,
			&row.Telefone,
			&row.Contrato,
			&row.ItemCode,
			&row.ItemQuantity,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func (d *DB) MustDocumentByProviderMessageID(provider, messageID string) (internal.DocumentRow, error) {
	row, err := d.GetDocumentByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	if row == nil {
		return internal.DocumentRow{}, fmt.Errorf("document not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}
