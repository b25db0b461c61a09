package internal

type CollectionStatus string

const (
	StatusPendente  CollectionStatus = "pendente"
	StatusAgendada  CollectionStatus = "agendada"
	StatusConcluida CollectionStatus = "concluida"
)

type CollectionType string

const (
	TypeColeta  CollectionType = "coleta"
	TypeEntrega CollectionType = "entrega"
)

type TechnicianShift string

const (
	ShiftDay   TechnicianShift = "day"
	ShiftNight TechnicianShift = "night"
)

type SupervisorRole string

const (
	RoleStandard SupervisorRole = "standard"
	RoleAdmin    SupervisorRole = "admin"
)

// Sentinels applied when a document carries no usable value.
const (
	UnknownClient  = "Cliente Desconhecido"
	UnknownAddress = "Endereço Desconhecido"
)

// ParsedItem is one line item extracted from a document or spreadsheet.
// At parse time the free-text code doubles as the description; catalog
// resolution happens later, outside the parsers.
type ParsedItem struct {
	ProductCode        string `json:"product_code"`
	ProductDescription string `json:"product_description"`
	Quantity           int    `json:"quantity"`
}

// ParsedCollectionData is one inferred coleta/entrega record. Optional
// fields are nil when the source document never mentioned them.
type ParsedCollectionData struct {
	Parceiro       string `json:"parceiro"`
	EnderecoOrigem string `json:"endereco_origem"`
	PrevisaoColeta string `json:"previsao_coleta"`

	ClientControl            *string `json:"client_control"`
	Contato                  *string `json:"contato"`
	Telefone                 *string `json:"telefone"`
	Email                    *string `json:"email"`
	CNPJ                     *string `json:"cnpj"`
	CEPOrigem                *string `json:"cep_origem"`
	OriginAddressNumber      *string `json:"origin_address_number"`
	EnderecoDestino          *string `json:"endereco_destino"`
	CEPDestino               *string `json:"cep_destino"`
	DestinationAddressNumber *string `json:"destination_address_number"`
	Observacao               *string `json:"observacao"`
	Responsavel              *string `json:"responsavel"`
	Contrato                 *string `json:"contrato"`
	NFGlbl                   *string `json:"nf_glbl"`
	PartnerCode              *string `json:"partner_code"`

	StatusColeta CollectionStatus `json:"status_coleta"`
	Type         CollectionType   `json:"type"`

	Items []ParsedItem `json:"items"`

	// Display convenience mirroring the first item; Items stays authoritative.
	ModeloAparelho            *string `json:"modelo_aparelho"`
	ModeloAparelhoDescription *string `json:"modelo_aparelho_description"`

	UniqueNumber string `json:"unique_number"`
}

type CollectionImportRow struct {
	Parceiro        string           `json:"parceiro"`
	ClientControl   *string          `json:"client_control"`
	EnderecoOrigem  string           `json:"endereco_origem"`
	CEPOrigem       *string          `json:"cep_origem"`
	EnderecoDestino *string          `json:"endereco_destino"`
	CEPDestino      *string          `json:"cep_destino"`
	Contato         *string          `json:"contato"`
	Telefone        *string          `json:"telefone"`
	Email           *string          `json:"email"`
	ModeloAparelho  *string          `json:"modelo_aparelho"`
	Quantity        int              `json:"quantity"`
	FreightValue    *float64         `json:"freight_value"`
	PrevisaoColeta  string           `json:"previsao_coleta"`
	Observacao      *string          `json:"observacao"`
	StatusColeta    CollectionStatus `json:"status_coleta"`
	Type            CollectionType   `json:"type"`
}

type ProductImportRow struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
}

type ClientImportRow struct {
	Name    string  `json:"name"`
	CNPJ    *string `json:"cnpj"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	CEP     *string `json:"cep"`
	City    *string `json:"city"`
	Contact *string `json:"contact"`
}

type TechnicianImportRow struct {
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        *string         `json:"email"`
	Phone        *string         `json:"phone"`
	Shift        TechnicianShift `json:"shift"`
	SupervisorID *string         `json:"supervisor_id"`
}

type SupervisorImportRow struct {
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     *string        `json:"email"`
	Phone     *string        `json:"phone"`
	Role      SupervisorRole `json:"role"`
}

// DocumentRow is one inbound document registered by the intake layer.
// Status moves fetched -> processed|skipped -> exported.
type DocumentRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// CatalogProduct is one product synced from the ERP, as the UI catalog
// screens read it.
type CatalogProduct struct {
	ID          int
	Code        string
	Description string
	Brand       *string
	Model       *string
	UpdatedAt   *string
	RawJSON     string
}

// CollectionExportRow is one flattened line of the review sheet: one row
// per item, collection fields repeated.
type CollectionExportRow struct {
	CollectionID   int
	UniqueNumber   string
	Parceiro       string
	EnderecoOrigem string
	PrevisaoColeta string
	Status         string
	Type           string
	ClientControl  *string
	Telefone       *string
	Contrato       *string
	ItemCode       *string
	ItemQuantity   *int
}
