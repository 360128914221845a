package database

import (
	"time"

	"github.com/folium-app/folium/config"
	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
)

// BunDocument is the row shape of the documents table
type BunDocument struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID             int       `bun:"id,pk,autoincrement"`
	Name           string    `bun:"name,notnull"`
	Path           string    `bun:"path,notnull,unique"`
	IngressTime    time.Time `bun:"ingress_time,notnull,default:current_timestamp"`
	Folder         string    `bun:"folder,notnull"`
	Hash           string    `bun:"hash,notnull"`
	ULID           string    `bun:"ulid,notnull,unique"` // stored as its string form
	DocumentType   string    `bun:"document_type,notnull"`
	FullText       string    `bun:"full_text,nullzero"`
	PageCount      int       `bun:"page_count,notnull,default:0"`
	Outline        string    `bun:"outline,nullzero"`
	URL            string    `bun:"url,nullzero"`
	FullTextSearch string    `bun:"full_text_search,type:tsvector,nullzero"` // postgres only
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ToDocument converts the row into a Document, parsing the stored ULID
func (b *BunDocument) ToDocument() (*Document, error) {
	id, err := ulid.Parse(b.ULID)
	if err != nil {
		return nil, err
	}

	return &Document{
		ID:           b.ID,
		Name:         b.Name,
		Path:         b.Path,
		IngressTime:  b.IngressTime,
		Folder:       b.Folder,
		Hash:         b.Hash,
		ULID:         id,
		DocumentType: b.DocumentType,
		FullText:     b.FullText,
		PageCount:    b.PageCount,
		Outline:      b.Outline,
		URL:          b.URL,
	}, nil
}

// FromDocument converts a Document into its row shape
func FromDocument(d *Document) *BunDocument {
	return &BunDocument{
		ID:           d.ID,
		Name:         d.Name,
		Path:         d.Path,
		IngressTime:  d.IngressTime,
		Folder:       d.Folder,
		Hash:         d.Hash,
		ULID:         d.ULID.String(),
		DocumentType: d.DocumentType,
		FullText:     d.FullText,
		PageCount:    d.PageCount,
		Outline:      d.Outline,
		URL:          d.URL,
	}
}

// BunServerConfig is the row shape of the server_config table, a single row
// with id 1
type BunServerConfig struct {
	bun.BaseModel `bun:"table:server_config,alias:sc"`

	ID                   int       `bun:"id,pk"`
	ListenAddrIP         string    `bun:"listen_addr_ip,default:''"`
	ListenAddrPort       string    `bun:"listen_addr_port,notnull,default:'8000'"`
	IngressPath          string    `bun:"ingress_path,notnull,default:''"`
	IngressDelete        bool      `bun:"ingress_delete,notnull,default:false"`
	IngressMoveFolder    string    `bun:"ingress_move_folder,notnull,default:''"`
	IngressPreserve      bool      `bun:"ingress_preserve,notnull,default:true"`
	DocumentPath         string    `bun:"document_path,notnull,default:''"`
	NewDocumentFolder    string    `bun:"new_document_folder,default:''"`
	NewDocumentFolderRel string    `bun:"new_document_folder_rel,default:''"`
	WebUIPass            bool      `bun:"web_ui_pass,notnull,default:false"`
	ClientUsername       string    `bun:"client_username,default:''"`
	ClientPassword       string    `bun:"client_password,default:''"`
	TesseractPath        string    `bun:"tesseract_path,default:''"`
	Renderer             string    `bun:"renderer,notnull,default:'fitz'"`
	RenderDPI            int       `bun:"render_dpi,notnull,default:150"`
	TesseractServiceURL  string    `bun:"tesseract_service_url,default:''"`
	PDFServiceURL        string    `bun:"pdf_service_url,default:''"`
	UseReverseProxy      bool      `bun:"use_reverse_proxy,notnull,default:false"`
	BaseURL              string    `bun:"base_url,default:''"`
	IngressInterval      int       `bun:"ingress_interval,notnull,default:10"`
	NewDocumentNumber    int       `bun:"new_document_number,notnull,default:5"`
	ServerAPIURL         string    `bun:"server_api_url,default:''"`
	CreatedAt            time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt            time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// FromServerConfig converts a ServerConfig into its row shape. The frontend
// settings live flattened in the same row.
func FromServerConfig(cfg *config.ServerConfig) *BunServerConfig {
	return &BunServerConfig{
		ID:                   1,
		ListenAddrIP:         cfg.ListenAddrIP,
		ListenAddrPort:       cfg.ListenAddrPort,
		IngressPath:          cfg.IngressPath,
		IngressDelete:        cfg.IngressDelete,
		IngressMoveFolder:    cfg.IngressMoveFolder,
		IngressPreserve:      cfg.IngressPreserve,
		DocumentPath:         cfg.DocumentPath,
		NewDocumentFolder:    cfg.NewDocumentFolder,
		NewDocumentFolderRel: cfg.NewDocumentFolderRel,
		WebUIPass:            cfg.WebUIPass,
		ClientUsername:       cfg.ClientUsername,
		ClientPassword:       cfg.ClientPassword,
		TesseractPath:        cfg.TesseractPath,
		Renderer:             cfg.Renderer,
		RenderDPI:            cfg.RenderDPI,
		TesseractServiceURL:  cfg.TesseractServiceURL,
		PDFServiceURL:        cfg.PDFServiceURL,
		UseReverseProxy:      cfg.UseReverseProxy,
		BaseURL:              cfg.BaseURL,
		IngressInterval:      cfg.IngressInterval,
		NewDocumentNumber:    cfg.FrontEndConfig.NewDocumentNumber,
		ServerAPIURL:         cfg.FrontEndConfig.ServerAPIURL,
	}
}

// ToServerConfig converts the row back into a ServerConfig
func (b *BunServerConfig) ToServerConfig() *config.ServerConfig {
	cfg := &config.ServerConfig{
		ID:                   1,
		ListenAddrIP:         b.ListenAddrIP,
		ListenAddrPort:       b.ListenAddrPort,
		IngressPath:          b.IngressPath,
		IngressDelete:        b.IngressDelete,
		IngressMoveFolder:    b.IngressMoveFolder,
		IngressPreserve:      b.IngressPreserve,
		DocumentPath:         b.DocumentPath,
		NewDocumentFolder:    b.NewDocumentFolder,
		NewDocumentFolderRel: b.NewDocumentFolderRel,
		WebUIPass:            b.WebUIPass,
		ClientUsername:       b.ClientUsername,
		ClientPassword:       b.ClientPassword,
		TesseractPath:        b.TesseractPath,
		Renderer:             b.Renderer,
		RenderDPI:            b.RenderDPI,
		TesseractServiceURL:  b.TesseractServiceURL,
		PDFServiceURL:        b.PDFServiceURL,
		UseReverseProxy:      b.UseReverseProxy,
		BaseURL:              b.BaseURL,
		IngressInterval:      b.IngressInterval,
	}

	cfg.FrontEndConfig.NewDocumentNumber = b.NewDocumentNumber
	cfg.FrontEndConfig.ServerAPIURL = b.ServerAPIURL

	return cfg
}

// BunJob is the row shape of the jobs table
type BunJob struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID          string     `bun:"id,pk"` // job ULID as its string form
	Type        string     `bun:"type,notnull"`
	Status      string     `bun:"status,default:'pending'"`
	Progress    int        `bun:"progress,default:0"`
	CurrentStep string     `bun:"current_step,default:''"`
	TotalSteps  int        `bun:"total_steps,default:0"`
	Message     string     `bun:"message,default:''"`
	Error       string     `bun:"error,nullzero"`
	Result      string     `bun:"result,nullzero"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	StartedAt   *time.Time `bun:"started_at,nullzero"`
	CompletedAt *time.Time `bun:"completed_at,nullzero"`
}

// ToJob converts the row into a Job, parsing the stored ULID
func (b *BunJob) ToJob() (*Job, error) {
	id, err := ulid.Parse(b.ID)
	if err != nil {
		return nil, err
	}

	return &Job{
		ID:          id,
		Type:        JobType(b.Type),
		Status:      JobStatus(b.Status),
		Progress:    b.Progress,
		CurrentStep: b.CurrentStep,
		TotalSteps:  b.TotalSteps,
		Message:     b.Message,
		Error:       b.Error,
		Result:      b.Result,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		StartedAt:   b.StartedAt,
		CompletedAt: b.CompletedAt,
	}, nil
}

// FromJob converts a Job into its row shape
func FromJob(j *Job) *BunJob {
	return &BunJob{
		ID:          j.ID.String(),
		Type:        string(j.Type),
		Status:      string(j.Status),
		Progress:    j.Progress,
		CurrentStep: j.CurrentStep,
		TotalSteps:  j.TotalSteps,
		Message:     j.Message,
		Error:       j.Error,
		Result:      j.Result,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

// BunWordFrequency is the row shape of the word_frequencies table
type BunWordFrequency struct {
	bun.BaseModel `bun:"table:word_frequencies,alias:wf"`

	Word        string    `bun:"word,pk"`
	Frequency   int       `bun:"frequency,default:1"`
	LastUpdated time.Time `bun:"last_updated,default:current_timestamp"`
}

// ToWordFrequency converts the row into a WordFrequency
func (b *BunWordFrequency) ToWordFrequency() *WordFrequency {
	return &WordFrequency{
		Word:      b.Word,
		Frequency: b.Frequency,
		Updated:   b.LastUpdated,
	}
}

// BunWordCloudMetadata is the row shape of the word_cloud_metadata table,
// a single row with id 1
type BunWordCloudMetadata struct {
	bun.BaseModel `bun:"table:word_cloud_metadata,alias:wcm"`

	ID                  int        `bun:"id,pk"`
	LastFullCalculation *time.Time `bun:"last_full_calculation,nullzero"`
	TotalDocsProcessed  int        `bun:"total_documents_processed,default:0"`
	TotalWordsIndexed   int        `bun:"total_words_indexed,default:0"`
	Version             int        `bun:"version,default:1"`
	CreatedAt           time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt           time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// ToWordCloudMetadata converts the row into a WordCloudMetadata. A never
// calculated cloud leaves LastCalculation at its zero value.
func (b *BunWordCloudMetadata) ToWordCloudMetadata() *WordCloudMetadata {
	meta := &WordCloudMetadata{
		TotalDocsProcessed: b.TotalDocsProcessed,
		TotalWordsIndexed:  b.TotalWordsIndexed,
		Version:            b.Version,
	}
	if b.LastFullCalculation != nil {
		meta.LastCalculation = *b.LastFullCalculation
	}
	return meta
}
