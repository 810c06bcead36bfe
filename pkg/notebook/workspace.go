package notebook

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/config"
	"github.com/yaklabco/nbcells/pkg/langdetect"
	"github.com/yaklabco/nbcells/pkg/partition"
	"github.com/yaklabco/nbcells/pkg/pointer"
	"github.com/yaklabco/nbcells/pkg/tokenizer/goldmark"
	"github.com/yaklabco/nbcells/pkg/tokenizer/percent"
)

var (
	// ErrDocumentNotFound is returned for an unknown document ID.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentExists is returned when opening a document under an ID already in use.
	ErrDocumentExists = errors.New("document already open")

	// ErrUnknownTokenizer is returned for a tokenizer name no source implements.
	ErrUnknownTokenizer = errors.New("unknown tokenizer")

	// ErrUnknownEngine is returned for an engine name no implementation matches.
	ErrUnknownEngine = errors.New("unknown engine")
)

// DocumentID identifies an open document.
type DocumentID string

// NewDocumentID generates a random DocumentID.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// String returns the string representation of the DocumentID.
func (id DocumentID) String() string {
	return string(id)
}

// IsValid reports whether the ID is a UUID.
func (id DocumentID) IsValid() bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(string(id))
	return err == nil
}

// OpenOptions describes a document to open.
type OpenOptions struct {
	// ID names the document. Empty generates a fresh ID.
	ID DocumentID

	// Path picks the tokenizer when the configured tokenizer is auto.
	Path string

	// Text is the initial content.
	Text string
}

// Workspace is the registry of open documents.
type Workspace struct {
	mu       sync.RWMutex
	cfg      *config.Config
	logger   *log.Logger
	detector *langdetect.Detector
	docs     map[DocumentID]*Document
}

// NewWorkspace creates an empty workspace. A nil cfg uses defaults.
func NewWorkspace(cfg *config.Config, logger *log.Logger) *Workspace {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Workspace{
		cfg:      cfg,
		logger:   logging.OrDiscard(logger),
		detector: langdetect.NewDetector(langdetect.DefaultExpiration, langdetect.DefaultCleanupInterval),
		docs:     make(map[DocumentID]*Document),
	}
}

// Open creates a document, builds its initial partition and registers it.
func (w *Workspace) Open(opts OpenOptions) (*Document, error) {
	id := opts.ID
	if id == "" {
		id = NewDocumentID()
	}

	src, err := SourceFor(w.cfg, opts.Path)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.docs[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDocumentExists, id)
	}

	logger := w.logger.With(logging.FieldDocument, id.String())
	buf := buffer.New(opts.Text)

	engine, err := NewEngine(w.cfg.Engine, buf, src, EngineOptions(w.cfg, logger))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", id, err)
	}
	buf.AddListener(engine)

	doc := &Document{
		ID:       id,
		Path:     opts.Path,
		Buffer:   buf,
		Engine:   engine,
		Pointers: pointer.New(engine, logger),
		detector: w.detector,
	}
	w.docs[id] = doc

	logger.Debug("document opened",
		logging.FieldPath, opts.Path,
		logging.FieldIntervals, engine.IntervalCount())

	return doc, nil
}

// Get returns the document registered under id.
func (w *Workspace) Get(id DocumentID) (*Document, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	doc, ok := w.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc, nil
}

// Close unregisters a document. Its engine stops receiving edits.
func (w *Workspace) Close(id DocumentID) error {
	w.mu.Lock()
	doc, ok := w.docs[id]
	delete(w.docs, id)
	w.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}

	doc.mu.Lock()
	doc.Buffer.RemoveListener(doc.Engine)
	doc.mu.Unlock()

	w.logger.Debug("document closed", logging.FieldDocument, id.String())
	return nil
}

// Documents returns the IDs of all open documents in sorted order.
func (w *Workspace) Documents() []DocumentID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]DocumentID, 0, len(w.docs))
	for id := range w.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SourceFor returns the marker source configured for path.
func SourceFor(cfg *config.Config, path string) (partition.Source, error) {
	name := cfg.Tokenizer
	if name == "" || name == config.TokenizerAuto {
		name = tokenizerForPath(path)
	}

	switch name {
	case config.TokenizerPercent:
		return percent.New(), nil
	case config.TokenizerMarkdown:
		return goldmark.New(string(cfg.Markdown.Flavor)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTokenizer, name)
	}
}

func tokenizerForPath(path string) config.TokenizerName {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return config.TokenizerMarkdown
	default:
		return config.TokenizerPercent
	}
}

// EngineOptions translates configuration into engine options.
func EngineOptions(cfg *config.Config, logger *log.Logger) partition.Options {
	return partition.Options{
		Logger:          logger,
		SearchThreshold: cfg.SearchThreshold,
		CheckIntegrity:  cfg.IntegrityEnabled(),
		Dump:            cfg.IntegrityDump(),
	}
}

// NewEngine builds the named engine over doc. Empty selects the incremental engine.
func NewEngine(
	name config.EngineName,
	doc partition.Document,
	src partition.Source,
	opts partition.Options,
) (partition.Engine, error) {
	var (
		engine partition.Engine
		err    error
	)
	switch name {
	case "", config.EngineIncremental:
		engine, err = partition.NewIncremental(doc, src, opts)
	case config.EngineReference:
		engine, err = partition.NewReference(doc, src, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	if err != nil {
		return nil, err
	}
	return engine, nil
}
