// Package upload tracks financial documents attached to a report: it filters
// incoming files by type and size, hands accepted files to a Store, and keeps
// the per-document status the documents screen renders.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"go.uber.org/zap"
)

// Rejection reasons.
var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrEmptyFile       = errors.New("file is empty")
	ErrMaxFilesReached = errors.New("maximum number of files reached")
)

// Status is the lifecycle state of one document.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Config configures which files a Queue accepts.
type Config struct {
	// Accept lists allowed MIME types; "type/*" wildcards are honoured.
	Accept []string
	// MaxFileSize is the per-file ceiling in bytes.
	MaxFileSize int64
	// MaxEntries caps the number of documents; zero means no cap.
	MaxEntries int
}

// DefaultConfig accepts PDFs up to 10 MB.
func DefaultConfig() Config {
	return Config{
		Accept:      []string{constants.ContentTypePDF},
		MaxFileSize: constants.DefaultMaxUploadSizeBytes,
	}
}

// File is a selected or dropped file.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Document is an accepted file and its upload state.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// Rejection explains why a file was left out of the accepted set.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Store persists accepted documents. Put blocks until the upload finished or
// failed and must honour ctx.
type Store interface {
	Put(ctx context.Context, doc Document, data []byte) error
	Delete(ctx context.Context, id string) error
}

type entry struct {
	doc    Document
	cancel context.CancelFunc
}

// Queue holds the documents of one flow. It is safe for concurrent use.
type Queue struct {
	logger *zap.Logger
	config Config
	store  Store
	now    func() time.Time

	ctx     context.Context
	stop    context.CancelFunc
	mu      sync.Mutex
	order   []string
	docs    map[string]*entry
	pending int
	idle    chan struct{} // closed while pending == 0
}

// NewQueue creates a queue backed by store. A zero Config field falls back
// to DefaultConfig.
func NewQueue(logger *zap.Logger, config Config, store Store) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if len(config.Accept) == 0 {
		config.Accept = defaults.Accept
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = defaults.MaxFileSize
	}
	if store == nil {
		store = NewMemoryStore(0)
	}

	idle := make(chan struct{})
	close(idle)

	ctx, stop := context.WithCancel(context.Background())
	return &Queue{
		logger: logger,
		config: config,
		store:  store,
		now:    time.Now,
		ctx:    ctx,
		stop:   stop,
		docs:   make(map[string]*entry),
		idle:   idle,
	}
}

// Config returns the queue's acceptance rules.
func (q *Queue) Config() Config {
	return q.config
}

// Add filters the batch and starts uploading every accepted file. Rejected
// files are reported, never returned as an error.
func (q *Queue) Add(files []File) (accepted []Document, rejected []Rejection) {
	for _, file := range files {
		doc, err := q.admit(file)
		if err != nil {
			q.logger.Info("document rejected",
				zap.String("op", "upload.Add"),
				zap.String("file", file.Name),
				zap.Error(err),
			)
			rejected = append(rejected, Rejection{Name: file.Name, Reason: rejectionMessage(file, err), Err: err})
			continue
		}
		accepted = append(accepted, doc)
	}
	return accepted, rejected
}

func (q *Queue) admit(file File) (Document, error) {
	size := int64(len(file.Data))
	if size == 0 {
		return Document{}, ErrEmptyFile
	}

	contentType := normalizeContentType(file.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = normalizeContentType(http.DetectContentType(file.Data))
	}
	if !q.isAllowedType(contentType) {
		return Document{}, fmt.Errorf("%w: %s", ErrInvalidFileType, contentType)
	}
	if size > q.config.MaxFileSize {
		return Document{}, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, q.config.MaxFileSize)
	}

	q.mu.Lock()
	if q.config.MaxEntries > 0 && len(q.order) >= q.config.MaxEntries {
		q.mu.Unlock()
		return Document{}, ErrMaxFilesReached
	}

	ctx, cancel := context.WithCancel(q.ctx)
	doc := Document{
		ID:          uuid.New().String(),
		Name:        sanitizeFilename(file.Name),
		Size:        size,
		ContentType: contentType,
		UploadedAt:  q.now(),
		Status:      StatusUploading,
	}
	q.docs[doc.ID] = &entry{doc: doc, cancel: cancel}
	q.order = append(q.order, doc.ID)
	if q.pending == 0 {
		q.idle = make(chan struct{})
	}
	q.pending++
	q.mu.Unlock()

	data := append([]byte(nil), file.Data...)
	go q.upload(ctx, cancel, doc, data)

	return doc, nil
}

func (q *Queue) upload(ctx context.Context, cancel context.CancelFunc, doc Document, data []byte) {
	defer cancel()

	err := q.store.Put(ctx, doc, data)

	// A Remove that ran while Put was still writing has already deleted from
	// the store, so the bytes Put kept would be orphaned.
	q.mu.Lock()
	_, kept := q.docs[doc.ID]
	q.mu.Unlock()
	if !kept && err == nil {
		if derr := q.store.Delete(context.Background(), doc.ID); derr != nil {
			q.logger.Warn("failed to delete removed document",
				zap.String("op", "upload.upload"),
				zap.String("document", doc.ID),
				zap.Error(derr),
			)
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending--
	if q.pending == 0 {
		close(q.idle)
	}

	e, ok := q.docs[doc.ID]
	if !ok {
		// Removed while uploading.
		return
	}
	if err != nil {
		e.doc.Status = StatusError
		e.doc.Error = err.Error()
		q.logger.Warn("document upload failed",
			zap.String("op", "upload.upload"),
			zap.String("document", doc.ID),
			zap.Error(err),
		)
		return
	}
	e.doc.Status = StatusSuccess
	q.logger.Debug("document uploaded",
		zap.String("op", "upload.upload"),
		zap.String("document", doc.ID),
		zap.Int64("size", doc.Size),
	)
}

// Remove drops a document by id, cancelling its upload if still running.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	e, ok := q.docs[id]
	if !ok {
		q.mu.Unlock()
		return false
	}
	delete(q.docs, id)
	filtered := q.order[:0]
	for _, docID := range q.order {
		if docID != id {
			filtered = append(filtered, docID)
		}
	}
	q.order = filtered
	q.mu.Unlock()

	e.cancel()
	if err := q.store.Delete(context.Background(), id); err != nil {
		q.logger.Warn("failed to delete stored document",
			zap.String("op", "upload.Remove"),
			zap.String("document", id),
			zap.Error(err),
		)
	}
	return true
}

// Get returns one document.
func (q *Queue) Get(id string) (Document, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.docs[id]
	if !ok {
		return Document{}, false
	}
	return e.doc, true
}

// List returns the documents in the order they were accepted.
func (q *Queue) List() []Document {
	q.mu.Lock()
	defer q.mu.Unlock()
	docs := make([]Document, 0, len(q.order))
	for _, id := range q.order {
		docs = append(docs, q.docs[id].doc)
	}
	return docs
}

// Count returns the number of documents in the given status.
func (q *Queue) Count(status Status) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, e := range q.docs {
		if e.doc.Status == status {
			n++
		}
	}
	return n
}

// Wait blocks until no upload is running or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels running uploads. Their documents end in StatusError.
func (q *Queue) Close() {
	q.stop()
}

func (q *Queue) isAllowedType(contentType string) bool {
	for _, allowed := range q.config.Accept {
		allowed = normalizeContentType(allowed)
		if allowed == "*/*" || allowed == contentType {
			return true
		}
		if prefix, ok := strings.CutSuffix(allowed, "/*"); ok && strings.HasPrefix(contentType, prefix+"/") {
			return true
		}
	}
	return false
}

func normalizeContentType(value string) string {
	mediaType, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "document.pdf"
	}
	return name
}

func rejectionMessage(file File, err error) string {
	switch {
	case errors.Is(err, ErrInvalidFileType):
		return fmt.Sprintf("%s is not a PDF document", file.Name)
	case errors.Is(err, ErrFileTooLarge):
		return fmt.Sprintf("%s is larger than the upload limit", file.Name)
	case errors.Is(err, ErrEmptyFile):
		return fmt.Sprintf("%s is empty", file.Name)
	case errors.Is(err, ErrMaxFilesReached):
		return "Too many documents attached"
	}
	return err.Error()
}
