package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/providers/embedding"
	pgrepo "github.com/yoockh/projectgen/internal/repositories/postgres"
	"github.com/yoockh/projectgen/internal/storage"
	"github.com/yoockh/projectgen/internal/utils"
	"gorm.io/datatypes"
)

// catalogNamespace seeds the deterministic entry ids.
var catalogNamespace = uuid.MustParse("9b1d6a52-3f0e-4c57-9d0c-6f3b1c2a7e41")

// CatalogRecord is one row of a catalog source file.
type CatalogRecord struct {
	CertificationName string          `json:"certification_name"`
	ServiceName       string          `json:"service_name"`
	Category          string          `json:"category"`
	Skills            []string        `json:"skills,omitempty"`
	Metadata          json.RawMessage `json:"metadata,omitempty"`
}

type IngestReport struct {
	Source   string    `json:"source"`
	Total    int       `json:"total"`
	Indexed  int       `json:"indexed"`
	Skipped  int       `json:"skipped"`
	Started  time.Time `json:"started_at"`
	Finished time.Time `json:"finished_at"`
}

type CatalogService interface {
	EnsureSchema(ctx context.Context) error
	Ingest(ctx context.Context, source string) (*IngestReport, error)
	Count(ctx context.Context) (int64, error)
}

type catalogService struct {
	catalog    pgrepo.CatalogRepository
	embedder   embedding.Provider
	reader     storage.Reader
	dimensions int
	batchSize  int
	log        *logrus.Logger
}

func NewCatalogService(catalog pgrepo.CatalogRepository, embedder embedding.Provider, reader storage.Reader, dimensions int, l *logrus.Logger) CatalogService {
	if l == nil {
		l = logrus.New()
	}
	return &catalogService{
		catalog:    catalog,
		embedder:   embedder,
		reader:     reader,
		dimensions: dimensions,
		batchSize:  50,
		log:        l,
	}
}

func (s *catalogService) EnsureSchema(ctx context.Context) error {
	const op = "CatalogService.EnsureSchema"

	if err := s.catalog.EnsureSchema(ctx, s.dimensions); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to prepare catalog schema", err)
	}
	return nil
}

// CatalogEntryID is stable for a certification/service pair, so re-ingesting
// a source updates rows instead of duplicating them.
func CatalogEntryID(certificationName, serviceName string) string {
	return uuid.NewSHA1(catalogNamespace, []byte(certificationName+"\x00"+serviceName)).String()
}

// ParseCatalog decodes a JSON array of catalog records.
func ParseCatalog(r io.Reader) ([]CatalogRecord, error) {
	var recs []CatalogRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *catalogService) Ingest(ctx context.Context, source string) (*IngestReport, error) {
	const op = "CatalogService.Ingest"

	if strings.TrimSpace(source) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "catalog source is required", nil)
	}

	rc, err := s.reader.Open(ctx, source)
	if err != nil {
		return nil, utils.Upstream(op, "failed to open catalog source", err)
	}
	recs, err := ParseCatalog(rc)
	_ = rc.Close()
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "catalog source is not a JSON array of records", err)
	}

	report := &IngestReport{Source: source, Total: len(recs), Started: time.Now().UTC()}
	log := s.log.WithFields(logrus.Fields{"source": source, "records": len(recs)})
	log.Info("catalog ingest started")

	batch := make([]models.CatalogEntry, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.catalog.Upsert(ctx, batch); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to upsert catalog entries", err)
		}
		report.Indexed += len(batch)
		batch = batch[:0]
		return nil
	}

	// a pair listed twice keeps its last row; one upsert may not touch an id twice
	last := make(map[string]int, len(recs))
	for i, rec := range recs {
		last[CatalogEntryID(strings.TrimSpace(rec.CertificationName), strings.TrimSpace(rec.ServiceName))] = i
	}

	for i, rec := range recs {
		cert := strings.TrimSpace(rec.CertificationName)
		svc := strings.TrimSpace(rec.ServiceName)
		if cert == "" || svc == "" {
			report.Skipped++
			log.WithField("index", i).Warn("skipping catalog record without certification_name or service_name")
			continue
		}
		id := CatalogEntryID(cert, svc)
		if last[id] != i {
			report.Skipped++
			log.WithFields(logrus.Fields{"index": i, "superseded_by": last[id]}).Warn("skipping duplicate catalog record")
			continue
		}

		vec, err := s.embedder.Embed(ctx, cert, embedding.TaskDocument)
		if err != nil {
			return report, utils.Upstream(op, fmt.Sprintf("failed to embed record %d", i), err)
		}
		if s.dimensions > 0 && len(vec) != s.dimensions {
			return report, utils.E(utils.CodeInternal, op, fmt.Sprintf("embedding has %d dimensions, index expects %d", len(vec), s.dimensions), nil)
		}

		entry := models.CatalogEntry{
			ID:                      id,
			CertificationName:       cert,
			ServiceName:             svc,
			Category:                strings.TrimSpace(rec.Category),
			Skills:                  rec.Skills,
			CertificationNameVector: pgvector.NewVector(vec),
			IndexedAt:               time.Now().UTC(),
		}
		if len(rec.Metadata) > 0 {
			entry.Metadata = datatypes.JSON(rec.Metadata)
		}
		batch = append(batch, entry)

		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return report, err
			}
		}
	}
	if err := flush(); err != nil {
		return report, err
	}

	report.Finished = time.Now().UTC()
	log.WithFields(logrus.Fields{
		"indexed": report.Indexed,
		"skipped": report.Skipped,
		"took_ms": report.Finished.Sub(report.Started).Milliseconds(),
	}).Info("catalog ingest finished")
	return report, nil
}

func (s *catalogService) Count(ctx context.Context) (int64, error) {
	const op = "CatalogService.Count"

	n, err := s.catalog.Count(ctx)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to count catalog entries", err)
	}
	return n, nil
}
