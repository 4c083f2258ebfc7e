package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/projectgen/internal/services"
	"github.com/yoockh/projectgen/internal/utils"
)

const (
	DefaultIndexStream   = "catalog:ingest"
	DefaultIndexGroup    = "catalog-indexers"
	DefaultStatusChannel = "catalog:index:status"
)

const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// IndexStatus is published on the status channel for every job transition.
type IndexStatus struct {
	Type    string    `json:"type"`
	JobID   string    `json:"job_id"`
	Source  string    `json:"source"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Total   int       `json:"total,omitempty"`
	Indexed int       `json:"indexed,omitempty"`
	Skipped int       `json:"skipped,omitempty"`
	At      time.Time `json:"at"`
}

// IndexWorkerPool consumes reindex jobs from a Redis stream with a consumer
// group and runs catalog ingestion for each.
type IndexWorkerPool struct {
	Redis      *redis.Client
	Catalog    services.CatalogService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	StatusChannel  string

	// DefaultSource is used for jobs that carry no source.
	DefaultSource string

	notify func(ctx context.Context, st IndexStatus)
}

func (p *IndexWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = DefaultIndexStream
	}
	if p.Group == "" {
		p.Group = DefaultIndexGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "indexer"
	}
	if p.StatusChannel == "" {
		p.StatusChannel = DefaultStatusChannel
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 1
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.notify == nil {
		p.notify = p.publish
	}
}

func (p *IndexWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Catalog == nil {
		return errors.New("IndexWorkerPool missing dependency: Redis/Catalog must be set")
	}
	p.defaults()

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	p.Logger.WithFields(logrus.Fields{
		"stream":  p.Stream,
		"group":   p.Group,
		"workers": p.NumWorkers,
	}).Info("index workers started")
	return nil
}

// Enqueue adds a reindex job for source to the stream.
func (p *IndexWorkerPool) Enqueue(ctx context.Context, source string) (string, error) {
	if p.Redis == nil {
		return "", errors.New("IndexWorkerPool has no Redis client")
	}
	p.defaults()

	jobID := uuid.NewString()
	err := p.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: p.Stream,
		Values: map[string]any{
			"job_id":       jobID,
			"source":       source,
			"requested_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return "", err
	}

	p.notify(ctx, IndexStatus{JobID: jobID, Source: source, Status: StatusQueued})
	return jobID, nil
}

func (p *IndexWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    1,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("index stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *IndexWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		s, _ := msg.Values[k].(string)
		return strings.TrimSpace(s)
	}

	jobID := getStr("job_id")
	if jobID == "" {
		jobID = msg.ID
	}
	source := getStr("source")
	if source == "" {
		source = p.DefaultSource
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id": msg.ID,
		"job_id":   jobID,
		"source":   source,
	})

	if source == "" {
		log.Warn("index job without source and no default configured")
		p.notify(ctx, IndexStatus{JobID: jobID, Status: StatusFailed, Message: "no catalog source"})
		return
	}

	p.notify(ctx, IndexStatus{JobID: jobID, Source: source, Status: StatusRunning})

	report, err := p.Catalog.Ingest(ctx, source)
	st := IndexStatus{JobID: jobID, Source: source, Status: StatusDone}
	if report != nil {
		st.Total, st.Indexed, st.Skipped = report.Total, report.Indexed, report.Skipped
	}
	if err != nil {
		log.WithError(err).Error("index job failed")
		st.Status = StatusFailed
		st.Message = "ingest failed"
		var ae *utils.AppError
		if errors.As(err, &ae) {
			st.Message = ae.Message
		}
	}
	p.notify(ctx, st)
}

func (p *IndexWorkerPool) publish(ctx context.Context, st IndexStatus) {
	st.Type = "index_status"
	if st.At.IsZero() {
		st.At = time.Now().UTC()
	}
	b, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := p.Redis.Publish(ctx, p.StatusChannel, b).Err(); err != nil {
		p.Logger.WithError(err).WithField("job_id", st.JobID).Warn("failed to publish index status")
	}
}
