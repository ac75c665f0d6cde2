package service

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/queue"
	"github.com/maheshrc27/autopost/internal/repository"
)

// CycleResult says how one posting cycle ended.
type CycleResult int

const (
	CyclePosted CycleResult = iota
	CyclePostFailed
	CycleNoImages
	CycleNoProduct
	CycleQuotaReached
)

// Orchestrator drives the posting loop for one worker: select a product,
// build content, collect images, publish, record the outcome, sleep.
type Orchestrator struct {
	sel     SelectorService
	quota   QuotaTracker
	content ContentService
	images  ImageAcquirer
	poster  BrowserPoster
	lr      repository.PostRecordRepository
	pr      repository.ProductRepository
	wr      repository.WorkerRepository

	asynqClient *asynq.Client
	limiter     *rate.Limiter
	rnd         *rand.Rand

	workerName string
	platform   string
	backoff    time.Duration
	sleepMin   time.Duration
	sleepMax   time.Duration
}

type OrchestratorOptions struct {
	WorkerName string
	Platform   string
	Backoff    time.Duration
	SleepMin   time.Duration
	SleepMax   time.Duration

	// AsynqClient is optional; without it enrichment is never enqueued.
	AsynqClient *asynq.Client
	// Limiter caps publish attempts; nil means no cap.
	Limiter *rate.Limiter
	Rand    *rand.Rand
}

func NewOrchestrator(
	sel SelectorService,
	quota QuotaTracker,
	content ContentService,
	images ImageAcquirer,
	poster BrowserPoster,
	lr repository.PostRecordRepository,
	pr repository.ProductRepository,
	wr repository.WorkerRepository,
	opts OrchestratorOptions) *Orchestrator {

	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Orchestrator{
		sel:         sel,
		quota:       quota,
		content:     content,
		images:      images,
		poster:      poster,
		lr:          lr,
		pr:          pr,
		wr:          wr,
		asynqClient: opts.AsynqClient,
		limiter:     limiter,
		rnd:         rnd,
		workerName:  opts.WorkerName,
		platform:    opts.Platform,
		backoff:     opts.Backoff,
		sleepMin:    opts.SleepMin,
		sleepMax:    opts.SleepMax,
	}
}

// Run loops until the context is cancelled. Errors inside a cycle never
// escape; they are logged and absorbed into the next backoff.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		result, err := o.RunCycle(ctx)
		if err != nil {
			slog.Error("cycle failed", "worker", o.workerName, "error", err)
		}

		var wait time.Duration
		switch result {
		case CycleNoProduct, CycleQuotaReached:
			wait = o.backoff
		default:
			wait = o.postSleep()
		}
		if err != nil {
			wait = o.backoff
		}

		slog.Info("cycle done", "worker", o.workerName, "result", int(result), "sleep", wait.String())
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}

// RunCycle executes one pass of the posting state machine.
func (o *Orchestrator) RunCycle(ctx context.Context) (CycleResult, error) {
	status := o.quota.CheckDailyLimit(ctx)
	if status.Reached {
		slog.Info("daily limit reached", "platform", o.platform, "count", status.Current, "limit", status.Limit)
		if err := o.quota.CompleteDailyIssuance(ctx); err != nil {
			slog.Info(err.Error())
		}
		return CycleQuotaReached, nil
	}

	product, err := o.sel.SelectNext(ctx, o.platform, nil)
	if err != nil {
		return CycleNoProduct, err
	}
	if product == nil {
		return CycleNoProduct, nil
	}
	defer func() {
		if err := o.pr.ReleaseClaim(context.Background(), product.ID, o.workerName); err != nil {
			slog.Info(err.Error())
		}
	}()

	o.setWorkerStatus(ctx, models.WorkerStatusActive)
	defer o.setWorkerStatus(ctx, models.WorkerStatusIdle)

	if !product.Enriched() {
		o.enqueueEnrichment(product.ID)
	}

	content := o.content.BuildContent(ctx, product, o.platform)

	images, err := o.images.Acquire(ctx, product)
	if err != nil {
		slog.Info(err.Error())
	}
	if len(images) == 0 {
		// Posting without visual content is a non-viable attempt: skip
		// the browser entirely but still leave a ledger entry.
		msg := "no images"
		if err != nil {
			msg = "no images: " + err.Error()
		}
		if recErr := o.record(ctx, product.ID, false, msg); recErr != nil {
			return CycleNoImages, recErr
		}
		return CycleNoImages, nil
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return CyclePostFailed, err
	}

	post := &Post{
		Platform:   o.platform,
		Title:      content.Title,
		Body:       content.Body,
		ImagePaths: images,
		Tags:       buildTags(product),
	}

	postErr := o.poster.Publish(ctx, post)
	success := postErr == nil
	errText := ""
	if postErr != nil {
		errText = postErr.Error()
		slog.Error("publish failed", "product_id", product.ID, "platform", o.platform, "error", postErr)
	}

	// Recording is mandatory even on posting failure; a silent drop would
	// blind the selector to this attempt.
	if err := o.record(ctx, product.ID, success, errText); err != nil {
		return CyclePostFailed, err
	}

	if success {
		if err := o.quota.IncrementDailyIssuance(ctx, 1); err != nil {
			slog.Info(err.Error())
		}
		return CyclePosted, nil
	}
	return CyclePostFailed, nil
}

func (o *Orchestrator) record(ctx context.Context, productID string, success bool, errText string) error {
	_, err := o.lr.Create(ctx, &models.PostRecord{
		ProductID:    productID,
		WorkerID:     o.workerName,
		Platform:     o.platform,
		Success:      success,
		ErrorMessage: errText,
	})
	return err
}

func (o *Orchestrator) setWorkerStatus(ctx context.Context, status string) {
	if err := o.wr.SetStatus(ctx, o.workerName, status); err != nil {
		slog.Info(err.Error())
	}
}

func (o *Orchestrator) enqueueEnrichment(productID string) {
	if o.asynqClient == nil {
		return
	}
	err := queue.EnqueueEnrichment(o.asynqClient, queue.EnrichProductPayload{ProductID: productID})
	if err != nil {
		slog.Info(err.Error())
	}
}

// postSleep draws the randomized inter-cycle interval. A fixed cadence
// would be trivially recognizable as automated.
func (o *Orchestrator) postSleep() time.Duration {
	if o.sleepMax <= o.sleepMin {
		return o.sleepMin
	}
	return o.sleepMin + time.Duration(o.rnd.Int63n(int64(o.sleepMax-o.sleepMin)))
}

func buildTags(p *models.Product) []string {
	var tags []string
	if p.Brand != "" {
		tags = append(tags, p.Brand)
	}
	if p.StoreName != "" {
		tags = append(tags, p.StoreName)
	}
	tags = append(tags, p.Name)
	return tags
}
