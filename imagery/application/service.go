package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mervel/storefront/imagery/domain"
	"github.com/sirupsen/logrus"
)

// PrefixSource supplies the versioned cache prefix.
type PrefixSource interface {
	ImageCachePrefix(ctx context.Context) (string, error)
	BumpImageCachePrefix(ctx context.Context) (string, error)
}

type Options struct {
	MaxConcurrent   int
	GenerateTimeout time.Duration
	DefaultPrefix   string
	Notifier        *Notifier
}

// ImageService hands out product images, generating missing ones through a
// bounded queue and remembering them in the image store.
type ImageService struct {
	store     domain.ImageStore
	generator domain.Generator
	prefixes  PrefixSource
	queue     *PermitQueue
	notifier  *Notifier
	timeout   time.Duration
	fallback  string

	mu       sync.Mutex
	flights  map[string]*flight
	tasks    map[string]*Task
	failures map[domain.FailureKind]int64

	generated atomic.Int64
}

// flight is one generation shared by every caller asking for the same key.
type flight struct {
	done      chan struct{}
	url       string
	err       error
	waiters   int
	started   bool
	abandoned bool
	cancel    context.CancelFunc
}

func NewImageService(store domain.ImageStore, generator domain.Generator, prefixes PrefixSource, opts Options) *ImageService {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}
	fallback := opts.DefaultPrefix
	if fallback == "" {
		fallback = "mervel-img-v4-"
	}
	return &ImageService{
		store:     store,
		generator: generator,
		prefixes:  prefixes,
		queue:     NewPermitQueue(opts.MaxConcurrent),
		notifier:  notifier,
		timeout:   opts.GenerateTimeout,
		fallback:  fallback,
		flights:   make(map[string]*flight),
		tasks:     make(map[string]*Task),
		failures:  make(map[domain.FailureKind]int64),
	}
}

func (s *ImageService) Notifier() *Notifier { return s.notifier }
func (s *ImageService) Queue() *PermitQueue { return s.queue }

// Prefix returns the active cache prefix.
func (s *ImageService) Prefix(ctx context.Context) string {
	if s.prefixes == nil {
		return s.fallback
	}
	prefix, err := s.prefixes.ImageCachePrefix(ctx)
	if err != nil || prefix == "" {
		if err != nil {
			logrus.WithError(err).Warn("[IMAGERY] Falling back to default cache prefix")
		}
		return s.fallback
	}
	return prefix
}

// Cached returns the stored image for a product without generating.
func (s *ImageService) Cached(ctx context.Context, productID string) (string, bool) {
	url, ok, err := s.store.Get(ctx, s.Prefix(ctx)+productID)
	if err != nil {
		logrus.WithError(err).Warnf("[IMAGERY] Cache read failed for %s", productID)
		return "", false
	}
	return url, ok
}

// GetOrGenerate returns the cached image for productID or runs gen under a
// permit and caches its result. Concurrent callers for the same product share
// one generation. When ctx ends the caller stops waiting; a generation that
// already holds a permit still completes and is cached.
func (s *ImageService) GetOrGenerate(ctx context.Context, productID string, gen domain.GenerateFunc) (string, error) {
	key := s.Prefix(ctx) + productID
	if url, ok, err := s.store.Get(ctx, key); err != nil {
		logrus.WithError(err).Warnf("[IMAGERY] Cache read failed for %s", key)
	} else if ok {
		return url, nil
	}

	s.mu.Lock()
	f, ok := s.flights[key]
	if !ok || f.abandoned {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{done: make(chan struct{}), cancel: cancel}
		s.flights[key] = f
		go s.fly(fctx, key, productID, f, gen)
	}
	f.waiters++
	s.mu.Unlock()

	select {
	case <-f.done:
		return f.url, f.err
	case <-ctx.Done():
		s.leave(f)
		return "", fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
	}
}

func (s *ImageService) leave(f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.waiters--
	if f.waiters <= 0 && !f.started {
		f.abandoned = true
		f.cancel()
	}
}

func (s *ImageService) fly(ctx context.Context, key, productID string, f *flight, gen domain.GenerateFunc) {
	url, err := s.generate(ctx, key, productID, f, gen)

	s.mu.Lock()
	if s.flights[key] == f {
		delete(s.flights, key)
	}
	f.url, f.err = url, err
	s.mu.Unlock()

	f.cancel()
	close(f.done)
}

func (s *ImageService) generate(ctx context.Context, key, productID string, f *flight, gen domain.GenerateFunc) (string, error) {
	if err := s.queue.Acquire(ctx); err != nil {
		logrus.Debugf("[IMAGERY] %s left the queue before a permit was granted", productID)
		return "", domain.ErrCancelled
	}
	defer s.queue.Release()

	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return "", domain.ErrCancelled
	}
	f.started = true
	s.mu.Unlock()

	// Another instance or an earlier flight may have filled the cache while we waited.
	if url, ok, err := s.store.Get(ctx, key); err == nil && ok {
		return url, nil
	}

	gctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	url, err := gen(gctx)
	if err == nil && url == "" {
		err = errors.New("no image returned")
	}
	if err != nil {
		return "", s.fail(productID, err)
	}

	if err := s.store.Set(ctx, key, url); err != nil {
		logrus.WithError(err).Warnf("[IMAGERY] Could not cache image for %s", productID)
	}
	s.generated.Add(1)
	logrus.Infof("[IMAGERY] Generated image for %s in %s", productID, time.Since(started).Round(time.Millisecond))
	return url, nil
}

func (s *ImageService) fail(productID string, err error) error {
	kind := domain.Classify(err)

	s.mu.Lock()
	s.failures[kind]++
	s.mu.Unlock()

	genErr := &domain.GenerationError{ProductID: productID, Kind: kind, Err: err}
	if notice, first := s.notifier.Notify(kind); first {
		genErr.Notice = &notice
	}
	logrus.WithError(err).Warnf("[IMAGERY] Generation failed for %s (%s)", productID, kind)
	return genErr
}

// ProductImage resolves a product image with the configured generator and the
// product's photography prompt.
func (s *ImageService) ProductImage(ctx context.Context, productID, category string) (string, error) {
	return s.GetOrGenerate(ctx, productID, s.productGenerator(productID, category))
}

func (s *ImageService) productGenerator(productID, category string) domain.GenerateFunc {
	return func(ctx context.Context) (string, error) {
		if s.generator == nil {
			return "", domain.ErrNoGenerator
		}
		return s.generator.Generate(ctx, domain.ProductPrompt(productID, category))
	}
}

// Task is a cancellable image request.
type Task struct {
	ID        string
	ProductID string

	done      chan struct{}
	url       string
	err       error
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

func (t *Task) Done() <-chan struct{} { return t.done }
func (t *Task) Cancelled() bool      { return t.cancelled.Load() }

// Result is valid once Done is closed.
func (t *Task) Result() (string, error) {
	<-t.done
	return t.url, t.err
}

// Wait blocks for the result or until ctx ends.
func (t *Task) Wait(ctx context.Context) (string, error) {
	select {
	case <-t.done:
		return t.url, t.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Submit starts a cancellable request. Reusing the id of a running task
// returns that task.
func (s *ImageService) Submit(ctx context.Context, requestID, productID string, gen domain.GenerateFunc) *Task {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	s.mu.Lock()
	if t, ok := s.tasks[requestID]; ok {
		s.mu.Unlock()
		return t
	}
	tctx, cancel := context.WithCancel(ctx)
	t := &Task{ID: requestID, ProductID: productID, done: make(chan struct{}), cancel: cancel}
	s.tasks[requestID] = t
	s.mu.Unlock()

	go func() {
		url, err := s.GetOrGenerate(tctx, productID, gen)
		if t.cancelled.Load() {
			url, err = "", domain.ErrCancelled
		}
		t.url, t.err = url, err

		s.mu.Lock()
		delete(s.tasks, requestID)
		s.mu.Unlock()

		cancel()
		close(t.done)
	}()
	return t
}

// Cancel marks a running task cancelled. Its result, if any, is discarded.
func (s *ImageService) Cancel(requestID string) bool {
	s.mu.Lock()
	t, ok := s.tasks[requestID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	t.cancelled.Store(true)
	t.cancel()
	return true
}

// LazyImage defers generation until its consumer becomes visible.
type LazyImage struct {
	svc       *ImageService
	productID string
	gen       domain.GenerateFunc

	mu   sync.Mutex
	task *Task
}

func (s *ImageService) Lazy(productID string, gen domain.GenerateFunc) *LazyImage {
	return &LazyImage{svc: s, productID: productID, gen: gen}
}

// LazyProduct is Lazy with the configured generator.
func (s *ImageService) LazyProduct(productID, category string) *LazyImage {
	return s.Lazy(productID, s.productGenerator(productID, category))
}

// Cached reports an already stored image without triggering work.
func (l *LazyImage) Cached(ctx context.Context) (string, bool) {
	return l.svc.Cached(ctx, l.productID)
}

// MarkVisible starts the request the first time it is called and returns the
// same task afterwards.
func (l *LazyImage) MarkVisible(ctx context.Context) *Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.task == nil {
		l.task = l.svc.Submit(ctx, "", l.productID, l.gen)
	}
	return l.task
}

// Task is nil until MarkVisible has been called.
func (l *LazyImage) Task() *Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.task
}

// Close cancels the request if one is running.
func (l *LazyImage) Close() {
	if t := l.Task(); t != nil {
		l.svc.Cancel(t.ID)
	}
}

// PreloadItem names a product to warm.
type PreloadItem struct {
	ProductID string `json:"product_id"`
	Category  string `json:"category"`
}

// PreloadResult reports what Preload did.
type PreloadResult struct {
	Queued  []string `json:"queued"`
	Skipped []string `json:"skipped"`
}

// Preload starts generation for every item that is not cached yet and returns
// without waiting for the results. Each item waits for a permit on its own
// goroutine, so a long preload never holds shared workers.
func (s *ImageService) Preload(ctx context.Context, items []PreloadItem) PreloadResult {
	res := PreloadResult{Queued: []string{}, Skipped: []string{}}
	bg := context.WithoutCancel(ctx)
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		if _, ok := s.Cached(ctx, item.ProductID); ok {
			res.Skipped = append(res.Skipped, item.ProductID)
			continue
		}

		go func(item PreloadItem) {
			if _, err := s.ProductImage(bg, item.ProductID, item.Category); err != nil {
				logrus.WithError(err).Debugf("[IMAGERY] Preload of %s failed", item.ProductID)
			}
		}(item)
		res.Queued = append(res.Queued, item.ProductID)
	}
	if len(res.Queued) > 0 {
		logrus.Infof("[IMAGERY] Preloading %d images (%d already cached)", len(res.Queued), len(res.Skipped))
	}
	return res
}

// Invalidate forgets the current image of a product.
func (s *ImageService) Invalidate(ctx context.Context, productID string) error {
	return s.store.Delete(ctx, s.Prefix(ctx)+productID)
}

// Clear removes the current generation of cached images, or every generation when all is set.
func (s *ImageService) Clear(ctx context.Context, all bool) (int, error) {
	prefix := s.Prefix(ctx)
	if all {
		prefix = ""
	}
	n, err := s.store.Clear(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("clear image cache: %w", err)
	}
	logrus.Infof("[IMAGERY] Cleared %d cached images", n)
	return n, nil
}

// BumpVersion moves to a new cache prefix, leaving old entries unreachable.
func (s *ImageService) BumpVersion(ctx context.Context) (string, error) {
	if s.prefixes == nil {
		return "", errors.New("cache prefix is not configurable")
	}
	return s.prefixes.BumpImageCachePrefix(ctx)
}

// Stats is an admin snapshot of the image pipeline.
type Stats struct {
	Prefix       string                       `json:"prefix"`
	CachedImages int                          `json:"cached_images"`
	CacheBytes   int64                        `json:"cache_bytes"`
	CacheSize    string                       `json:"cache_size"`
	StaleImages  int                          `json:"stale_images"`
	Capacity     int                          `json:"capacity"`
	InFlight     int                          `json:"in_flight"`
	Waiting      int                          `json:"waiting"`
	Peak         int                          `json:"peak"`
	Flights      int                          `json:"flights"`
	OpenTasks    int                          `json:"open_tasks"`
	Generated    int64                        `json:"generated"`
	Failures     map[domain.FailureKind]int64 `json:"failures"`
	Notified     []domain.FailureKind         `json:"notified"`
}

func (s *ImageService) Stats(ctx context.Context) (Stats, error) {
	prefix := s.Prefix(ctx)
	all, err := s.store.Scan(ctx, "")
	if err != nil {
		return Stats{}, fmt.Errorf("scan image cache: %w", err)
	}

	st := Stats{
		Prefix:    prefix,
		Capacity:  s.queue.Capacity(),
		InFlight:  s.queue.InFlight(),
		Waiting:   s.queue.Waiting(),
		Peak:      s.queue.Peak(),
		Generated: s.generated.Load(),
		Failures:  map[domain.FailureKind]int64{},
		Notified:  s.notifier.Shown(),
	}
	for _, e := range all {
		if strings.HasPrefix(e.Key, prefix) {
			st.CachedImages++
			st.CacheBytes += int64(e.Size)
		} else {
			st.StaleImages++
		}
	}
	st.CacheSize = humanize.Bytes(uint64(st.CacheBytes))

	s.mu.Lock()
	st.Flights = len(s.flights)
	st.OpenTasks = len(s.tasks)
	for k, v := range s.failures {
		st.Failures[k] = v
	}
	s.mu.Unlock()

	sort.Slice(st.Notified, func(i, j int) bool { return st.Notified[i] < st.Notified[j] })
	return st, nil
}
