package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ===============================
// EVENT INTERFACE
// ===============================

// Event represents a domain event
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetUserID() string
	GetMetadata() map[string]interface{}
}

// BaseEvent provides common event functionality
type BaseEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    string                 `json:"user_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// GetEventID returns the event ID
func (e *BaseEvent) GetEventID() string {
	return e.EventID
}

// GetEventType returns the event type
func (e *BaseEvent) GetEventType() string {
	return e.EventType
}

// GetTimestamp returns the event timestamp
func (e *BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// GetUserID returns the user ID associated with the event
func (e *BaseEvent) GetUserID() string {
	return e.UserID
}

// GetMetadata returns the event metadata
func (e *BaseEvent) GetMetadata() map[string]interface{} {
	return e.Metadata
}

func newBaseEvent(eventType, userID string) BaseEvent {
	return BaseEvent{
		EventID:   GenerateEventID(),
		EventType: eventType,
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// GenerateEventID returns a random event identifier
func GenerateEventID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("evt-%d", time.Now().UnixNano())
	}
	return id.String()
}

// ===============================
// EVENT BUS INTERFACE
// ===============================

// EventBus defines the event publishing and subscription interface
type EventBus interface {
	// Publishing
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event) error

	// Subscription
	Subscribe(eventType string, handler EventHandler) error
	SubscribePattern(pattern string, handler EventHandler) error

	// Management
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health() error
	Stats() *EventBusStats
}

// EventHandler represents an event handler function
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
	GetHandlerID() string
}

// EventHandlerFunc is a function type that implements EventHandler
type EventHandlerFunc struct {
	ID   string
	Func func(ctx context.Context, event Event) error
}

// Handle implements EventHandler
func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f.Func(ctx, event)
}

// GetHandlerID implements EventHandler
func (f EventHandlerFunc) GetHandlerID() string {
	return f.ID
}

// EventBusStats represents event bus statistics
type EventBusStats struct {
	EventsPublished int64         `json:"events_published"`
	EventsProcessed int64         `json:"events_processed"`
	EventsFailed    int64         `json:"events_failed"`
	HandlersCount   int           `json:"handlers_count"`
	QueueDepth      int           `json:"queue_depth"`
	Uptime          time.Duration `json:"uptime"`
}

// ===============================
// IN-MEMORY EVENT BUS
// ===============================

// EventBusConfig holds configuration for the event bus
type EventBusConfig struct {
	BufferSize     int
	WorkerCount    int
	HandlerTimeout time.Duration
}

// DefaultEventBusConfig returns default configuration
func DefaultEventBusConfig() *EventBusConfig {
	return &EventBusConfig{
		BufferSize:     256,
		WorkerCount:    2,
		HandlerTimeout: 10 * time.Second,
	}
}

// inMemoryEventBus implements EventBus using a buffered channel and a fixed
// worker pool. Until Start is called, PublishAsync delivers synchronously.
type inMemoryEventBus struct {
	mu              sync.RWMutex
	handlers        map[string][]EventHandler
	patternHandlers map[string][]EventHandler
	eventQueue      chan eventMessage
	logger          *zap.Logger
	config          *EventBusConfig
	startTime       time.Time
	running         atomic.Bool
	stopped         atomic.Bool
	done            chan struct{}
	wg              sync.WaitGroup

	published atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// eventMessage wraps an event with context
type eventMessage struct {
	ctx   context.Context
	event Event
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(config *EventBusConfig, logger *zap.Logger) EventBus {
	if config == nil {
		config = DefaultEventBusConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultEventBusConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultEventBusConfig().WorkerCount
	}
	if config.HandlerTimeout <= 0 {
		config.HandlerTimeout = DefaultEventBusConfig().HandlerTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &inMemoryEventBus{
		handlers:        make(map[string][]EventHandler),
		patternHandlers: make(map[string][]EventHandler),
		eventQueue:      make(chan eventMessage, config.BufferSize),
		logger:          logger,
		config:          config,
		startTime:       time.Now(),
		done:            make(chan struct{}),
	}
}

// Publish processes an event synchronously
func (b *inMemoryEventBus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	b.published.Add(1)
	b.logger.Debug("Publishing event",
		zap.String("event_id", event.GetEventID()),
		zap.String("event_type", event.GetEventType()),
	)

	if err := b.processEvent(ctx, event); err != nil {
		b.failed.Add(1)
		b.logger.Error("Failed to process event",
			zap.String("event_id", event.GetEventID()),
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
		return err
	}
	b.processed.Add(1)
	return nil
}

// PublishAsync queues an event for the workers. The request context's
// cancellation is detached so handlers outlive the request.
func (b *inMemoryEventBus) PublishAsync(ctx context.Context, event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if b.stopped.Load() {
		return fmt.Errorf("event bus is stopped")
	}
	if !b.running.Load() {
		return b.Publish(ctx, event)
	}

	select {
	case b.eventQueue <- eventMessage{ctx: context.WithoutCancel(ctx), event: event}:
		b.published.Add(1)
		return nil
	default:
		return fmt.Errorf("event queue is full")
	}
}

// Subscribe subscribes to events of a specific type
func (b *inMemoryEventBus) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	b.logger.Debug("Handler subscribed",
		zap.String("event_type", eventType),
		zap.String("handler_id", handler.GetHandlerID()),
	)
	return nil
}

// SubscribePattern subscribes to events matching a pattern such as
// "checkin.*" or "*"
func (b *inMemoryEventBus) SubscribePattern(pattern string, handler EventHandler) error {
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.patternHandlers[pattern] = append(b.patternHandlers[pattern], handler)

	b.logger.Debug("Pattern handler subscribed",
		zap.String("pattern", pattern),
		zap.String("handler_id", handler.GetHandlerID()),
	)
	return nil
}

// Start starts the event bus workers
func (b *inMemoryEventBus) Start(ctx context.Context) error {
	if b.stopped.Load() {
		return fmt.Errorf("event bus is stopped")
	}
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}

	b.logger.Info("Starting event bus", zap.Int("worker_count", b.config.WorkerCount))
	for i := 0; i < b.config.WorkerCount; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}
	return nil
}

// Stop drains queued events and stops the workers
func (b *inMemoryEventBus) Stop(ctx context.Context) error {
	if !b.stopped.CompareAndSwap(false, true) {
		return nil
	}
	b.logger.Info("Stopping event bus")

	if !b.running.Load() {
		return nil
	}
	close(b.done)

	finished := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		b.logger.Info("Event bus stopped successfully")
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus stop timeout", zap.Int("queue_depth", len(b.eventQueue)))
		return ctx.Err()
	}
}

// Health checks the health of the event bus
func (b *inMemoryEventBus) Health() error {
	if b.stopped.Load() {
		return fmt.Errorf("event bus is stopped")
	}

	queueDepth := len(b.eventQueue)
	if queueDepth > b.config.BufferSize*80/100 {
		return fmt.Errorf("event queue is %d%% full", queueDepth*100/b.config.BufferSize)
	}
	return nil
}

// Stats returns event bus statistics
func (b *inMemoryEventBus) Stats() *EventBusStats {
	b.mu.RLock()
	handlers := 0
	for _, hs := range b.handlers {
		handlers += len(hs)
	}
	for _, hs := range b.patternHandlers {
		handlers += len(hs)
	}
	b.mu.RUnlock()

	return &EventBusStats{
		EventsPublished: b.published.Load(),
		EventsProcessed: b.processed.Load(),
		EventsFailed:    b.failed.Load(),
		HandlersCount:   handlers,
		QueueDepth:      len(b.eventQueue),
		Uptime:          time.Since(b.startTime),
	}
}

// worker processes events from the queue until Stop, then drains what is left
func (b *inMemoryEventBus) worker(workerID int) {
	defer b.wg.Done()

	for {
		select {
		case msg := <-b.eventQueue:
			b.handleQueued(workerID, msg)
		case <-b.done:
			for {
				select {
				case msg := <-b.eventQueue:
					b.handleQueued(workerID, msg)
				default:
					return
				}
			}
		}
	}
}

func (b *inMemoryEventBus) handleQueued(workerID int, msg eventMessage) {
	if err := b.processEvent(msg.ctx, msg.event); err != nil {
		b.failed.Add(1)
		b.logger.Error("Failed to process event",
			zap.Int("worker_id", workerID),
			zap.String("event_id", msg.event.GetEventID()),
			zap.String("event_type", msg.event.GetEventType()),
			zap.Error(err),
		)
		return
	}
	b.processed.Add(1)
}

// processEvent runs every matching handler
func (b *inMemoryEventBus) processEvent(ctx context.Context, event Event) error {
	eventType := event.GetEventType()

	b.mu.RLock()
	var allHandlers []EventHandler
	allHandlers = append(allHandlers, b.handlers[eventType]...)
	for pattern, handlers := range b.patternHandlers {
		if matchesPattern(eventType, pattern) {
			allHandlers = append(allHandlers, handlers...)
		}
	}
	b.mu.RUnlock()

	var failed int
	for _, handler := range allHandlers {
		if err := b.executeHandler(ctx, handler, event); err != nil {
			failed++
			b.logger.Warn("Event handler failed",
				zap.String("handler_id", handler.GetHandlerID()),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to execute %d out of %d handlers", failed, len(allHandlers))
	}
	return nil
}

// executeHandler executes a single handler with timeout and recovery
func (b *inMemoryEventBus) executeHandler(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Handler panicked",
				zap.String("handler_id", handler.GetHandlerID()),
				zap.String("event_type", event.GetEventType()),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("handler %s panicked: %v", handler.GetHandlerID(), r)
		}
	}()

	handlerCtx, cancel := context.WithTimeout(ctx, b.config.HandlerTimeout)
	defer cancel()

	return handler.Handle(handlerCtx, event)
}

// matchesPattern checks if an event type matches a pattern
func matchesPattern(eventType, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(eventType, prefix)
	}
	return eventType == pattern
}
