package fakes

import (
	"context"
	"sync"
	"supplychaintree/src/domain"
)

// GenerationLocker guarda em memória os roots com geração em andamento.
type GenerationLocker struct {
	mu       sync.Mutex
	held     map[int64]bool
	acquired int
	released int
}

func NewGenerationLocker() *GenerationLocker {
	return &GenerationLocker{held: map[int64]bool{}}
}

func (l *GenerationLocker) Acquire(ctx context.Context, rootID int64) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[rootID] {
		return nil, nil
	}
	l.held[rootID] = true
	l.acquired++

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, rootID)
		l.released++
		return nil
	}, nil
}

// Hold simula outra geração em andamento para rootID.
func (l *GenerationLocker) Hold(rootID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[rootID] = true
}

func (l *GenerationLocker) Counts() (acquired int, released int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquired, l.released
}

// EventPublisher registra os eventos publicados; Err força falha na publicação.
type EventPublisher struct {
	mu     sync.Mutex
	events []domain.EdgeEvent
	Err    error
}

func (p *EventPublisher) PublishEdgeEvents(ctx context.Context, events ...domain.EdgeEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *EventPublisher) Events() []domain.EdgeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.EdgeEvent(nil), p.events...)
}
