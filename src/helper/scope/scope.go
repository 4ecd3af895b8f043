// Package scope agrupa a liberação de recursos encadeados (stream -> cursor -> transação)
// em uma única operação de release que executa no máximo uma vez.
package scope

import (
	"errors"
	"fmt"
	"sync"
)

type ReleaseFunc func() error

// Scope guarda as funções de liberação e as executa em ordem inversa de registro.
type Scope struct {
	mu       sync.Mutex
	releases []ReleaseFunc
	released bool
	err      error
}

func New() *Scope {
	return &Scope{}
}

// Defer registra uma liberação. Se o scope já foi liberado, executa imediatamente.
func (s *Scope) Defer(fn ReleaseFunc) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		if err := fn(); err != nil {
			s.mu.Lock()
			s.err = errors.Join(s.err, err)
			s.mu.Unlock()
		}
		return
	}
	s.releases = append(s.releases, fn)
	s.mu.Unlock()
}

// Release executa todas as liberações uma única vez; chamadas seguintes retornam o mesmo erro.
func (s *Scope) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return s.err
	}
	s.released = true

	var errs []error
	for i := len(s.releases) - 1; i >= 0; i-- {
		if err := s.releases[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.releases = nil
	s.err = errors.Join(errs...)

	return s.err
}

func (s *Scope) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// WithCleanup anexa o erro de limpeza ao erro principal sem substituí-lo.
// errors.Is continua encontrando o erro principal.
func WithCleanup(primary error, cleanup error) error {
	if cleanup == nil {
		return primary
	}
	if primary == nil {
		return cleanup
	}
	return errors.Join(primary, fmt.Errorf("cleanup failed: %w", cleanup))
}
