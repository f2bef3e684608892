package insurance

import (
	"errors"
	"fmt"
	"sync"
)

// PredictorSlot holds the active Predictor. It is created by the composition
// root and handed to whatever serves requests; a reload replaces the Predictor
// wholesale.
type PredictorSlot struct {
	mu        sync.RWMutex
	predictor *Predictor
	loadErr   error
}

func NewPredictorSlot() *PredictorSlot {
	return &PredictorSlot{loadErr: fmt.Errorf("%w: not loaded yet", ErrModelUnavailable)}
}

func (s *PredictorSlot) Set(p *Predictor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictor = p
	s.loadErr = nil
}

// Fail records a load failure. A previously loaded Predictor stays active
// so a bad reload does not take a working form down.
func (s *PredictorSlot) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.predictor == nil {
		s.loadErr = err
	}
}

func (s *PredictorSlot) Get() (*Predictor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.predictor != nil {
		return s.predictor, nil
	}
	if errors.Is(s.loadErr, ErrModelUnavailable) {
		return nil, s.loadErr
	}
	return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, s.loadErr)
}
