package keymaster

import (
	"crypto/rand"
	"io"
	"sync"
)

// entropyMixer implements add_rng_entropy: Go's crypto/rand cannot be
// reseeded, so caller-supplied bytes are folded in by XOR over crypto/rand's
// own output instead of replacing it, preserving its CSPRNG guarantees while
// still letting supplied entropy perturb every draw.
type entropyMixer struct {
	mu   sync.Mutex
	pool []byte
}

func newEntropyMixer() *entropyMixer {
	return &entropyMixer{}
}

// Mix folds data into the pool. Safe under concurrency.
func (m *entropyMixer) Mix(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool = append(m.pool, data...)
	if len(m.pool) > 4096 {
		m.pool = m.pool[len(m.pool)-4096:]
	}
}

// Read implements io.Reader, the process-wide randomness source every
// primitive adapter draws from.
func (m *entropyMixer) Read(p []byte) (int, error) {
	n, err := rand.Reader.Read(p)
	if err != nil {
		return n, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range p[:n] {
		if len(m.pool) == 0 {
			break
		}
		p[i] ^= m.pool[i%len(m.pool)]
	}
	return n, nil
}

var _ io.Reader = (*entropyMixer)(nil)
