// Package prompts supplies the long-form prompts drawn by concurrent probes.
// Sources are injected into the harness so tests can pin a seed or a fixed
// prompt instead of relying on a package-level pool.
package prompts

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Source yields one prompt per probe. Implementations must be safe for
// concurrent use; repeats across probes are allowed and expected.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// Pool picks uniformly at random from a fixed prompt list.
type Pool struct {
	prompts []string
	mu      sync.Mutex
	rnd     *rand.Rand
}

// NewPool builds a pool over the given prompts. A zero seed derives one from
// the clock; any other seed makes the pick order reproducible.
func NewPool(prompts []string, seed int64) *Pool {
	if len(prompts) == 0 {
		prompts = DefaultPrompts()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Pool{
		prompts: append([]string(nil), prompts...),
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// Next returns a uniformly chosen prompt.
func (p *Pool) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts[p.rnd.Intn(len(p.prompts))], nil
}

// Len returns the pool size.
func (p *Pool) Len() int {
	return len(p.prompts)
}

// DefaultPrompts returns the built-in pool: open-ended essay prompts long
// enough to drive sustained token generation.
func DefaultPrompts() []string {
	return []string{
		"Describe the history of artificial intelligence in detail, starting from the Turing test through the deep learning era. Cover the major milestones, the key technical breakthroughs, and the likely future directions, explaining the character and impact of each phase as thoroughly as you can.",
		"Write a long-form article on climate change covering the causes of global warming, its effects, possible solutions, and the policies and actions different countries have taken in response. Analyze the scientific evidence and concrete case studies in detail.",
		"Explain quantum computing in depth: the basic principles, the current state of the field, its application prospects, and how it differs from classical computing. Include clear explanations of qubits, entanglement, and the major quantum algorithms.",
		"Write a comprehensive introduction to blockchain technology, including how it works, its application scenarios, an analysis of its strengths and weaknesses, and real deployments across different industries. Go into the technical details and the business value.",
		"Describe the fundamentals of machine learning: the core concepts, the main families of algorithms, the application domains, and how a real project is carried out end to end. Cover supervised, unsupervised, and reinforcement learning in detail.",
		"Write a long-form article on biotechnology covering recent advances in gene editing, synthetic biology, and biopharmaceuticals, along with the potential impact of these technologies on society and the ethical questions they raise.",
		"Explain cloud computing in depth: the concept, the service models, the deployment models, and the role it plays in enterprise digital transformation. Include a detailed comparison of IaaS, PaaS, and SaaS.",
		"Write a comprehensive analysis of renewable energy covering solar, wind, hydro, and biomass: the technical characteristics of each, their current maturity, their cost profiles, and the role they play in the global energy transition.",
		"Describe the architecture of the Internet of Things, its application scenarios, its development trends, and its place in the era of big data and artificial intelligence. Cover sensor technology, communication protocols, and data processing in detail.",
		"Write a deep analysis of the digital economy covering digital transformation, digital payments, e-commerce, and digital marketing: the current state of each area, where it is heading, and how it is reshaping how businesses operate.",
	}
}
