package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator assigns IDs to events and packets.
type IDGenerator interface {
	Generate() string
}

var (
	idGenLock sync.Mutex
	idGen     IDGenerator
)

// UseSequentialIDGenerator numbers IDs in sequence, keeping repeated
// simulation runs deterministic. It must be called before the first ID is
// generated.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator generates IDs that stay unique across goroutines,
// at the cost of determinism.
func UseParallelIDGenerator() {
	setIDGenerator(parallelIDGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGenLock.Lock()
	defer idGenLock.Unlock()

	if idGen != nil {
		log.Panic("cannot change id generator type after using it")
	}

	idGen = g
}

// GetIDGenerator returns the ID generator of the current simulation,
// defaulting to the sequential one.
func GetIDGenerator() IDGenerator {
	idGenLock.Lock()
	defer idGenLock.Unlock()

	if idGen == nil {
		idGen = &sequentialIDGenerator{}
	}

	return idGen
}

type sequentialIDGenerator struct {
	next atomic.Uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(g.next.Add(1), 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}
