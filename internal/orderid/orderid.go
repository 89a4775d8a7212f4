package orderid

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	Prefix     = "ORD-"
	randLength = 5
	alphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
)

type Generator struct {
	Now  func() time.Time
	Rand func(n int) int

	mu   sync.Mutex
	last string
}

var std = &Generator{}

// New returns an id like ORD-M1ZK3Q4A-7F2QX.
func New() string {
	return std.Next()
}

func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		id := g.build()
		if id != g.last {
			g.last = id
			return id
		}
	}
}

func (g *Generator) build() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	intn := rand.IntN
	if g.Rand != nil {
		intn = g.Rand
	}

	var sb strings.Builder
	sb.Grow(randLength)
	for i := 0; i < randLength; i++ {
		sb.WriteByte(alphabet[intn(len(alphabet))])
	}

	ts := strconv.FormatInt(now().UnixMilli(), 36)
	return strings.ToUpper(Prefix + ts + "-" + sb.String())
}
