package shortlink

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/sqids/sqids-go"
)

// Shuffled so consecutive numbers do not map to visibly consecutive ids.
const idAlphabet = "k3G7QAe51FCsiWrNOYBUwM6XzZvdLT4j9JhyHKg2cVbxfERq0mSoI8lDpunPat"

// reservedIDs would shadow a static route or look like one.
var reservedIDs = map[string]struct{}{
	"users":   {},
	"login":   {},
	"healthz": {},
	"readyz":  {},
	"metrics": {},
	"version": {},
	"api":     {},
	"favicon": {},
}

func IsReservedID(id string) bool {
	_, ok := reservedIDs[strings.ToLower(id)]
	return ok
}

type IDGenerator interface {
	NewID() (string, error)
}

// SqidsGenerator encodes a random number below 62^minLength, padded by sqids
// to at least minLength characters.
type SqidsGenerator struct {
	sq    *sqids.Sqids
	bound uint64
	rand  func(n uint64) uint64
}

func NewSqidsGenerator(minLength int) (*SqidsGenerator, error) {
	if minLength <= 0 || minLength > 255 {
		return nil, fmt.Errorf("id min length %d out of range", minLength)
	}
	sq, err := sqids.New(sqids.Options{
		Alphabet:  idAlphabet,
		MinLength: uint8(minLength),
	})
	if err != nil {
		return nil, fmt.Errorf("sqids init: %w", err)
	}
	return &SqidsGenerator{
		sq:    sq,
		bound: idSpace(minLength),
		rand:  rand.Uint64N,
	}, nil
}

// idSpace is 62^n, saturating at MaxUint64.
func idSpace(n int) uint64 {
	space := uint64(1)
	for range n {
		if space > math.MaxUint64/62 {
			return math.MaxUint64
		}
		space *= 62
	}
	return space
}

func (g *SqidsGenerator) NewID() (string, error) {
	return g.sq.Encode([]uint64{g.rand(g.bound)})
}
