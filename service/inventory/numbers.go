package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NumberGenerator produces human-readable, collision-checked transfer
// numbers: PREFIX-20060102150405-8HEXCHAR.
type NumberGenerator struct {
	prefix string
	exists func(string) (bool, error)
}

func NewNumberGenerator(prefix string, exists func(string) (bool, error)) *NumberGenerator {
	if prefix == "" {
		prefix = "TRF"
	}
	return &NumberGenerator{prefix: prefix, exists: exists}
}

const numberAttempts = 5

// Next returns a fresh transfer number. The uuid suffix makes collisions
// vanishingly rare; the uniqueness check plus the DB unique index catch the
// rest.
func (g *NumberGenerator) Next() (string, error) {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		number := fmt.Sprintf("%s-%s-%s", g.prefix, time.Now().UTC().Format("20060102150405"), suffix)
		taken, err := g.exists(number)
		if err != nil {
			return "", fmt.Errorf("checking transfer number: %w", err)
		}
		if !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique transfer number after %d attempts", numberAttempts)
}
