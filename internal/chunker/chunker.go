package chunker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultMinWords is the advisory lower bound on chunk size
	DefaultMinWords = 120

	// DefaultMaxWords forces a flush once a chunk reaches this many words
	DefaultMaxWords = 450
)

// ErrInvalidConfig is returned for unusable word bounds
var ErrInvalidConfig = errors.New("invalid chunker config")

var headingRe = regexp.MustCompile(`^#{1,6}\s+.+$`)

// Config holds the word bounds
type Config struct {
	MinWords int
	MaxWords int
}

// DefaultConfig returns the bounds used by the index builder
func DefaultConfig() Config {
	return Config{MinWords: DefaultMinWords, MaxWords: DefaultMaxWords}
}

// Validate checks the word bounds
func (c Config) Validate() error {
	if c.MaxWords < 1 {
		return fmt.Errorf("%w: maxWords must be positive, got %d", ErrInvalidConfig, c.MaxWords)
	}
	if c.MinWords < 0 || c.MinWords > c.MaxWords {
		return fmt.Errorf("%w: minWords %d outside [0, %d]", ErrInvalidConfig, c.MinWords, c.MaxWords)
	}
	return nil
}

// Chunk is one emitted section of a document
type Chunk struct {
	Ordinal int
	Heading string // Heading line in effect, empty before the first heading
	Body    string // Trimmed body without the heading
	Words   int
}

// Text returns the heading and body joined as stored in the index
func (c Chunk) Text() string {
	if c.Heading == "" {
		return c.Body
	}
	return strings.TrimSpace(c.Heading + "\n" + c.Body)
}

// Chunker splits documents into chunks
type Chunker struct {
	config Config
}

// New creates a new Chunker instance
func New(config Config) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: config}, nil
}

// Config returns the bounds this chunker was built with
func (c *Chunker) Config() Config {
	return c.config
}

// IsHeading reports whether line is a markdown ATX heading
func IsHeading(line string) bool {
	return headingRe.MatchString(line)
}

// Chunk splits text into ordered chunks
func (c *Chunker) Chunk(text string) []Chunk {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		chunks  []Chunk
		heading string
		buf     []string
		words   int
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		body := strings.TrimSpace(strings.Join(buf, "\n"))
		if body != "" {
			chunks = append(chunks, Chunk{
				Ordinal: len(chunks),
				Heading: heading,
				Body:    body,
				Words:   words,
			})
		}
		buf = buf[:0]
		words = 0
	}

	for _, line := range lines {
		if IsHeading(line) {
			flush()
			heading = strings.TrimSpace(line)
			continue
		}

		buf = append(buf, line)
		words += len(strings.Fields(line))
		if words >= c.config.MaxWords {
			flush()
		}
	}
	flush()

	return chunks
}

// Texts returns only the stored text of each chunk
func (c *Chunker) Texts(text string) []string {
	chunks := c.Chunk(text)
	out := make([]string, len(chunks))
	for i, ch := range chunks {
		out[i] = ch.Text()
	}
	return out
}
