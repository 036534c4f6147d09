package reading

import (
	"errors"
	"fmt"

	"github.com/kerbaras/novels/pkg/data"
)

var (
	ErrNotFound = data.ErrNotFound

	// ErrMalformedReference means a chapter carries no usable novel id.
	ErrMalformedReference = errors.New("novel id could not be found")

	ErrDisposed = errors.New("reading session disposed")
)

// StatusCoder is implemented by transport errors that know their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// LoadError is a failed fetch during Start, carrying the message shown to the
// reader and the HTTP status when the transport reported one.
type LoadError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Message, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ExtractNovelID resolves the novel a chapter belongs to, whether the chapter
// embeds the novel document or only its id.
func ExtractNovelID(chapter *data.Chapter) (string, error) {
	if chapter == nil {
		return "", ErrMalformedReference
	}
	if n := chapter.Novel.Novel; n != nil {
		if id := data.CanonicalID(n.ID); id != "" {
			return id, nil
		}
	}
	if id := data.CanonicalID(chapter.Novel.ID); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("chapter %s: %w", chapter.ID, ErrMalformedReference)
}
