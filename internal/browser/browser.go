// Package browser is the narrow automation surface the engine drives: open a page,
// find an element by locator, and interact with it.
package browser

import (
	"context"
	"fmt"

	"github.com/parthasarathygopu/orca/internal/models"
)

// By is a locator: a strategy plus its value.
type By struct {
	Kind  models.TargetKind
	Value string
}

func (b By) String() string {
	return fmt.Sprintf("%s(%s)", b.Kind, b.Value)
}

// Element is a handle to a located element.
type Element interface {
	SendKeys(ctx context.Context, text string) error
	Click(ctx context.Context) error
	DoubleClick(ctx context.Context) error
	Text(ctx context.Context) (string, error)
}

// Driver is one browser session. A session belongs to a single run.
type Driver interface {
	Open(ctx context.Context, url string) error
	FindElement(ctx context.Context, by By) (Element, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}

// Factory opens new sessions.
type Factory interface {
	NewSession(ctx context.Context) (Driver, error)
}
