package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("block b-2: %w", MissingParameter("data_value", "action-7"))

	assert.Equal(t, KindMissingParameter, KindOf(err))
	assert.True(t, Is(err, KindMissingParameter))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "block b-2: missing parameter data_value (ref action-7)", err.Error())
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestDatabase_KeepsExistingKind(t *testing.T) {
	nf := NotFound("suite", "s-1")
	assert.Same(t, error(nf), Database("load suite", nf))

	cause := errors.New("disk I/O error")
	err := Database("insert item log", cause)
	assert.Equal(t, KindDatabase, KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestVerificationFailed_Message(t *testing.T) {
	err := VerificationFailed("Welcome", "Goodbye", "a-1")
	assert.Contains(t, err.Error(), `expected text "Welcome", got "Goodbye"`)
}
