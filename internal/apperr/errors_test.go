package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Fetch("reddit", "unexpected status 503", nil)
	assert.Equal(t, "fetch [reddit]: unexpected status 503", err.Error())

	err = Storage("transact write failed", errors.New("throttled"))
	assert.Equal(t, "storage [store]: transact write failed: throttled", err.Error())

	assert.Equal(t, "no_content: all sources failed", NoContent("all sources failed").Error())
}

func TestIsFollowsWrapping(t *testing.T) {
	base := Fetch("gnews", "request failed", context.DeadlineExceeded)
	wrapped := fmt.Errorf("[Pipeline] source gnews: %w", base)

	assert.True(t, Is(wrapped, KindFetch))
	assert.False(t, Is(wrapped, KindStorage))
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))
	assert.False(t, Is(errors.New("plain"), KindFetch))
	assert.False(t, Is(nil, KindFetch))
}

func TestIsFindsNestedKind(t *testing.T) {
	inner := InvalidInput("store", "no moments to store")
	outer := Storage("store step rejected", inner)

	assert.True(t, Is(outer, KindStorage))
	assert.True(t, Is(outer, KindInvalidInput))

	kind, ok := KindOf(outer)
	assert.True(t, ok)
	assert.Equal(t, KindStorage, kind)
}
