package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus_MapsEveryConstructor(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Unauthorized("no token"), 401},
		{Forbidden("not allowed"), 403},
		{NotFound("order not found"), 404},
		{Validation("missing field"), 400},
		{InvalidTransition("cannot pack an open order"), 409},
		{InsufficientRemaining("only 2 remaining"), 409},
		{Conflict("already resolved"), 409},
		{SyncBusy("sync already running"), 409},
		{UpstreamUnavailable(errors.New("dial tcp: timeout")), 502},
		{UpstreamMalformed(errors.New("unexpected token")), 502},
		{Internal(errors.New("boom")), 500},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), "code=%s", tc.err.Code)
	}
}

func TestError_MessageIncludesWrappedErrorWhenPresent(t *testing.T) {
	wrapped := errors.New("connection refused")
	err := UpstreamUnavailable(wrapped)

	assert.Contains(t, err.Error(), string(CodeUpstreamUnavailable))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestError_MessageOmitsColonWhenNoWrappedError(t *testing.T) {
	err := NotFound("order 42 not found")
	assert.Equal(t, "NOT_FOUND: order 42 not found", err.Error())
}

func TestError_UnwrapReturnsWrappedErr(t *testing.T) {
	wrapped := errors.New("root cause")
	err := Wrap(CodeInternal, "internal error", wrapped)

	assert.Equal(t, wrapped, err.Unwrap())
	assert.True(t, errors.Is(err, wrapped))
}

func TestError_UnwrapNilWhenConstructedWithNew(t *testing.T) {
	err := New(CodeValidation, "bad input")
	assert.Nil(t, err.Unwrap())
}

func TestAs_ExtractsTypedErrorFromChain(t *testing.T) {
	original := NotFound("user not found")
	wrapped := fmt.Errorf("loading profile: %w", original)

	var target *Error
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, CodeNotFound, target.Code)

	// As() itself only handles the direct (non-wrapped) case, matching its
	// doc comment describing the "common case" at the handler boundary.
	extracted, ok := As(original)
	assert.True(t, ok)
	assert.Equal(t, original, extracted)

	_, ok = As(errors.New("plain error"))
	assert.False(t, ok)
}

func TestHTTPStatus_UnknownCodeDefaultsTo500(t *testing.T) {
	err := &Error{Code: Code("SOMETHING_NEW"), Message: "unrecognized"}
	assert.Equal(t, 500, err.HTTPStatus())
}
