package error

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CapturesStack(t *testing.T) {
	err := New(KindIoError, "disk read failed")
	assert.Equal(t, KindIoError, err.Kind)
	assert.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Error(), "IoError")
	assert.Contains(t, err.Error(), "disk read failed")
}

func TestWrap_PlainErrorProducesNewQueryError(t *testing.T) {
	base := errors.New("boom")
	wrapped := Wrap(base, KindIoError, "GetRmd", "indexmeta")

	require.NotNil(t, wrapped)
	assert.Equal(t, KindIoError, wrapped.Kind)
	assert.Equal(t, "GetRmd", wrapped.Operation)
	assert.Equal(t, "indexmeta", wrapped.Component)
	assert.Equal(t, base, wrapped.Cause)
	assert.Same(t, base, errors.Unwrap(wrapped))
}

func TestWrap_QueryErrorFillsBlanksInPlace(t *testing.T) {
	original := New(KindMissingRelation, "no such relation")
	wrapped := Wrap(original, KindIoError, "GetRmd", "indexmeta")

	assert.Same(t, original, wrapped)
	assert.Equal(t, KindMissingRelation, wrapped.Kind, "kind must not be overwritten by Wrap")
	assert.Equal(t, "GetRmd", wrapped.Operation)
	assert.Equal(t, "indexmeta", wrapped.Component)
}

func TestWrap_DoesNotOverwriteExistingOperationAndComponent(t *testing.T) {
	original := New(KindPlanMismatch, "widths disagree")
	original.Operation = "Join.ComputeResult"
	original.Component = "join"

	wrapped := Wrap(original, KindIoError, "OtherOp", "otherpkg")
	assert.Equal(t, "Join.ComputeResult", wrapped.Operation)
	assert.Equal(t, "join", wrapped.Component)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, KindIoError, "op", "component"))
}

func TestWithPlanString_ChainsAndAppearsInMessage(t *testing.T) {
	err := New(KindLhsBelowRange, "lhs below range").WithPlanString("Join(Scan(#1), Scan(#2))")
	assert.Equal(t, "Join(Scan(#1), Scan(#2))", err.PlanString)
	assert.Contains(t, err.Error(), "[plan: Join(Scan(#1), Scan(#2))]")
}

func TestError_IncludesCauseChain(t *testing.T) {
	base := errors.New("underlying io failure")
	wrapped := Wrap(base, KindIoError, "Read", "scan")
	assert.Contains(t, wrapped.Error(), "underlying io failure")
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		KindMissingRelation: "MissingRelation",
		KindLhsBelowRange:   "LhsBelowRange",
		KindIoError:         "IoError",
		KindPlanMismatch:    "PlanMismatch",
		KindQueryAborted:    "QueryAborted",
		Kind(999):           "Unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestFormatStack_NonEmptyForCapturedError(t *testing.T) {
	err := New(KindIoError, "disk read failed")
	assert.Contains(t, err.FormatStack(), "Stack trace:")
}

func TestFormatStack_EmptyWhenNoStack(t *testing.T) {
	err := &QueryError{Kind: KindIoError, Message: "no stack"}
	assert.Equal(t, "", err.FormatStack())
}
