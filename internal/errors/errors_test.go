package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(KindInvalidInput, "no data rows"),
			want: "no data rows",
		},
		{
			name: "component and op",
			err:  New(KindOutOfDomain, "x=9 outside domain").WithComponent("interp").WithOperation("Evaluate"),
			want: "interp: Evaluate: x=9 outside domain",
		},
		{
			name: "wrapped",
			err:  Wrap(fmt.Errorf("disk gone"), KindResource, "open input").WithComponent("timeseries"),
			want: "timeseries: open input: disk gone",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsKindWalksChain(t *testing.T) {
	inner := New(KindOutOfDomain, "x outside domain")
	outer := Wrap(inner, KindInvariant, "profile evaluation")

	assert.True(t, IsKind(outer, KindInvariant))
	assert.True(t, IsKind(outer, KindOutOfDomain))
	assert.False(t, IsKind(outer, KindResource))
	assert.False(t, IsKind(nil, KindInvariant))

	// A foreign error wrapped via %w is still traversed.
	wrapped := fmt.Errorf("run aborted: %w", inner)
	assert.True(t, IsKind(wrapped, KindOutOfDomain))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(fmt.Errorf("plain")))
	assert.Equal(t, KindResource, KindOf(New(KindResource, "open failed")))
	assert.Equal(t, KindInvariant, KindOf(Wrap(New(KindOutOfDomain, "x"), KindInvariant, "outer")))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, KindResource, "ignored"))
	assert.Nil(t, Wrapf(nil, KindResource, "ignored %d", 1))
}
