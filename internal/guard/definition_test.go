package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/vigilgo/internal/state"
)

func blockingTask(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestAddInvariant_RejectsReservedTag(t *testing.T) {
	t.Parallel()

	def := New(state.New(0)).AttachTask(blockingTask)

	_, err := def.AddInvariant(ReservedTag, func(int) bool { return true })
	require.ErrorIs(t, err, ErrReservedTag)
	require.Contains(t, err.Error(), ReservedTag)
}

func TestAddInvariant_RejectsDuplicateTag(t *testing.T) {
	t.Parallel()

	def := New(state.New(0)).AttachTask(blockingTask)

	def, err := def.AddInvariant("bounded", func(int) bool { return true })
	require.NoError(t, err)

	_, err = def.AddInvariant("bounded", func(int) bool { return true })
	require.ErrorIs(t, err, ErrDuplicateTag)
	require.Contains(t, err.Error(), "bounded")
}

func TestAddInvariant_TagMatchingIsCaseSensitive(t *testing.T) {
	t.Parallel()

	def := New(state.New(0)).AttachTask(blockingTask)

	def, err := def.AddInvariant("bounded", func(int) bool { return true })
	require.NoError(t, err)

	def, err = def.AddInvariant("Bounded", func(int) bool { return true })
	require.NoError(t, err)
	require.Equal(t, []string{"bounded", "Bounded"}, def.Invariants())
}

func TestAddInvariant_DistinctTagsAccumulateInOrder(t *testing.T) {
	t.Parallel()

	def := New(state.New(0)).AttachTask(blockingTask)

	var err error
	for _, tag := range []string{"a", "b", "c"} {
		def, err = def.AddInvariant(tag, func(int) bool { return true })
		require.NoError(t, err)
	}
	require.Equal(t, []string{"a", "b", "c"}, def.Invariants())
}

// Forking the same stage twice must yield independent definitions: appends on
// one fork never become visible on a sibling.
func TestStages_AreIndependentValues(t *testing.T) {
	t.Parallel()

	base := New(state.New(0)).AttachTask(blockingTask)
	base, err := base.AddInvariant("shared", func(int) bool { return true })
	require.NoError(t, err)

	left, err := base.AddInvariant("left", func(int) bool { return true })
	require.NoError(t, err)
	right, err := base.AddInvariant("right", func(int) bool { return true })
	require.NoError(t, err)

	require.Equal(t, []string{"shared"}, base.Invariants())
	require.Equal(t, []string{"shared", "left"}, left.Invariants())
	require.Equal(t, []string{"shared", "right"}, right.Invariants())
}

func TestStages_HandlerForksAreIndependent(t *testing.T) {
	t.Parallel()

	// The clause is already false, so every run takes the violation path
	// immediately and counts its own handlers.
	store := state.New(-1)
	base := New(store).AttachTask(blockingTask)
	base, err := base.AddInvariant("nonNegative", func(s int) bool { return s >= 0 })
	require.NoError(t, err)

	var leftCalls, rightCalls int
	left := base.AddViolationHandler(func(context.Context, int, []string) error {
		leftCalls++
		return nil
	})
	right := base.AddViolationHandler(func(context.Context, int, []string) error {
		rightCalls++
		return nil
	})
	right = right.AddViolationHandler(func(context.Context, int, []string) error {
		rightCalls++
		return nil
	})

	require.NoError(t, left.Run(context.Background()))
	require.Equal(t, 1, leftCalls)
	require.Equal(t, 0, rightCalls)

	require.NoError(t, right.Run(context.Background()))
	require.Equal(t, 1, leftCalls)
	require.Equal(t, 2, rightCalls)
}

func TestNew_NilSourcePanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { New[int](nil) })
}

func TestAttachTask_NilTaskPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { New(state.New(0)).AttachTask(nil) })
}
