package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/ci"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

func TestRunBuild_DispatchLocateAndWatch(t *testing.T) {
	t.Parallel()

	b := &fakeBuilder{runID: 42}
	f := &fakeFetcher{snaps: []*domain.Snapshot{completedSnapshot(domain.ConclusionSuccess)}}
	var out bytes.Buffer

	err := runBuild(context.Background(), &out, b, f, buildRunOptions{
		Inputs: map[string]string{"base_image": "quay.io/ansible/ee-minimal-rhel9:latest"},
		Locate: ci.LocateOptions{Attempts: 3, Delay: time.Second, Window: 10 * time.Second},
		Watch:  fastWatch(OutputText, true),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"base_image": "quay.io/ansible/ee-minimal-rhel9:latest"}, b.inputs)
	assert.Equal(t, 3, b.locateOpts.Attempts)
	assert.Contains(t, out.String(), "dispatched run 42")
	assert.Contains(t, out.String(), "run 42 finished: success")
}

func TestRunBuild_NoWatchJSON(t *testing.T) {
	t.Parallel()

	b := &fakeBuilder{runID: 77}
	f := &fakeFetcher{}
	var out bytes.Buffer

	err := runBuild(context.Background(), &out, b, f, buildRunOptions{
		NoWatch: true,
		Watch:   fastWatch(OutputJSON, true),
	})
	require.NoError(t, err)

	var got buildResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, int64(77), got.RunID)
	assert.True(t, got.TriggeredAt.Equal(testEpoch))
	assert.Zero(t, f.calls)
	assert.Empty(t, b.inputs)
}

func TestRunBuild_NoWatchText(t *testing.T) {
	t.Parallel()

	b := &fakeBuilder{runID: 77}
	var out bytes.Buffer

	require.NoError(t, runBuild(context.Background(), &out, b, &fakeFetcher{}, buildRunOptions{
		NoWatch: true,
		Watch:   fastWatch(OutputText, true),
	}))
	assert.Equal(t, "dispatched run 77\n", out.String())
}

func TestRunBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder *fakeBuilder
		wantErr error
	}{
		{
			name:    "dispatch rejected",
			builder: &fakeBuilder{dispatchErr: errors.ErrGitHubAuth},
			wantErr: errors.ErrGitHubAuth,
		},
		{
			name:    "run never appears",
			builder: &fakeBuilder{locateErr: errors.ErrRunNotLocated},
			wantErr: errors.ErrRunNotLocated,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeFetcher{}
			var out bytes.Buffer
			err := runBuild(context.Background(), &out, tc.builder, f, buildRunOptions{Watch: fastWatch(OutputText, true)})
			require.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, out.String())
			assert.Zero(t, f.calls)
		})
	}
}
