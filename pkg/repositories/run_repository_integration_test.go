//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

func TestRunRepository_BeginAndFinish(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	run, err := tc.runs.Begin(ctx, models.RunKindPrimary, "moviefan")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	message := "source returned 503 Service Unavailable"
	require.NoError(t, tc.runs.Finish(ctx, run.ID, models.RunStatusFailed, 4, &message))

	fetched, err := tc.runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, fetched.Status)
	assert.Equal(t, 4, fetched.ItemsProcessed)
	require.NotNil(t, fetched.ErrorMessage)
	assert.Equal(t, message, *fetched.ErrorMessage)
	require.NotNil(t, fetched.CompletedAt)

	listed, err := tc.runs.List(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, listed)
	// Newest first.
	assert.Equal(t, run.ID, listed[0].ID)
}
