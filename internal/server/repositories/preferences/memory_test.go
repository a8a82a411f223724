package preferences

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetOrCreate_SingleRecordUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now()

	ids := make([]string, 20)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.GetOrCreate(ctx, models.DefaultPreferences(string(rune('a'+i)), "u1", now))
			if err == nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestMemory_Update(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now()

	_, err := r.GetOrCreate(ctx, models.DefaultPreferences("p1", "u1", now))
	require.NoError(t, err)

	at := "07:45"
	got, err := r.Update(ctx, "u1", models.PreferencesPatch{ReminderTime: &at}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "07:45", got.ReminderTime)
	assert.True(t, got.UpdatedAt.After(now))
}
