package service

import (
	"context"
	"sync"
	"time"

	"velohub/internal/store"
)

// Repository is the record source the facade reads from. *store.Store
// satisfies it; tests substitute fakes.
type Repository interface {
	GetAthletes(ctx context.Context, athleteIDs []int64) ([]store.Athlete, error)
	ListActivitiesSince(ctx context.Context, athleteIDs []int64, since time.Time) ([]store.Activity, error)
	ListActiveBikes(ctx context.Context, athleteIDs []int64) ([]store.Bike, error)
	ListServiceRecords(ctx context.Context, athleteIDs []int64) ([]store.ServiceRecord, error)
	ListMaintenanceSettings(ctx context.Context, athleteIDs []int64) ([]store.MaintenanceSetting, error)
	ListMaintenanceTypes(ctx context.Context) ([]store.MaintenanceType, error)
}

// chunkIDs splits an id set into batches that respect the backend's
// query-size limit.
func chunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 || len(ids) <= size {
		return [][]int64{ids}
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// fetchChunked runs one repository query per id chunk, concurrently, and
// merges the results in chunk order. Any chunk failure fails the whole
// category.
func fetchChunked[T any](ctx context.Context, ids []int64, size int, fn func(context.Context, []int64) ([]T, error)) ([]T, error) {
	chunks := chunkIDs(ids, size)
	if len(chunks) == 1 {
		return fn(ctx, chunks[0])
	}

	results := make([][]T, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []int64) {
			defer wg.Done()
			results[i], errs[i] = fn(ctx, chunk)
		}(i, chunk)
	}
	wg.Wait()

	var merged []T
	for i := range chunks {
		if errs[i] != nil {
			return nil, errs[i]
		}
		merged = append(merged, results[i]...)
	}
	return merged, nil
}
