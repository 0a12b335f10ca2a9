package updater

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/harrison/repricer/internal/pricing"
)

// Hook receives batch progress callbacks. Nil fields are skipped.
type Hook struct {
	// FileStart runs before each file is processed. index is 1-based.
	FileStart func(path string, index, total int)
	// FileDone runs after each file attempt, successful or not.
	FileDone func(result *FileResult)
}

// BatchResult summarizes one repricing run.
type BatchResult struct {
	RunID    uuid.UUID
	Files    []*FileResult
	Updated  int
	Failed   int
	Duration time.Duration
}

// Run processes paths strictly in order, applying the same multiplier to
// each. Per-file failures are recorded and the batch continues; a failure is
// never fatal to the run.
func Run(paths []string, m pricing.Multiplier, hook Hook, opts ...Option) *BatchResult {
	batch := &BatchResult{RunID: uuid.New()}
	start := time.Now()

	for i, path := range paths {
		if hook.FileStart != nil {
			hook.FileStart(path, i+1, len(paths))
		}

		// The error is carried in result.Err
		result, _ := UpdateFile(path, m, opts...)
		batch.Files = append(batch.Files, result)

		if hook.FileDone != nil {
			hook.FileDone(result)
		}
	}

	batch.Updated = lo.CountBy(batch.Files, func(r *FileResult) bool {
		return r.Err == nil
	})
	batch.Failed = len(batch.Files) - batch.Updated
	batch.Duration = time.Since(start)

	return batch
}
