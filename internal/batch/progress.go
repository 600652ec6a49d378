package batch

import "journal-classifier/internal/common/logger"

// ProgressFunc is called once per resolved item, in completion order.
// Calls are serialized.
type ProgressFunc func(done, total int)

// LogProgress reports every tenth of the batch at info level and every item
// at debug level.
func LogProgress(log logger.Logger) ProgressFunc {
	lastDecile := 0
	return func(done, total int) {
		if total == 0 {
			return
		}
		percent := done * 100 / total
		fields := map[string]interface{}{
			"done":    done,
			"total":   total,
			"percent": percent,
		}
		if decile := percent / 10; decile > lastDecile || done == total {
			lastDecile = decile
			log.Info("batch progress", fields)
			return
		}
		log.Debug("batch progress", fields)
	}
}
