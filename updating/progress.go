package updating

import "fmt"

// FormatProgress renders one download progress sample. With a known total
// size the sample shows the percentage transferred, otherwise the raw KiB
// count downloaded so far. The current speed is always appended in KiB/s.
func FormatProgress(transferred int64, total int64, speed float64) string {
	if total > 0 {
		return fmt.Sprintf("%d%%@%.0fKiB/s", transferred*100/total, speed)
	}

	return fmt.Sprintf("%dKiB@%.0fKiB/s", transferred/1000, speed)
}
