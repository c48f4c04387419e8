package upload

import (
	"strconv"
	"time"
)

// PathPrefix is the directory all uploads are committed under.
const PathPrefix = "uploads/"

// TargetPath returns uploads/<unix millis>-<filename>.
// Two uploads of the same filename within one millisecond collide.
func TargetPath(now time.Time, filename string) string {
	return PathPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + filename
}
