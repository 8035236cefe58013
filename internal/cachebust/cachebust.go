// Package cachebust derives a coarse time bucket from the wall clock and
// appends it to resource URLs, so requests within one window share a cache
// entry and the first request of a new window bypasses it.
package cachebust

import (
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the width of one bucket: 4 hours (14,400,000 ms).
const DefaultWindow = 4 * time.Hour

// Param is the query parameter carrying the bucket.
const Param = "v"

// Bucket returns floor(now in epoch millis / window in millis).
func Bucket(now time.Time, window time.Duration) int64 {
	w := windowMillis(window)
	ms := now.UnixMilli()
	b := ms / w
	if ms%w != 0 && ms < 0 {
		b--
	}
	return b
}

// DecorateWith appends v=<bucket> to url, using '&' when url already carries
// a query string.
func DecorateWith(url string, bucket int64) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + Param + "=" + strconv.FormatInt(bucket, 10)
}

// Bucketer buckets the clock returned by Now into windows of Window.
type Bucketer struct {
	Window time.Duration
	Now    func() time.Time
}

// New returns a wall-clock Bucketer. A non-positive window falls back to
// DefaultWindow.
func New(window time.Duration) *Bucketer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Bucketer{Window: window, Now: time.Now}
}

func (b *Bucketer) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// Bucket returns the current bucket.
func (b *Bucketer) Bucket() int64 {
	return Bucket(b.now(), b.Window)
}

// Decorate appends the current bucket to url.
func (b *Bucketer) Decorate(url string) string {
	return DecorateWith(url, b.Bucket())
}

// Current returns the current bucket and the instant its window closes.
func (b *Bucketer) Current() (int64, time.Time) {
	bucket := Bucket(b.now(), b.Window)
	return bucket, time.UnixMilli((bucket + 1) * windowMillis(b.Window))
}

// Until returns the time left before t on the bucketer clock. It is
// negative once t has passed.
func (b *Bucketer) Until(t time.Time) time.Duration {
	return t.Sub(b.now())
}

// Remaining returns the time left until the current window closes. It is
// never zero, so it is always usable as a cache TTL.
func (b *Bucketer) Remaining() time.Duration {
	_, end := b.Current()
	left := b.Until(end)
	if left <= 0 {
		return time.Millisecond
	}
	return left
}

var defaultBucketer = New(DefaultWindow)

// Decorate appends the current 4-hour wall-clock bucket to url.
func Decorate(url string) string {
	return defaultBucketer.Decorate(url)
}

// CurrentBucket returns the current 4-hour wall-clock bucket.
func CurrentBucket() int64 {
	return defaultBucketer.Bucket()
}

func windowMillis(window time.Duration) int64 {
	w := window.Milliseconds()
	if w < 1 {
		return 1
	}
	return w
}
