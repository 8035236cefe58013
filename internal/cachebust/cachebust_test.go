package cachebust

import (
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestBucket(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		window time.Duration
		want   int64
	}{
		{
			name:   "epoch",
			now:    time.UnixMilli(0),
			window: DefaultWindow,
			want:   0,
		},
		{
			name:   "last millisecond of first window",
			now:    time.UnixMilli(14_400_000 - 1),
			window: DefaultWindow,
			want:   0,
		},
		{
			name:   "first millisecond of second window",
			now:    time.UnixMilli(14_400_000),
			window: DefaultWindow,
			want:   1,
		},
		{
			name:   "known instant",
			now:    time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC),
			window: DefaultWindow,
			want:   time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC).UnixMilli() / 14_400_000,
		},
		{
			name:   "one millisecond window",
			now:    time.UnixMilli(1234),
			window: time.Millisecond,
			want:   1234,
		},
		{
			name:   "sub-millisecond window is clamped",
			now:    time.UnixMilli(1234),
			window: time.Microsecond,
			want:   1234,
		},
		{
			name:   "before epoch floors downwards",
			now:    time.UnixMilli(-1),
			window: time.Second,
			want:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bucket(tt.now, tt.window)
			if got != tt.want {
				t.Errorf("Bucket() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucket_StableWithinWindow(t *testing.T) {
	windows := []time.Duration{time.Millisecond, time.Second, time.Minute, DefaultWindow}
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, w := range windows {
		start := time.UnixMilli(Bucket(base, w) * w.Milliseconds())
		end := start.Add(w - time.Millisecond)

		if Bucket(start, w) != Bucket(end, w) {
			t.Errorf("window %v: Bucket(start) = %d, Bucket(end) = %d, want equal",
				w, Bucket(start, w), Bucket(end, w))
		}

		next := start.Add(w)
		if Bucket(next, w) <= Bucket(end, w) {
			t.Errorf("window %v: next window bucket %d should be greater than %d",
				w, Bucket(next, w), Bucket(end, w))
		}
	}
}

func TestBucket_NonDecreasing(t *testing.T) {
	prev := Bucket(time.UnixMilli(0), DefaultWindow)
	for ms := int64(0); ms < 3*14_400_000; ms += 997_331 {
		got := Bucket(time.UnixMilli(ms), DefaultWindow)
		if got < prev {
			t.Fatalf("Bucket(%d) = %d, decreased from %d", ms, got, prev)
		}
		prev = got
	}
}

func TestDecorate(t *testing.T) {
	b := &Bucketer{Window: DefaultWindow, Now: fixedClock(time.UnixMilli(3 * 14_400_000))}

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "no query string",
			url:  "a/b",
			want: "a/b?v=3",
		},
		{
			name: "existing query string",
			url:  "a/b?x=1",
			want: "a/b?x=1&v=3",
		},
		{
			name: "absolute url",
			url:  "https://example.com/data/pred.csv",
			want: "https://example.com/data/pred.csv?v=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Decorate(tt.url)
			if got != tt.want {
				t.Errorf("Decorate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecorate_Default(t *testing.T) {
	got := Decorate("a/b")
	if !strings.Contains(got, "?v=") {
		t.Errorf("Decorate(%q) = %q, want it to contain ?v=", "a/b", got)
	}

	got = Decorate("a/b?x=1")
	if !strings.Contains(got, "&v=") {
		t.Errorf("Decorate(%q) = %q, want it to contain &v=", "a/b?x=1", got)
	}
	if !strings.Contains(got, "x=1") {
		t.Errorf("Decorate(%q) = %q, lost the original query", "a/b?x=1", got)
	}
}

func TestRemaining(t *testing.T) {
	start := time.UnixMilli(10 * 14_400_000)

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"window start", start, DefaultWindow},
		{"one hour in", start.Add(time.Hour), 3 * time.Hour},
		{"last millisecond", start.Add(DefaultWindow - time.Millisecond), time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Bucketer{Window: DefaultWindow, Now: fixedClock(tt.now)}
			if got := b.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_DefaultWindow(t *testing.T) {
	b := New(0)
	if b.Window != DefaultWindow {
		t.Errorf("New(0).Window = %v, want %v", b.Window, DefaultWindow)
	}
	if b.Now == nil {
		t.Error("New(0).Now should not be nil")
	}
}

func TestCurrentAndUntil(t *testing.T) {
	now := time.UnixMilli(10*14_400_000 + 1000)
	b := &Bucketer{Window: DefaultWindow, Now: func() time.Time { return now }}

	bucket, end := b.Current()
	if bucket != 10 {
		t.Errorf("Current() bucket = %d, want 10", bucket)
	}
	if !end.Equal(time.UnixMilli(11 * 14_400_000)) {
		t.Errorf("Current() end = %v, want start of bucket 11", end)
	}
	if got := b.Until(end); got != DefaultWindow-time.Second {
		t.Errorf("Until(end) = %v, want %v", got, DefaultWindow-time.Second)
	}

	now = end.Add(time.Minute)
	if got := b.Until(end); got != -time.Minute {
		t.Errorf("Until(end) after rollover = %v, want -1m", got)
	}
}
