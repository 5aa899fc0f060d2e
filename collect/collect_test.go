package collect

import (
	"runtime"
	"testing"
	"time"
)

func TestSample(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("host metrics are only checked on linux")
	}

	before := time.Now().Add(-time.Second)

	row, err := Sample()
	if err != nil {
		t.Fatal("failed to sample:", err)
	}

	if row.Time().Before(before) {
		t.Fatalf("sample is stamped too early: %v", row.Time())
	}

	for _, key := range Keys {
		v, ok := row.Values[key]
		if !ok {
			t.Errorf("missing %s", key)
			continue
		}
		if v < 0 {
			t.Errorf("%s is negative: %v", key, v)
		}
	}
}
