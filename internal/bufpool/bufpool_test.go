package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_SizeClasses(t *testing.T) {
	p := New()

	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"minimum request buffer", 2048, SmallSize},
		{"default request buffer", 4096, SmallSize},
		{"medium", 5000, MediumSize},
		{"large", MediumSize + 1, LargeSize},
		{"oversized", LargeSize + 1, LargeSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := p.Get(tt.size)
			assert.Len(t, buf, tt.size)
			assert.Equal(t, tt.wantCap, cap(buf))
			p.Put(buf)
		})
	}
}

func TestPut_RestoresFullLength(t *testing.T) {
	p := New()

	buf := p.Get(10)
	p.Put(buf)

	again := p.Get(SmallSize)
	assert.Len(t, again, SmallSize)
}

func TestPut_IgnoresForeignSlices(t *testing.T) {
	p := New()
	assert.NotPanics(t, func() {
		p.Put(nil)
		p.Put(make([]byte, 123))
	})
}
