package headers_test

import (
	"testing"

	"github.com/indigo-web/reqengine/headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaders_CaseInsensitiveMultiValued(t *testing.T) {
	h := headers.New(4)
	h.Add("Host", "example.com")
	h.Add("X-Forwarded-For", "1.1.1.1")
	h.Add("x-forwarded-for", "2.2.2.2")

	v, ok := h.Get("HOST")
	require.True(t, ok)
	assert.Equal(t, "example.com", v)

	assert.Equal(t, []string{"1.1.1.1", "2.2.2.2"}, h.Values("X-Forwarded-For"))
	assert.True(t, h.Has("host"))
	assert.False(t, h.Has("absent"))
}

func TestHeaders_Tokens(t *testing.T) {
	h := headers.New(1)
	h.Add("Connection", "keep-alive, Upgrade")

	assert.True(t, h.HasToken("Connection", "upgrade"))
	assert.False(t, h.HasToken("Connection", "close"))
}

func TestParser_Fragmentation(t *testing.T) {
	raw := "Host: example.com\r\nUser-Agent: x\r\n\r\n"

	for split := 0; split <= len(raw); split++ {
		h := headers.New(4)
		p := headers.NewParser(h)

		var buf []byte

		first := []byte(raw[:split])
		second := []byte(raw[split:])

		buf = append(buf, first...)
		n, result := p.Feed(buf, 1000)
		buf = buf[n:]

		if result != headers.Complete {
			buf = append(buf, second...)
			n, result = p.Feed(buf, 1000)
			buf = buf[n:]
		}

		require.Equal(t, headers.Complete, result, "split at %d", split)
		assert.Empty(t, buf, "split at %d", split)
		assert.True(t, p.Valid())
		assert.Equal(t, "example.com", h.Value("Host"))
		assert.Equal(t, "x", h.Value("User-Agent"))
	}
}

func TestParser_MalformedLineMarksInvalidButFinishes(t *testing.T) {
	h := headers.New(2)
	p := headers.NewParser(h)

	raw := []byte("User-Agent curl/1.0\r\nHost: h\r\n\r\n")
	n, result := p.Feed(raw, 1000)

	assert.Equal(t, headers.Complete, result)
	assert.Equal(t, len(raw), n)
	assert.False(t, p.Valid())
	assert.Equal(t, "h", h.Value("Host"))
}

func TestParser_LineExceedsLimit(t *testing.T) {
	h := headers.New(1)
	p := headers.NewParser(h)

	raw := []byte("X: " + string(make([]byte, 50)) + "\r\n\r\n")
	_, result := p.Feed(raw, 10)

	assert.Equal(t, headers.Error, result)
}
