package request_test

import (
	"testing"

	"github.com/indigo-web/reqengine/request"
	"github.com/indigo-web/reqengine/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func foldAll(t *testing.T, chunks []string) *request.Request {
	t.Helper()

	req := request.New()
	m := request.NewMachine(req)

	var buf []byte
	for _, c := range chunks {
		buf = append(buf, c...)

		for {
			n := m.Fold(buf, 1000, "")
			buf = buf[n:]

			if n == 0 || req.Processed() {
				break
			}
		}

		if req.Processed() {
			break
		}
	}

	return req
}

func TestMachine_HappyPath(t *testing.T) {
	req := foldAll(t, []string{"GET /hello.txt HTTP/1.1\r\nUser-Agent: x\r\nHost: www.example.com\r\n\r\n"})

	require.Equal(t, request.Complete, req.State)
	assert.True(t, req.Valid)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, []string{"hello.txt"}, req.Target.Path)
}

func TestMachine_FragmentationInvariance(t *testing.T) {
	raw := "GET /hello.txt HTTP/1.1\r\nUser-Agent: x\r\nHost: www.example.com\r\n\r\n"

	whole := foldAll(t, []string{raw})

	for split := 1; split < len(raw); split++ {
		fragmented := foldAll(t, []string{raw[:split], raw[split:]})

		assert.Equal(t, whole.State, fragmented.State, "split at %d", split)
		assert.Equal(t, whole.Valid, fragmented.Valid, "split at %d", split)
		assert.Equal(t, whole.Method, fragmented.Method, "split at %d", split)
		assert.Equal(t, whole.Target, fragmented.Target, "split at %d", split)
	}
}

func TestMachine_MissingHostIsInvalidButComplete(t *testing.T) {
	req := foldAll(t, []string{"GET / HTTP/1.1\r\n\r\n"})

	require.Equal(t, request.Complete, req.State)
	assert.False(t, req.Valid)
}

func TestMachine_RequiredHostMismatch(t *testing.T) {
	req := request.New()
	m := request.NewMachine(req)

	raw := []byte("GET / HTTP/1.1\r\nHost: other.example\r\n\r\n")
	m.Fold(raw, 1000, "expected.example")

	require.Equal(t, request.Complete, req.State)
	assert.False(t, req.Valid)
}

func TestMachine_BodyByContentLength(t *testing.T) {
	req := foldAll(t, []string{"POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: 5\r\n\r\nhello"})

	require.Equal(t, request.Complete, req.State)
	assert.Equal(t, []byte("hello"), req.Body)
}

func TestMachine_BodyWaitsForMoreBytes(t *testing.T) {
	req := request.New()
	m := request.NewMachine(req)

	raw := []byte("POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: 5\r\n\r\nhel")
	n := m.Fold(raw, 1000, "")

	assert.Equal(t, request.Body, req.State)
	assert.Equal(t, len(raw), n)

	n2 := m.Fold([]byte("lo"), 1000, "")
	assert.Equal(t, 2, n2)
	assert.Equal(t, request.Complete, req.State)
	assert.Equal(t, []byte("hello"), req.Body)
}

func TestMachine_ContentLengthOverflowIs413(t *testing.T) {
	req := foldAll(t, []string{
		"POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: 1300000000000000000000000000\r\n\r\n",
	})

	require.Equal(t, request.Error, req.State)
	assert.Equal(t, status.RequestEntityTooLarge, req.ResponseStatusCode)
}

func TestMachine_ContentLengthAtCeilingIsAllowed(t *testing.T) {
	req := request.New()
	m := request.NewMachine(req)

	raw := []byte("POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: 10000000\r\n\r\n")
	m.Fold(raw, 1000, "")

	assert.Equal(t, request.Body, req.State)
}

func TestMachine_ContentLengthExceedsCeilingIs413(t *testing.T) {
	req := foldAll(t, []string{"POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: 10000001\r\n\r\n"})

	require.Equal(t, request.Error, req.State)
	assert.Equal(t, status.RequestEntityTooLarge, req.ResponseStatusCode)
}

func TestMachine_NonNumericContentLengthIsError(t *testing.T) {
	req := foldAll(t, []string{"POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: abc\r\n\r\n"})

	require.Equal(t, request.Error, req.State)
	assert.Equal(t, status.BadRequest, req.ResponseStatusCode)
}

func TestMachine_NoBodyWithoutContentLength(t *testing.T) {
	req := foldAll(t, []string{"GET / HTTP/1.1\r\nHost: h\r\n\r\nleftover"})

	require.Equal(t, request.Complete, req.State)
	assert.Empty(t, req.Body)
}

func TestMachine_RequestLineTooLong(t *testing.T) {
	req := request.New()
	m := request.NewMachine(req)

	line := "GET /" + string(make([]byte, 50)) + " HTTP/1.1\r\n"
	n := m.Fold([]byte(line), 10, "")

	assert.Equal(t, 0, n)
	assert.Equal(t, request.Error, req.State)
}

func TestMachine_BadProtocol(t *testing.T) {
	req := foldAll(t, []string{"GET / HTTP/1.0\r\nHost: h\r\n\r\n"})

	require.Equal(t, request.Complete, req.State)
	assert.False(t, req.Valid)
}
