package server_test

import (
	"testing"
	"time"

	"github.com/indigo-web/reqengine/config"
	"github.com/indigo-web/reqengine/request"
	"github.com/indigo-web/reqengine/response"
	"github.com/indigo-web/reqengine/server"
	"github.com/indigo-web/reqengine/status"
	"github.com/indigo-web/reqengine/transport"
	"github.com/indigo-web/reqengine/transport/dummy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mobilize(t *testing.T, s *server.Server) (*dummy.Transport, *dummy.TimeSource) {
	t.Helper()

	tr := dummy.NewTransport()
	ts := dummy.NewTimeSource()
	require.NoError(t, s.Mobilize(tr, ts))
	t.Cleanup(s.Demobilize)

	return tr, ts
}

// scenario 1: happy-path 404.
func TestHappyPath404(t *testing.T) {
	s := server.New(config.Default())
	defer s.Close()

	tr, _ := mobilize(t, s)
	conn := tr.Accept()

	conn.Feed([]byte("GET /hello.txt HTTP/1.1\r\nUser-Agent: x\r\nHost: www.example.com\r\n\r\n"))

	want := "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nContent-Length: 13\r\n\r\nBadRequest.\r\n"
	assert.Equal(t, want, string(conn.SentData()))
	assert.False(t, conn.IsBroken())
}

// scenario 2: split request.
func TestSplitRequestYieldsSameResponse(t *testing.T) {
	s := server.New(config.Default())
	defer s.Close()

	tr, _ := mobilize(t, s)
	conn := tr.Accept()

	raw := []byte("GET /hello.txt HTTP/1.1\r\nUser-Agent: x\r\nHost: www.example.com\r\n\r\n")
	mid := len(raw) / 2

	conn.Feed(raw[:mid])
	assert.Empty(t, conn.SentData())

	conn.Feed(raw[mid:])

	want := "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nContent-Length: 13\r\n\r\nBadRequest.\r\n"
	assert.Equal(t, want, string(conn.SentData()))
}

// fragmentation invariance: every split point of a valid request yields
// the same response as the unsplit request.
func TestFragmentationInvariance(t *testing.T) {
	raw := []byte("GET /hello.txt HTTP/1.1\r\nUser-Agent: x\r\nHost: www.example.com\r\n\r\n")

	for split := 0; split <= len(raw); split++ {
		s := server.New(config.Default())
		tr, _ := mobilize(t, s)
		conn := tr.Accept()

		conn.Feed(raw[:split])
		conn.Feed(raw[split:])

		want := "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nContent-Length: 13\r\n\r\nBadRequest.\r\n"
		assert.Equal(t, want, string(conn.SentData()), "split at %d", split)

		s.Close()
	}
}

// scenario 3: damaged header (recoverable), then a well-formed request
// pipelined in the same chunk.
func TestDamagedHeaderThenWellFormedPipelined(t *testing.T) {
	s := server.New(config.Default())
	defer s.Close()

	tr, _ := mobilize(t, s)
	conn := tr.Accept()

	first := "GET /a HTTP/1.1\r\nUser-Agent curl/7\r\nHost: h\r\n\r\n"
	second := "GET /b HTTP/1.1\r\nHost: h\r\n\r\n"

	conn.Feed([]byte(first + second))

	got := string(conn.SentData())
	wantFirst := "HTTP/1.1 400 Bad Request\r\nContent-Type: text/plain\r\nContent-Length: 11\r\n\r\nBad Request"
	wantSecond := "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nContent-Length: 13\r\n\r\nBadRequest.\r\n"

	assert.Equal(t, wantFirst+wantSecond, got)
	assert.False(t, conn.IsBroken())
}

// scenario 4: Content-Length overflow.
func TestContentLengthOverflowIs413AndCloses(t *testing.T) {
	s := server.New(config.Default())
	defer s.Close()

	tr, _ := mobilize(t, s)
	conn := tr.Accept()

	conn.Feed([]byte("POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: 1300000000000000000000000000\r\n\r\n"))

	got := string(conn.SentData())
	assert.Contains(t, got, "HTTP/1.1 413 Payload Too Large\r\n")
	assert.Contains(t, got, "Connection: close\r\n")
	assert.True(t, conn.IsBroken())
}

// one past the ceiling (10,000,001) is rejected with 413 and the
// connection closed; the ceiling itself is covered by request's
// TestMachine_ContentLengthAtCeilingIsAllowed.
func TestContentLengthCeilingBoundary(t *testing.T) {
	s := server.New(config.Default())
	defer s.Close()

	tr, _ := mobilize(t, s)
	conn := tr.Accept()

	conn.Feed([]byte("POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: 10000001\r\n\r\n"))

	assert.Contains(t, string(conn.SentData()), "413 Payload Too Large")
	assert.True(t, conn.IsBroken())
}

// scenario 5: registered resource match.
func TestRegisteredResourceMatch(t *testing.T) {
	s := server.New(config.Default())
	defer s.Close()

	var observedPath []string
	unreg := s.Register([]string{"foo"}, func(req *request.Request, conn transport.Connection, trailer []byte) *response.Response {
		observedPath = req.Target.Path
		return response.New().Code(status.OK).String("Hello!")
	})
	require.NotNil(t, unreg)

	tr, _ := mobilize(t, s)
	conn := tr.Accept()

	conn.Feed([]byte("GET /foo/bar HTTP/1.1\r\nHost: h\r\n\r\n"))

	got := string(conn.SentData())
	assert.Contains(t, got, "Content-Length: 6\r\n")
	assert.Contains(t, got, "Hello!")
	assert.Equal(t, []string{"bar"}, observedPath)
}

// scenario 6: inactivity timeout.
func TestInactivityTimeout(t *testing.T) {
	cfg := config.New(map[string]string{
		config.InactivityTimeout: "1.0",
	})
	s := server.New(cfg)
	defer s.Close()

	tr, ts := mobilize(t, s)
	conn := tr.Accept()

	conn.Feed([]byte("GET /x HTTP/1.1\r\nHost: h\r\n"))
	assert.Empty(t, conn.SentData())

	ts.Advance(1.5)

	require.Eventually(t, func() bool {
		return len(conn.SentData()) > 0
	}, time.Second, 5*time.Millisecond)

	got := string(conn.SentData())
	assert.Contains(t, got, "HTTP/1.1 408 Request Timeout\r\n")
	assert.Contains(t, got, "Connection: close\r\n")

	require.Eventually(t, conn.IsBroken, time.Second, 5*time.Millisecond)
}

func TestUpgradeHandsOffConnection(t *testing.T) {
	s := server.New(config.Default())
	defer s.Close()

	var gotTrailer []byte
	var handlerInstalledDelegate bool

	s.Register([]string{"ws"}, func(req *request.Request, conn transport.Connection, trailer []byte) *response.Response {
		gotTrailer = append([]byte(nil), trailer...)
		conn.SetDataReceivedDelegate(func(data []byte) {
			handlerInstalledDelegate = true
		})
		return response.New().Code(status.SwitchingProtocols).Header("Connection", "upgrade")
	})

	tr, _ := mobilize(t, s)
	conn := tr.Accept()

	conn.Feed([]byte("GET /ws HTTP/1.1\r\nHost: h\r\nConnection: upgrade\r\n\r\nextra-bytes"))

	got := string(conn.SentData())
	assert.Contains(t, got, "HTTP/1.1 101 Switching Protocols\r\n")
	assert.Equal(t, "extra-bytes", string(gotTrailer))

	conn.Feed([]byte("more"))
	assert.True(t, handlerInstalledDelegate)
}

func TestPeerCloseMovesConnectionToBroken(t *testing.T) {
	s := server.New(config.Default())
	defer s.Close()

	tr, _ := mobilize(t, s)
	conn := tr.Accept()

	conn.BreakFromPeer()
	assert.True(t, conn.IsBroken())
}
