// Package testserver runs the full service stack in memory for tests.
package testserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/meetflow/internal/app"
	"github.com/rpggio/meetflow/internal/config"
	"github.com/rpggio/meetflow/internal/domain/run"
	"github.com/rpggio/meetflow/internal/integration/sample"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	App    *app.App
	MCP    *sdkmcp.Server
	Server *httptest.Server
}

// Option customizes the test stack.
type Option func(*settings)

type settings struct {
	summarizer run.Summarizer
}

// WithSummarizer replaces the default zero-delay summarizer.
func WithSummarizer(s run.Summarizer) Option {
	return func(st *settings) { st.summarizer = s }
}

// New starts an in-memory sqlite stack behind an httptest server.
func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	st := settings{summarizer: sample.Summarizer{}}
	for _, opt := range opts {
		opt(&st)
	}

	cfg := config.Default()
	cfg.Store.Path = ":memory:"
	cfg.Transport.Mode = config.ModeHTTP
	cfg.Run.Timeout = 10 * time.Second

	a, err := app.New(cfg, nil, app.WithSummarizer(st.summarizer))
	require.NoError(t, err)

	mcpServer := a.MCPServer(cfg.Transport.Mode)
	server := httptest.NewServer(a.Router(mcpServer))

	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{App: a, MCP: mcpServer, Server: server}
}

// Connect opens an MCP client session over in-memory transports.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := ts.MCP.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "meetflow-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return session
}

// CallTool invokes a tool and decodes its JSON text result into out.
// It returns the tool error text when the call reports IsError.
func CallTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) string {
	t.Helper()

	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	if res.IsError {
		return text.Text
	}
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text.Text), out))
	}
	return ""
}
