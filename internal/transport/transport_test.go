package transport

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"adds slash", "http://10.0.0.2:8000", "http://10.0.0.2:8000/"},
		{"keeps single slash", "http://10.0.0.2:8000/", "http://10.0.0.2:8000/"},
		{"collapses slashes", "http://10.0.0.2:8000///", "http://10.0.0.2:8000/"},
		{"default scheme", "  coach.local:8000 ", "http://coach.local:8000/"},
		{"keeps prefix path", "https://example.com/coach", "https://example.com/coach/"},
		{"drops query", "http://h/?x=1#frag", "http://h/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "ftp://host/", "http://"} {
		_, err := Normalize(in)
		assert.Error(t, err, "Normalize(%q)", in)
	}
}

func TestClient_UninitializedFails(t *testing.T) {
	tr := New(Options{Logger: quietLogger()})

	_, _, err := tr.Client()
	require.ErrorIs(t, err, ErrUninitialized)
	assert.Equal(t, "", tr.BaseURL())
	assert.Panics(t, func() { tr.MustClient() })

	var nilTransport *Transport
	_, _, err = nilTransport.Client()
	require.ErrorIs(t, err, ErrUninitialized)
}

func TestConfigure_SameNormalizedURLIsNoop(t *testing.T) {
	tr := New(Options{Logger: quietLogger()})

	require.NoError(t, tr.Configure("http://10.0.0.2:8000"))
	first, _ := tr.MustClient()
	assert.Equal(t, uint64(1), tr.Generation())

	require.NoError(t, tr.Configure("http://10.0.0.2:8000/"))
	second, _ := tr.MustClient()
	assert.Equal(t, uint64(1), tr.Generation(), "second configure must not rebuild")
	assert.Same(t, first, second)

	require.NoError(t, tr.Configure("http://10.0.0.3:8000"))
	third, base := tr.MustClient()
	assert.Equal(t, uint64(2), tr.Generation())
	assert.NotSame(t, first, third)
	assert.Equal(t, "http://10.0.0.3:8000/", base.String())
}

func TestConfigure_InvalidKeepsPreviousClient(t *testing.T) {
	tr := New(Options{Logger: quietLogger()})
	require.NoError(t, tr.Configure("http://10.0.0.2:8000"))

	require.Error(t, tr.Configure("  "))
	assert.Equal(t, "http://10.0.0.2:8000/", tr.BaseURL())
	assert.Equal(t, uint64(1), tr.Generation())
}

func TestNew_TimeoutDefaults(t *testing.T) {
	tr := New(Options{ConnectTimeout: 20 * time.Second, ReadTimeout: time.Second})
	assert.Equal(t, 20*time.Second, tr.opts.ReadTimeout, "read timeout is never shorter than connect")

	tr = New(Options{})
	require.NoError(t, tr.Configure("http://h"))
	client, _ := tr.MustClient()
	assert.Equal(t, DefaultConnectTimeout+DefaultReadTimeout, client.Timeout)
}

func TestRoundTrip_LogsAndTagsRequests(t *testing.T) {
	var gotID, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(RequestIDHeader)
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(server.Close)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := NewMetrics()
	tr := New(Options{Logger: logger, Metrics: metrics})
	require.NoError(t, tr.Configure(server.URL))

	client, base := tr.MustClient()
	req, err := http.NewRequest(http.MethodPost, base.String()+"api/clients", strings.NewReader(`{"name":"Bob"}`))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, `{"message":"ok"}`, string(body), "body must survive debug logging")
	assert.NotEmpty(t, gotID)
	assert.True(t, strings.HasPrefix(gotUA, "mycoach/"), "User-Agent = %q", gotUA)

	out := logs.String()
	assert.Contains(t, out, "http request")
	assert.Contains(t, out, `{\"name\":\"Bob\"}`)
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, gotID)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests(http.MethodPost, "200")))
}

func TestRoundTrip_NetworkFailureCounted(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	metrics := NewMetrics()
	tr := New(Options{Logger: quietLogger(), Metrics: metrics, ConnectTimeout: time.Second})
	require.NoError(t, tr.Configure(url))

	client, base := tr.MustClient()
	_, err := client.Get(base.String() + "api/dashboard")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests(http.MethodGet, "error")))
}
