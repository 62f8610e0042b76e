package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEndpoint answers form posts by action key. Unknown actions get
// status "0".
type fakeEndpoint struct {
	mu      sync.Mutex
	ops     []string
	replies map[string]func(form url.Values) string
}

func newFakeEndpoint(t *testing.T) (*fakeEndpoint, *httptest.Server) {
	t.Helper()
	f := &fakeEndpoint{replies: map[string]func(url.Values) string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		assert.NoError(t, err)
		op, _, _ := strings.Cut(string(body), "=")

		f.mu.Lock()
		f.ops = append(f.ops, op)
		reply, ok := f.replies[op]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_, _ = io.WriteString(w, `{"status":"0"}`)
			return
		}
		_, _ = io.WriteString(w, reply(form))
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeEndpoint) reply(op, body string) {
	f.replies[op] = func(url.Values) string { return body }
}

func (f *fakeEndpoint) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "silent")
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"--base-url", srv.URL}, args...), &out)
	return out.String(), err
}

func jsonLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		lines = append(lines, m)
	}
	return lines
}

func TestCategoriesCmd(t *testing.T) {
	f, srv := newFakeEndpoint(t)
	f.reply("get_main_date", `{"status":"1","data":[{"from_date":"01/01/2023","to_date":"31/01/2023"}]}`)
	f.reply("category", `{"status":"1","category":[{"name":"Tools"}]}`)

	out, err := runCLI(t, srv, "categories")
	require.NoError(t, err)
	lines := jsonLines(t, out)
	require.Len(t, lines, 1)
	assert.Equal(t, []any{map[string]any{"name": "Tools"}}, lines[0]["categories"])
	assert.Equal(t, "01/01/2023", lines[0]["main_date"].(map[string]any)["from_date"])
}

func TestItemsCmd_FiltersAndHidesReconciledBatches(t *testing.T) {
	f, srv := newFakeEndpoint(t)
	f.reply("item_code", `{"status":"1","item":[{"item_id":"A1","name":"Blue Widget"},{"item_id":"B2","name":"Gadget"}]}`)
	f.replies["list"] = func(form url.Values) string {
		if form.Get("list") == "A1" {
			return `{"status":"1","item":[{"purchasingid":"PO-1","purchase_unit":"5"},{"purchasingid":"PO-2","purchase_unit":"5"}]}`
		}
		return `{"status":"0"}`
	}
	f.replies["logistic_list"] = func(form url.Values) string {
		if form.Get("purchasingid") == "PO-1" {
			return `{"status":"1","item":{"completed_date":"2024-01-01","unit":"5"}}`
		}
		return `{"status":"1","item":{"completed_date":"","unit":"2"}}`
	}

	out, err := runCLI(t, srv, "items", "--category", "Tools", "--query", "widget")
	require.NoError(t, err)
	lines := jsonLines(t, out)
	require.Len(t, lines, 1)

	items := lines[0]["items"].([]any)
	require.Len(t, items, 1)
	widget := items[0].(map[string]any)
	assert.Equal(t, "A1", widget["item_id"])
	batches := widget["additionalInfo"].([]any)
	require.Len(t, batches, 1)
	assert.Equal(t, "PO-2", batches[0].(map[string]any)["purchasingid"])
}

func TestImportCmd_StreamsOutcomesThenReport(t *testing.T) {
	f, srv := newFakeEndpoint(t)
	f.replies["get_item_id"] = func(form url.Values) string {
		if form.Get("name") == "Widget" {
			return `{"status":"1","item_id":"A1"}`
		}
		return `{"status":"0"}`
	}
	f.reply("update_item_detail", `{"status":"1"}`)

	path := filepath.Join(t.TempDir(), "import.csv")
	require.NoError(t, os.WriteFile(path, []byte("Widget\n,5,3,10\nUnknown\n,1,1,1\n"), 0o600))

	out, err := runCLI(t, srv, "import", "--file", path)
	require.NoError(t, err)

	lines := jsonLines(t, out)
	require.Len(t, lines, 3)
	assert.Equal(t, "Widget", lines[0]["name"])
	assert.Equal(t, "1", lines[0]["status"])
	assert.Equal(t, "Unknown", lines[1]["name"])
	assert.Equal(t, "unresolved", lines[1]["status"])
	report := lines[2]["report"].(map[string]any)
	assert.Equal(t, float64(1), report["successful_count"])
	assert.Equal(t, true, report["completed"])
	assert.Equal(t, []string{"get_item_id", "update_item_detail", "get_item_id"}, f.calls())
}

func TestImportCmd_NothingImportedExitCode(t *testing.T) {
	_, srv := newFakeEndpoint(t)
	path := filepath.Join(t.TempDir(), "import.csv")
	require.NoError(t, os.WriteFile(path, []byte("Widget\n,5,3,10\n"), 0o600))

	_, err := runCLI(t, srv, "import", "--file", path)
	assert.Equal(t, exitNoneImported, exitCode(err))
}

func TestImportCmd_UnreadableFile(t *testing.T) {
	_, srv := newFakeEndpoint(t)
	_, err := runCLI(t, srv, "import", "--file", filepath.Join(t.TempDir(), "import.txt"))
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestResetAllCmd_RequiresConfirmation(t *testing.T) {
	f, srv := newFakeEndpoint(t)
	f.reply("reset_all_item", `{"status":"1"}`)

	_, err := runCLI(t, srv, "reset-all")
	assert.Equal(t, exitUsage, exitCode(err))
	assert.Empty(t, f.calls())

	_, err = runCLI(t, srv, "reset-all", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"reset_all_item"}, f.calls())
}

func TestUpdateCmd_ValidationAndRemoteErrors(t *testing.T) {
	f, srv := newFakeEndpoint(t)

	_, err := runCLI(t, srv, "update", "--item-id", "A1", "--field", "price", "--value", "1")
	assert.Equal(t, exitValidation, exitCode(err))
	assert.Empty(t, f.calls())

	_, err = runCLI(t, srv, "update", "--item-id", "A1", "--field", "so", "--value", "1")
	assert.Equal(t, exitRemote, exitCode(err))
	assert.Equal(t, []string{"update_so"}, f.calls())
}

func TestMoveToHistoryCmd_EmptyRemark(t *testing.T) {
	f, srv := newFakeEndpoint(t)
	_, err := runCLI(t, srv, "move-to-history", "--item-id", "A1", "--remark", " ")
	assert.Equal(t, exitValidation, exitCode(err))
	assert.Empty(t, f.calls())
}

func TestDatesSetCmd(t *testing.T) {
	f, srv := newFakeEndpoint(t)
	f.reply("update_main_date", `{"status":"1"}`)
	f.reply("get_main_date", `{"status":"1","data":[{"from_date":"01/03/2024","to_date":"31/03/2024"}]}`)

	out, err := runCLI(t, srv, "dates", "set", "--from", "01/03/2024", "--to", "31/03/2024")
	require.NoError(t, err)
	assert.Equal(t, "31/03/2024", jsonLines(t, out)[0]["to_date"])
	assert.Equal(t, []string{"update_main_date", "get_main_date"}, f.calls())
}

func TestInvalidBaseURL(t *testing.T) {
	t.Setenv("LOG_LEVEL", "silent")
	err := run(context.Background(), []string{"--base-url", "not a url", "categories"}, io.Discard)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestMetricsFileWrittenOnExit(t *testing.T) {
	f, srv := newFakeEndpoint(t)
	f.reply("get_main_date", `{"status":"1","data":[{"from_date":"01/01/2023","to_date":"31/01/2023"}]}`)
	f.reply("category", `{"status":"1","category":[]}`)
	path := filepath.Join(t.TempDir(), "serviceinfo.prom")

	_, err := runCLI(t, srv, "--metrics-file", path, "categories")
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "serviceinfo_remote_requests_total")
}
