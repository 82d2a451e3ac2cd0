package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Run against a live server seeded with `go run ./cmd/seed`:
//
//	go run ./cmd/server -config etc/config-dev.yaml
//	cd test/e2e && go test ./...
var baseURL = func() string {
	if u := os.Getenv("E2E_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:9871"
}()

// browser wraps a chromedp context with test helpers.
type browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	t      *testing.T
	token  string
}

func newBrowser(t *testing.T, timeout time.Duration) *browser {
	t.Helper()
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	ctx, timeCancel := context.WithTimeout(ctx, timeout)

	b := &browser{ctx: ctx, t: t}
	b.cancel = func() { timeCancel(); ctxCancel(); allocCancel() }
	b.run(chromedp.Navigate(baseURL))
	return b
}

func (b *browser) close() { b.cancel() }

func (b *browser) run(actions ...chromedp.Action) {
	b.t.Helper()
	if err := chromedp.Run(b.ctx, actions...); err != nil {
		b.t.Fatalf("chromedp: %v", err)
	}
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// call issues fetch() from the page so requests go through the same CORS
// and header handling a browser client sees.
func (b *browser) call(method, path string, body any, out any) int {
	b.t.Helper()
	payload := "null"
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			b.t.Fatalf("marshal: %v", err)
		}
		payload = string(raw)
	}
	js := fmt.Sprintf(`(async function(){
		var headers = {'Content-Type': 'application/json'};
		if (%q) headers['Authorization'] = 'Bearer ' + %q;
		var body = %s;
		var res = await fetch(%q, {method: %q, headers: headers, body: body === null ? undefined : JSON.stringify(body)});
		var text = await res.text();
		return JSON.stringify({status: res.status, body: text});
	})()`, b.token, b.token, payload, path, method)

	var raw string
	b.run(chromedp.Evaluate(js, &raw, awaitPromise))
	var res struct {
		Status int    `json:"status"`
		Body   string `json:"body"`
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		b.t.Fatalf("decode fetch result: %v", err)
	}
	if out != nil && res.Body != "" {
		if err := json.Unmarshal([]byte(res.Body), out); err != nil {
			b.t.Fatalf("%s %s: decode %q: %v", method, path, res.Body, err)
		}
	}
	return res.Status
}

func (b *browser) login(phone, name string) map[string]any {
	b.t.Helper()
	var res struct {
		Token  string         `json:"token"`
		Member map[string]any `json:"member"`
	}
	if code := b.call("POST", "/api/login", map[string]string{"phone": phone, "name": name}, &res); code != 200 {
		b.t.Fatalf("login %s: status %d", phone, code)
	}
	b.token = res.Token
	return res.Member
}

// --- Tests ---

func TestShellServed(t *testing.T) {
	b := newBrowser(t, 30*time.Second)
	defer b.close()

	var title string
	b.run(chromedp.Title(&title))
	if title != "Smart Task Manager" {
		t.Fatalf("unexpected title %q", title)
	}
	t.Log("OK: web client shell served")
}

func TestAdminLogin(t *testing.T) {
	b := newBrowser(t, 30*time.Second)
	defer b.close()

	m := b.login("9999", "")
	if m["isAdmin"] != true {
		t.Fatalf("admin phone did not log in as admin: %v", m)
	}

	var me map[string]any
	if code := b.call("GET", "/api/me", nil, &me); code != 200 {
		t.Fatalf("me: status %d", code)
	}
	if me["id"] != m["id"] {
		t.Fatalf("session restored %v, want %v", me["id"], m["id"])
	}
	t.Log("OK: admin login + session restore")
}

func TestNewGardenerNeedsName(t *testing.T) {
	b := newBrowser(t, 30*time.Second)
	defer b.close()

	phone := fmt.Sprintf("08%08d", time.Now().UnixNano()%100000000)
	if code := b.call("POST", "/api/login", map[string]string{"phone": phone}, nil); code != 400 {
		t.Fatalf("unknown phone without name: status %d, want 400", code)
	}
	m := b.login(phone, "E2E Gardener")
	if m["role"] != "Gardener" {
		t.Fatalf("role = %v", m["role"])
	}
	t.Log("OK: self-registration")
}

func TestTaskLifecycle(t *testing.T) {
	b := newBrowser(t, 60*time.Second)
	defer b.close()
	me := b.login("9999", "")

	var task map[string]any
	title := "E2E weeding " + time.Now().Format("150405")
	if code := b.call("POST", "/api/tasks", map[string]string{"title": title, "priority": "URGENT"}, &task); code != 201 {
		t.Fatalf("create: status %d", code)
	}
	if task["status"] != "TODO" {
		t.Fatalf("new task status %v", task["status"])
	}
	id := task["id"].(string)

	if code := b.call("POST", "/api/tasks/"+id+"/move", map[string]string{"status": "DOING"}, &task); code != 200 {
		t.Fatalf("move to DOING: status %d", code)
	}
	if task["assigneeId"] != me["id"] {
		t.Fatalf("not auto-assigned: %v", task["assigneeId"])
	}

	if code := b.call("POST", "/api/tasks/"+id+"/move", map[string]string{"status": "DONE"}, &task); code != 200 {
		t.Fatalf("move to DONE: status %d", code)
	}
	if code := b.call("POST", "/api/tasks/"+id+"/move", map[string]string{"status": "TODO"}, &task); code != 200 {
		t.Fatalf("reopen: status %d", code)
	}
	if code := b.call("POST", "/api/tasks/"+id+"/move", map[string]string{"status": "DONE"}, nil); code != 409 {
		t.Fatalf("TODO -> DONE: status %d, want 409", code)
	}

	var board map[string]any
	b.call("GET", "/api/tasks/board", nil, &board)
	raw, _ := json.Marshal(board)
	if !strings.Contains(string(raw), title) {
		t.Fatalf("task missing from today's board")
	}
	t.Log("OK: create -> DOING -> DONE -> reopen")
}

func TestRoutineOncePerDay(t *testing.T) {
	b := newBrowser(t, 60*time.Second)
	defer b.close()
	b.login("9999", "")

	var routines []map[string]any
	b.call("GET", "/api/routines", nil, &routines)
	if len(routines) == 0 {
		t.Skip("every routine already started today")
	}
	id := routines[0]["id"].(string)

	if code := b.call("POST", "/api/routines/"+id+"/activate", nil, nil); code != 201 {
		t.Fatalf("activate: status %d", code)
	}
	var after []map[string]any
	b.call("GET", "/api/routines", nil, &after)
	for _, r := range after {
		if r["id"] == id {
			t.Fatalf("routine %s still offered after activation", id)
		}
	}
	t.Log("OK: routine hidden for the rest of the day")
}

func TestMemberAdminOnly(t *testing.T) {
	b := newBrowser(t, 30*time.Second)
	defer b.close()

	phone := fmt.Sprintf("09%08d", time.Now().UnixNano()%100000000)
	b.login(phone, "Not An Admin")
	if code := b.call("POST", "/api/members", map[string]string{"name": "Mallory"}, nil); code != 403 {
		t.Fatalf("gardener added member: status %d, want 403", code)
	}
	t.Log("OK: roster writes need admin")
}
