package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/google"
	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopRemote struct {
	members  []model.MemberRow
	routines []model.RoutineRow
}

func (r nopRemote) SelectMembers(context.Context) ([]model.MemberRow, error) { return r.members, nil }
func (nopRemote) SelectTasks(context.Context) ([]model.TaskRow, error)       { return nil, nil }
func (r nopRemote) SelectRoutines(context.Context) ([]model.RoutineRow, error) {
	return r.routines, nil
}
func (nopRemote) Insert(context.Context, string, any) error         { return nil }
func (nopRemote) Update(context.Context, string, string, any) error { return nil }
func (nopRemote) Delete(context.Context, string, string) error      { return nil }

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T, r nopRemote) *state.Store {
	t.Helper()
	s := state.New(state.Options{
		Remote:   r,
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
		Logger:   quiet(),
	})
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeSheets struct {
	mu    sync.Mutex
	syncs [][][]string
	err   error
}

func (f *fakeSheets) SyncTasks(_ context.Context, rows [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs = append(f.syncs, rows)
	return f.err
}

type fakeDrive struct {
	mu      sync.Mutex
	names   []string
	mimes   []string
	content []string
	err     error
}

func (f *fakeDrive) UploadFile(_ context.Context, name, mimeType string, r io.Reader) (google.DriveFile, error) {
	data, _ := io.ReadAll(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	f.mimes = append(f.mimes, mimeType)
	f.content = append(f.content, string(data))
	return google.DriveFile{ID: "drive-1"}, f.err
}

func TestLogin(t *testing.T) {
	store := newStore(t, nopRemote{members: []model.MemberRow{
		{ID: "m2", Name: "Bob Soil", Role: "Landscaper", PhoneNumber: "0812345678"},
	}})
	auth := NewAuthService(store, "9999")
	ctx := context.Background()

	m, err := auth.Login(ctx, "0812345678", "")
	require.NoError(t, err)
	assert.Equal(t, "m2", m.ID)

	admin, err := auth.Login(ctx, "9999", "Alice Green")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, RoleHeadGardener, admin.Role)
	assert.Equal(t, "https://picsum.photos/seed/9999/200/200", admin.Avatar)

	// the second login finds the registered admin
	again, err := auth.Login(ctx, "9999", "")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = auth.Login(ctx, "0800000000", "  ")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = auth.Login(ctx, "", "Dan")
	assert.ErrorIs(t, err, ErrInvalid)

	g, err := auth.Login(ctx, "0800000000", "Dana Fern")
	require.NoError(t, err)
	assert.False(t, g.IsAdmin)
	assert.Equal(t, RoleGardener, g.Role)
	assert.Len(t, store.Members(), 3)
}

func TestLogin_AdminWithoutName(t *testing.T) {
	auth := NewAuthService(newStore(t, nopRemote{}), "9999")
	m, err := auth.Login(context.Background(), "9999", "")
	require.NoError(t, err)
	assert.Equal(t, "Admin", m.Name)
	assert.True(t, m.IsAdmin)
}

const sid = "s-alice"

func TestCreateTask(t *testing.T) {
	store := newStore(t, nopRemote{})
	g := NewGoogleService("", "", quiet())
	sheets := &fakeSheets{}
	g.UseSheets(sid, sheets)
	tasks := NewTaskService(store, g)

	task, err := tasks.Create(context.Background(), sid, model.CreateTaskRequest{Title: " Water plants "})
	require.NoError(t, err)
	assert.Equal(t, "Water plants", task.Title)
	assert.Equal(t, model.PriorityNormal, task.Priority)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, "2024-06-10", task.DueDate)
	assert.NotEmpty(t, task.ID)

	g.Wait()
	require.Len(t, sheets.syncs, 1)
	require.Len(t, sheets.syncs[0], 2)
	assert.Equal(t, "Water plants", sheets.syncs[0][1][1])

	_, err = tasks.Create(context.Background(), sid, model.CreateTaskRequest{Title: "x", Priority: "HIGH"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = tasks.Create(context.Background(), sid, model.CreateTaskRequest{Title: "x", DueDate: "tomorrow"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = tasks.Create(context.Background(), sid, model.CreateTaskRequest{Title: ""})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCreateTask_NoSheetsNoSync(t *testing.T) {
	store := newStore(t, nopRemote{})
	g := NewGoogleService("", "", quiet())
	tasks := NewTaskService(store, g)

	_, err := tasks.Create(context.Background(), sid, model.CreateTaskRequest{Title: "Rake", DueDate: "2024-06-12"})
	require.NoError(t, err)
	g.Wait()
	ok, err := g.Sync(context.Background(), sid, store.Tasks())
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestGoogle_LinksArePerSession(t *testing.T) {
	store := newStore(t, nopRemote{})
	g := NewGoogleService("", "", quiet())
	tasks := NewTaskService(store, g)
	ctx := context.Background()

	aliceSheets, aliceDrive := &fakeSheets{}, &fakeDrive{}
	g.UseSheets("s-alice", aliceSheets)
	g.UseDrive("s-alice", aliceDrive)
	g.Connect("s-bob", "bob-token", "")

	assert.True(t, g.SheetsAvailable("s-alice"))
	assert.True(t, g.DriveAvailable("s-bob"))
	assert.False(t, g.SheetsAvailable("s-bob"))
	assert.False(t, g.DriveAvailable("s-carol"))
	assert.False(t, g.DriveAvailable(""))

	// Bob's task never reaches Alice's sheet.
	_, err := tasks.Create(ctx, "s-bob", model.CreateTaskRequest{Title: "Rake"})
	require.NoError(t, err)
	g.Wait()
	assert.Empty(t, aliceSheets.syncs)
	ok, _ := g.Sync(ctx, "s-bob", store.Tasks())
	assert.False(t, ok)

	_, err = tasks.Create(ctx, "s-alice", model.CreateTaskRequest{Title: "Weed"})
	require.NoError(t, err)
	g.Wait()
	assert.Len(t, aliceSheets.syncs, 1)

	// Bob disconnecting leaves Alice connected.
	g.Disconnect("s-bob")
	assert.False(t, g.DriveAvailable("s-bob"))
	assert.True(t, g.DriveAvailable("s-alice"))
	assert.True(t, g.SheetsAvailable("s-alice"))

	g.Disconnect("s-alice")
	assert.False(t, g.SheetsAvailable("s-alice"))
	g.Disconnect("s-alice")
}

func TestMoveAndStartRoutine(t *testing.T) {
	store := newStore(t, nopRemote{routines: []model.RoutineRow{
		{ID: "r3", Title: "Soil Check", Description: "Measure pH levels in vegetable patch.", DefaultPriority: "MEDIUM"},
	}})
	g := NewGoogleService("", "", quiet())
	sheets := &fakeSheets{}
	g.UseSheets(sid, sheets)
	tasks := NewTaskService(store, g)
	ctx := context.Background()

	task, err := tasks.StartRoutine(ctx, sid, "r3")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Empty(t, store.AvailableRoutines())

	moved, err := tasks.Move(ctx, task.ID, model.StatusDoing, model.Member{ID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, "m1", moved.AssigneeID)

	_, err = tasks.Move(ctx, task.ID, "ARCHIVED", model.Member{ID: "m1"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = tasks.Move(ctx, task.ID, model.StatusDoing, model.Member{ID: "m1"})
	assert.ErrorIs(t, err, state.ErrInvalidTransition)

	g.Wait()
	assert.Len(t, sheets.syncs, 1)
}

func TestRoster(t *testing.T) {
	store := newStore(t, nopRemote{})
	roster := NewRosterService(store)
	ctx := context.Background()

	m, err := roster.AddMember(ctx, model.AddMemberRequest{Name: "Charlie Leaf", Role: "Botanist", PhoneNumber: "0898765432"})
	require.NoError(t, err)
	assert.Equal(t, "Botanist", m.Role)
	assert.Equal(t, AvatarURL("0898765432"), m.Avatar)

	_, err = roster.AddMember(ctx, model.AddMemberRequest{Name: "Dup", PhoneNumber: "0898765432"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = roster.AddMember(ctx, model.AddMemberRequest{Name: "Long", PhoneNumber: strings.Repeat("1", model.MaxPhoneLen+1)})
	assert.ErrorIs(t, err, ErrInvalid)

	// Members without a phone never collide with each other.
	first, err := roster.AddMember(ctx, model.AddMemberRequest{Name: "Dana Fern"})
	require.NoError(t, err)
	second, err := roster.AddMember(ctx, model.AddMemberRequest{Name: "Eli Moss"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Empty(t, second.PhoneNumber)

	require.NoError(t, roster.RemoveMember(ctx, m.ID))
	assert.ErrorIs(t, roster.RemoveMember(ctx, m.ID), state.ErrNotFound)

	r, err := roster.CreateRoutine(ctx, model.RoutineRequest{Title: "Compost Turning", Description: "Aerate the compost pile."})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityNormal, r.DefaultPriority)

	r, err = roster.UpdateRoutine(ctx, r.ID, model.RoutineRequest{Title: "Compost Turning", DefaultPriority: model.PriorityUrgent})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityUrgent, store.Routines()[0].DefaultPriority)

	_, err = roster.UpdateRoutine(ctx, "missing", model.RoutineRequest{Title: "x"})
	assert.ErrorIs(t, err, state.ErrNotFound)
	_, err = roster.CreateRoutine(ctx, model.RoutineRequest{Title: "x", DefaultPriority: "LOW"})
	assert.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, roster.DeleteRoutine(ctx, r.ID))
	assert.Empty(t, store.Routines())
}

func TestKind(t *testing.T) {
	assert.Equal(t, model.KindVideo, Kind("video/mp4"))
	assert.Equal(t, model.KindVideo, Kind("Video/QuickTime"))
	assert.Equal(t, model.KindImage, Kind("image/png"))
	assert.Equal(t, model.KindImage, Kind("application/pdf"))
}

// Headers just long enough for content sniffing.
var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	mp4Bytes  = append([]byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2"), make([]byte, 32)...)
)

func TestCapture(t *testing.T) {
	store := newStore(t, nopRemote{})
	task, _ := store.CreateTask(context.Background(), model.Task{Title: "Photo", Status: model.StatusTodo, DueDate: "2024-06-10"})
	g := NewGoogleService("", "", quiet())
	drive := &fakeDrive{}
	g.UseDrive(sid, drive)
	dir := t.TempDir()
	svc := NewAttachmentService(store, g, dir, 1<<20)

	updated, a, err := svc.Capture(context.Background(), sid, task.ID, "proof.mp4", bytes.NewReader(mp4Bytes))
	require.NoError(t, err)
	assert.Equal(t, model.KindVideo, a.Type)
	assert.Equal(t, "proof.mp4", a.Name)
	assert.True(t, strings.HasPrefix(a.URL, MediaPrefix))
	assert.True(t, strings.HasSuffix(a.URL, ".mp4"))
	require.Len(t, updated.Attachments, 1)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(a.URL, MediaPrefix)))
	require.NoError(t, err)
	assert.Equal(t, mp4Bytes, data)

	g.Wait()
	assert.Equal(t, []string{"proof.mp4"}, drive.names)
	assert.Equal(t, []string{"video/mp4"}, drive.mimes)
	assert.Equal(t, []string{string(mp4Bytes)}, drive.content)

	// a Drive failure keeps the local attachment
	drive.err = errors.New("quota exceeded")
	_, a, err = svc.Capture(context.Background(), sid, task.ID, "photo", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	g.Wait()
	assert.Equal(t, model.KindImage, a.Type)
	assert.True(t, strings.HasSuffix(a.URL, ".png"))
	assert.Equal(t, "image/png", drive.mimes[1])
	got, _ := store.Task(task.ID)
	assert.Len(t, got.Attachments, 2)

	// the stored extension follows the content, not the client's name
	_, a, err = svc.Capture(context.Background(), "s-other", task.ID, "proof.html", bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(a.URL, ".jpg"))
	assert.Equal(t, "proof.html", a.Name)
	g.Wait()
	assert.Len(t, drive.names, 2)
}

func TestCapture_RejectsNonMedia(t *testing.T) {
	store := newStore(t, nopRemote{})
	task, _ := store.CreateTask(context.Background(), model.Task{Title: "Photo", Status: model.StatusTodo, DueDate: "2024-06-10"})
	dir := t.TempDir()
	svc := NewAttachmentService(store, nil, dir, 1<<20)

	for name, body := range map[string]string{
		"proof.png":  "<html><body><script>alert(document.cookie)</script></body></html>",
		"proof.svg":  `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`,
		"notes.jpg":  "just some text",
		"report.pdf": "%PDF-1.7\n",
	} {
		_, _, err := svc.Capture(context.Background(), sid, task.ID, name, strings.NewReader(body))
		assert.ErrorIs(t, err, ErrInvalid, name)
	}
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
	got, _ := store.Task(task.ID)
	assert.Empty(t, got.Attachments)
}

func TestCapture_Errors(t *testing.T) {
	store := newStore(t, nopRemote{})
	task, _ := store.CreateTask(context.Background(), model.Task{Title: "Photo", Status: model.StatusTodo, DueDate: "2024-06-10"})
	dir := t.TempDir()
	svc := NewAttachmentService(store, nil, dir, 4)

	_, _, err := svc.Capture(context.Background(), sid, "missing", "a.jpg", bytes.NewReader(jpegBytes))
	assert.ErrorIs(t, err, state.ErrNotFound)

	_, _, err = svc.Capture(context.Background(), sid, task.ID, "a.jpg", bytes.NewReader(jpegBytes))
	assert.ErrorIs(t, err, ErrInvalid)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
