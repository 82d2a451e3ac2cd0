package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/LordMilo/SmartTaskManager/internal/export"
	"github.com/LordMilo/SmartTaskManager/internal/google"
	"github.com/LordMilo/SmartTaskManager/internal/integration"
	"github.com/LordMilo/SmartTaskManager/internal/model"
)

type Drive interface {
	UploadFile(ctx context.Context, name, mimeType string, r io.Reader) (google.DriveFile, error)
}

type Sheets interface {
	SyncTasks(ctx context.Context, rows [][]string) error
}

// GoogleService holds the Drive and Sheets capabilities of each login
// session. A session's links start Unavailable and are swapped in when its
// user supplies credentials; other sessions never see them.
type GoogleService struct {
	driveURL  string
	sheetsURL string
	log       *slog.Logger

	mu    sync.Mutex
	links map[string]*googleLink
	wg    sync.WaitGroup
}

type googleLink struct {
	drive  integration.Slot[Drive]
	sheets integration.Slot[Sheets]
}

func NewGoogleService(driveURL, sheetsURL string, log *slog.Logger) *GoogleService {
	if log == nil {
		log = slog.Default()
	}
	return &GoogleService{driveURL: driveURL, sheetsURL: sheetsURL, log: log, links: make(map[string]*googleLink)}
}

// link returns the session's link, creating an empty one on first use.
func (s *GoogleService) link(sid string) *googleLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[sid]
	if !ok {
		l = &googleLink{}
		s.links[sid] = l
	}
	return l
}

// lookup returns the session's link without creating one.
func (s *GoogleService) lookup(sid string) (*googleLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[sid]
	return l, ok
}

// Connect enables Drive for the session, and Sheets too when a sheet id is
// given.
func (s *GoogleService) Connect(sid, accessToken, sheetID string) {
	c := google.New(s.driveURL, s.sheetsURL, google.Credentials{AccessToken: accessToken, SheetID: sheetID})
	s.UseDrive(sid, c)
	if sheetID != "" {
		s.UseSheets(sid, c)
	} else {
		s.link(sid).sheets.Set(integration.Unavailable[Sheets]())
	}
	s.log.Info("google.connected", "session", sid, "sheets", sheetID != "")
}

// Disconnect drops the session's credentials only.
func (s *GoogleService) Disconnect(sid string) {
	s.mu.Lock()
	_, ok := s.links[sid]
	delete(s.links, sid)
	s.mu.Unlock()
	if ok {
		s.log.Info("google.disconnected", "session", sid)
	}
}

func (s *GoogleService) UseDrive(sid string, d Drive) {
	s.link(sid).drive.Set(integration.Available(d))
}

func (s *GoogleService) UseSheets(sid string, sh Sheets) {
	s.link(sid).sheets.Set(integration.Available(sh))
}

func (s *GoogleService) driveFor(sid string) integration.Capability[Drive] {
	if l, ok := s.lookup(sid); ok {
		return l.drive.Load()
	}
	return integration.Unavailable[Drive]()
}

func (s *GoogleService) sheetsFor(sid string) integration.Capability[Sheets] {
	if l, ok := s.lookup(sid); ok {
		return l.sheets.Load()
	}
	return integration.Unavailable[Sheets]()
}

func (s *GoogleService) DriveAvailable(sid string) bool  { return s.driveFor(sid).Available() }
func (s *GoogleService) SheetsAvailable(sid string) bool { return s.sheetsFor(sid).Available() }

// Sync overwrites the session's sheet with a snapshot of tasks. It returns
// false when the session has no Sheets connection.
func (s *GoogleService) Sync(ctx context.Context, sid string, tasks []model.Task) (bool, error) {
	sh, ok := s.sheetsFor(sid).Get()
	if !ok {
		return false, nil
	}
	if err := sh.SyncTasks(ctx, export.Rows(tasks)); err != nil {
		s.log.Warn("sheets.sync_failed", "tasks", len(tasks), "err", err)
		return true, err
	}
	s.log.Info("sheets.synced", "tasks", len(tasks))
	return true, nil
}

// SyncInBackground fires a snapshot sync when Sheets is connected. Failures
// are only logged.
func (s *GoogleService) SyncInBackground(ctx context.Context, sid string, tasks []model.Task) {
	if !s.SheetsAvailable(sid) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Sync(ctx, sid, tasks)
	}()
}

// UploadInBackground copies a stored attachment to the session's Drive when
// connected. open is called only if an upload actually happens.
func (s *GoogleService) UploadInBackground(ctx context.Context, sid, name, mimeType string, open func() (io.ReadCloser, error)) {
	d, ok := s.driveFor(sid).Get()
	if !ok {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		r, err := open()
		if err != nil {
			s.log.Warn("drive.upload_failed", "name", name, "err", err)
			return
		}
		defer r.Close()
		f, err := d.UploadFile(ctx, name, mimeType, r)
		if err != nil {
			s.log.Warn("drive.upload_failed", "name", name, "err", err)
			return
		}
		s.log.Info("drive.uploaded", "name", name, "id", f.ID, "link", f.WebViewLink)
	}()
}

// Wait blocks until background uploads and syncs finish.
func (s *GoogleService) Wait() { s.wg.Wait() }
