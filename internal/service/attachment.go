package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/state"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MediaPrefix = "/media/"

// AttachmentService stores proof photos and videos under a local media
// directory and mirrors them to Drive when connected.
type AttachmentService struct {
	store    *state.Store
	google   *GoogleService
	dir      string
	maxBytes int64
}

func NewAttachmentService(store *state.Store, google *GoogleService, dir string, maxBytes int64) *AttachmentService {
	return &AttachmentService{store: store, google: google, dir: dir, maxBytes: maxBytes}
}

func (s *AttachmentService) Dir() string { return s.dir }

// Kind classifies by content type: video/* is a video, everything else an
// image.
func Kind(contentType string) model.AttachmentKind {
	if strings.HasPrefix(strings.ToLower(contentType), "video") {
		return model.KindVideo
	}
	return model.KindImage
}

const sniffLen = 3072

// mediaType reports the sniffed type of a photo or video. SVG never counts
// as media.
func mediaType(m *mimetype.MIME) (string, bool) {
	ct := m.String()
	if m.Is("image/svg+xml") {
		return ct, false
	}
	return ct, strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}

// Capture saves r as a new attachment of the task. The content type and the
// stored file extension both come from sniffing the content; the client's
// file name is kept for display only.
func (s *AttachmentService) Capture(ctx context.Context, sid, taskID, name string, r io.Reader) (model.Task, model.Attachment, error) {
	if _, ok := s.store.Task(taskID); !ok {
		return model.Task{}, model.Attachment{}, fmt.Errorf("task %s: %w", taskID, state.ErrNotFound)
	}

	br := bufio.NewReaderSize(r, sniffLen)
	head, _ := br.Peek(sniffLen)
	detected := mimetype.Detect(head)
	contentType, ok := mediaType(detected)
	if !ok {
		return model.Task{}, model.Attachment{}, fmt.Errorf("%w: %s is not a photo or video", ErrInvalid, contentType)
	}

	id := uuid.NewString()
	ext := detected.Extension()
	if name == "" {
		name = id + ext
	}

	path, err := s.save(id+ext, br)
	if err != nil {
		return model.Task{}, model.Attachment{}, err
	}

	a := model.Attachment{
		ID:   id,
		Type: Kind(contentType),
		URL:  MediaPrefix + id + ext,
		Name: name,
	}
	t, _, err := s.store.AddAttachment(ctx, taskID, a)
	if err != nil {
		os.Remove(path)
		return model.Task{}, model.Attachment{}, err
	}
	a = t.Attachments[len(t.Attachments)-1]

	if s.google != nil {
		s.google.UploadInBackground(ctx, sid, name, contentType, func() (io.ReadCloser, error) {
			return os.Open(path)
		})
	}
	return t, a, nil
}

func (s *AttachmentService) save(file string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("media dir: %w", err)
	}
	path := filepath.Join(s.dir, file)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		os.Remove(path)
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalid, s.maxBytes)
	}
	return path, nil
}
