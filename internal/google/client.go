// Package google uploads attachments to Drive and mirrors the task list into a
// Sheets range. Credentials are supplied at runtime; every call is
// best-effort from the caller's point of view.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	SheetClearRange = "Sheet1!A1:Z1000"
	SheetWriteRange = "Sheet1!A1"
)

var ErrNoSheet = errors.New("no spreadsheet id configured")

type Credentials struct {
	AccessToken string
	SheetID     string
}

type DriveFile struct {
	ID             string `json:"id"`
	WebContentLink string `json:"webContentLink"`
	WebViewLink    string `json:"webViewLink"`
}

type Client struct {
	drive   *resty.Client
	sheets  *resty.Client
	sheetID string
}

// New builds a client for the Drive upload API at driveURL and the Sheets API
// at sheetsURL.
func New(driveURL, sheetsURL string, cred Credentials) *Client {
	return &Client{
		drive: resty.New().
			SetBaseURL(strings.TrimRight(driveURL, "/")).
			SetAuthToken(cred.AccessToken),
		sheets: resty.New().
			SetBaseURL(strings.TrimRight(sheetsURL, "/")).
			SetAuthToken(cred.AccessToken).
			SetHeader("Content-Type", "application/json"),
		sheetID: cred.SheetID,
	}
}

func (c *Client) SheetID() string { return c.sheetID }

// UploadFile sends one multipart upload: a JSON metadata part, then the bytes.
func (c *Client) UploadFile(ctx context.Context, name, mimeType string, r io.Reader) (DriveFile, error) {
	meta, err := json.Marshal(map[string]string{"name": name, "mimeType": mimeType})
	if err != nil {
		return DriveFile{}, err
	}
	var out DriveFile
	resp, err := c.drive.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"uploadType": "multipart",
			"fields":     "id,webContentLink,webViewLink",
		}).
		SetMultipartFields(
			&resty.MultipartField{Param: "metadata", ContentType: "application/json", Reader: bytes.NewReader(meta)},
			&resty.MultipartField{Param: "file", FileName: name, ContentType: mimeType, Reader: r},
		).
		SetResult(&out).
		Post("/files")
	if err := check("drive upload", resp, err); err != nil {
		return DriveFile{}, err
	}
	return out, nil
}

// SyncTasks overwrites the sheet: clear the whole block, then write rows from
// A1 as raw values.
func (c *Client) SyncTasks(ctx context.Context, rows [][]string) error {
	if c.sheetID == "" {
		return ErrNoSheet
	}
	base := "/spreadsheets/" + url.PathEscape(c.sheetID) + "/values/"

	resp, err := c.sheets.R().
		SetContext(ctx).
		SetBody(map[string]any{}).
		Post(base + SheetClearRange + ":clear")
	if err := check("sheets clear", resp, err); err != nil {
		return err
	}

	resp, err = c.sheets.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "RAW").
		SetBody(map[string]any{"values": rows}).
		Put(base + SheetWriteRange)
	return check("sheets update", resp, err)
}

func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), resp.String())
	}
	return nil
}
