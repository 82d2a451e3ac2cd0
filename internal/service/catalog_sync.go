package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LordMilo/SmartTaskManager/internal/export"
	"github.com/LordMilo/SmartTaskManager/internal/model"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

var ErrCatalogDisabled = errors.New("catalog export not configured")

// CatalogSync appends task snapshots to a MOI catalog table.
type CatalogSync struct {
	raw        *sdk.RawClient
	sdk        *sdk.SDKClient
	databaseID sdk.DatabaseID
	tableID    sdk.TableID
	now        func() string
}

func NewCatalogSync(raw *sdk.RawClient, databaseID, tableID int64, now func() string) *CatalogSync {
	return &CatalogSync{
		raw:        raw,
		sdk:        sdk.NewSDKClient(raw),
		databaseID: sdk.DatabaseID(databaseID),
		tableID:    sdk.TableID(tableID),
		now:        now,
	}
}

// TaskColumns is the catalog table layout, in CSV column order.
var TaskColumns = []string{
	"id", "title", "description", "priority", "status", "due_date", "assignee_id", "attachments_count",
}

func (s *CatalogSync) ExportTasks(ctx context.Context, tasks []model.Task) error {
	if s == nil || s.raw == nil || s.tableID == 0 {
		return ErrCatalogDisabled
	}
	csv, err := export.CSV(tasks)
	if err != nil {
		return err
	}
	fileName := fmt.Sprintf("tasks_%s.csv", s.now())
	return s.importCSV(ctx, csv, fileName, taskMapping())
}

// taskMapping binds each CSV column to the table column of the same name.
// Column numbers are 1-based.
func taskMapping() []sdk.FileAndTableColumnMapping {
	mapping := make([]sdk.FileAndTableColumnMapping, len(TaskColumns))
	for i, col := range TaskColumns {
		mapping[i] = sdk.FileAndTableColumnMapping{TableColumn: col, Column: col, ColNumInFile: int32(i + 1)}
	}
	return mapping
}

func (s *CatalogSync) importCSV(ctx context.Context, csv []byte, fileName string, mapping []sdk.FileAndTableColumnMapping) error {
	resp, err := s.raw.UploadLocalFile(ctx, bytes.NewReader(csv), fileName, []sdk.FileMeta{{Filename: fileName, Path: "/"}})
	if err != nil {
		slog.Warn("catalog.upload_failed", "table", s.tableID, "err", err)
		return fmt.Errorf("catalog upload: %w", err)
	}
	if len(resp.ConnFileIds) == 0 {
		slog.Warn("catalog.no_conn_file_ids", "table", s.tableID)
		return errors.New("catalog upload: no conn_file_ids")
	}

	_, err = s.sdk.ImportLocalFileToTable(ctx, &sdk.TableConfig{
		ConnFileIDs:      resp.ConnFileIds,
		NewTable:         false,
		DatabaseID:       s.databaseID,
		TableID:          s.tableID,
		IsColumnName:     false,
		RowStart:         1,
		Conflict:         1,
		ExistedTable:     mapping,
		ExistedTableOpts: sdk.ExistedTableOptions{Method: sdk.ExistedTableOptionAppend},
	})
	if err != nil {
		slog.Warn("catalog.import_failed", "table", s.tableID, "err", err)
		return fmt.Errorf("catalog import: %w", err)
	}
	slog.Info("catalog.synced", "table", s.tableID, "file", fileName)
	return nil
}
