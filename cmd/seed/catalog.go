package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/LordMilo/SmartTaskManager/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

// taskColumns follow service.TaskColumns, which is the CSV order the
// catalog export writes.
var taskColumns = []sdk.Column{
	{Name: "id", Type: "VARCHAR(64)", IsPk: true, Comment: "task id"},
	{Name: "title", Type: "VARCHAR(255)", Comment: "short task title"},
	{Name: "description", Type: "TEXT", Comment: "free-text details"},
	{Name: "priority", Type: "VARCHAR(10)", Comment: "URGENT, MEDIUM or NORMAL"},
	{Name: "status", Type: "VARCHAR(10)", Comment: "TODO, DOING or DONE"},
	{Name: "due_date", Type: "VARCHAR(32)", Comment: "local calendar date the task is due"},
	{Name: "assignee_id", Type: "VARCHAR(64)", Comment: "member id, empty when unassigned"},
	{Name: "attachments_count", Type: "INT", Comment: "number of proof photos and videos"},
}

func initCatalog(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, error) {
	dbResp, err := client.CreateDatabase(ctx, &sdk.DatabaseCreateRequest{
		CatalogID:    catalogID,
		DatabaseName: dbName,
		Comment:      "Smart Task Manager garden board",
	})
	var dbID sdk.DatabaseID
	switch {
	case err == nil:
		dbID = dbResp.DatabaseID
		logger.Info("catalog: database created", "id", dbID)
	case isDuplicate(err):
		logger.Info("catalog: database already exists, discovering ID", "name", dbName)
		if dbID, err = discoverDatabaseID(ctx, client, catalogID, dbName); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("create database: %w", err)
	}

	resp, err := client.CreateTable(ctx, &sdk.TableCreateRequest{
		DatabaseID: dbID,
		Name:       "tasks",
		Columns:    taskColumns,
		Comment:    "task snapshots exported from the board",
	})
	if err != nil {
		if isDuplicate(err) {
			logger.Info("catalog: table already exists, skipping", "name", "tasks")
			return dbID, nil
		}
		return 0, fmt.Errorf("create table tasks: %w", err)
	}
	logger.Info("catalog: table created", "name", "tasks", "id", resp.TableID,
		"hint", "set moi.database_id and moi.tasks_table_id to enable export")
	return dbID, nil
}

func discoverDatabaseID(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, error) {
	resp, err := client.ListDatabases(ctx, &sdk.DatabaseListRequest{CatalogID: catalogID})
	if err != nil {
		return 0, fmt.Errorf("list databases: %w", err)
	}
	for _, db := range resp.List {
		if db.DatabaseName == dbName {
			logger.Info("catalog: database discovered", "id", db.DatabaseID)
			return db.DatabaseID, nil
		}
	}
	return 0, fmt.Errorf("database %s not found in catalog %d", dbName, catalogID)
}

func isDuplicate(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "already exist") || strings.Contains(s, "exists") || strings.Contains(s, "conflict")
}
