package main

import (
	"context"

	"github.com/LordMilo/SmartTaskManager/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

func initKnowledge(ctx context.Context, client *sdk.RawClient) error {
	knowledges := []sdk.NL2SQLKnowledgeCreateRequest{
		{Type: "glossary", Key: "task", Value: []string{"a row of the tasks table: one job on the garden board"}},
		{Type: "glossary", Key: "overdue", Value: []string{"a task whose status is not DONE and whose due_date is before today"}},
		{Type: "glossary", Key: "proof", Value: []string{"a photo or video attached to a task, counted in attachments_count"}},

		{Type: "synonyms", Key: "job/chore/work item", Value: []string{"a task"}, AssociateTables: []string{"tasks,title"}},
		{Type: "synonyms", Key: "deadline/due/when", Value: []string{"the task due date"}, AssociateTables: []string{"tasks,due_date"}},
		{Type: "synonyms", Key: "owner/assignee/who", Value: []string{"the member working on the task"}, AssociateTables: []string{"tasks,assignee_id"}},

		{Type: "logic", Key: "snapshots are appended, so the latest row per id is the current state", Value: []string{"deduplicate by id before counting"}},
		{Type: "logic", Key: "status moves TODO -> DOING -> DONE; DONE can be reopened to TODO", Value: []string{"task lifecycle"}},

		{Type: "case_library", Key: "which tasks are overdue", Value: []string{"SELECT id, title, due_date FROM tasks WHERE status != 'DONE' AND due_date < CURDATE()"}},
		{Type: "case_library", Key: "how many urgent tasks are open", Value: []string{"SELECT COUNT(DISTINCT id) FROM tasks WHERE priority = 'URGENT' AND status != 'DONE'"}},
		{Type: "case_library", Key: "tasks finished today", Value: []string{"SELECT id, title FROM tasks WHERE status = 'DONE' AND due_date = CURDATE()"}},
	}

	for _, k := range knowledges {
		resp, err := client.CreateKnowledge(ctx, &k)
		if err != nil {
			if isDuplicate(err) {
				logger.Info("knowledge: already exists, skipping", "type", k.Type, "key", k.Key)
				continue
			}
			return err
		}
		logger.Info("knowledge: created", "type", k.Type, "key", k.Key, "id", resp.ID)
	}
	return nil
}
