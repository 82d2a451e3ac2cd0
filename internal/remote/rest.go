package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/model"

	"github.com/go-resty/resty/v2"
)

// REST talks to a PostgREST-style hosted database (`/rest/v1/<table>`).
type REST struct {
	http *resty.Client
}

func NewREST(baseURL, apiKey string) *REST {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetTimeout(0).
		SetRetryCount(0).
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &REST{http: client}
}

// WithTimeout bounds each request. Zero, the default, never times out.
func (r *REST) WithTimeout(d time.Duration) *REST {
	r.http.SetTimeout(d)
	return r
}

func (r *REST) SelectMembers(ctx context.Context) ([]model.MemberRow, error) {
	var rows []model.MemberRow
	if err := r.selectAll(ctx, model.TableMembers, "*", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SelectTasks embeds each task's attachments through the foreign key.
func (r *REST) SelectTasks(ctx context.Context) ([]model.TaskRow, error) {
	var rows []model.TaskRow
	if err := r.selectAll(ctx, model.TableTasks, "*,attachments(*)", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *REST) SelectRoutines(ctx context.Context) ([]model.RoutineRow, error) {
	var rows []model.RoutineRow
	if err := r.selectAll(ctx, model.TableRoutines, "*", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *REST) Insert(ctx context.Context, table string, row any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post("/" + table)
	return check("POST", table, resp, err)
}

func (r *REST) Update(ctx context.Context, table, id string, row any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetQueryParam("id", "eq."+id).
		SetBody(row).
		Patch("/" + table)
	return check("PATCH", table, resp, err)
}

func (r *REST) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		Delete("/" + table)
	return check("DELETE", table, resp, err)
}

func (r *REST) selectAll(ctx context.Context, table, columns string, out any) error {
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("select", columns).
		SetResult(out).
		Get("/" + table)
	return check("GET", table, resp, err)
}

func check(method, table string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("remote %s %s: %w", method, table, err)
	}
	if resp.IsError() {
		return fmt.Errorf("remote %s %s: status %d: %s", method, table, resp.StatusCode(), resp.String())
	}
	return nil
}
