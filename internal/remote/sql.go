package remote

import (
	"context"
	"fmt"

	"github.com/LordMilo/SmartTaskManager/internal/model"

	"gorm.io/gorm"
)

// SQL mirrors the board into a relational database through gorm.
type SQL struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) *SQL { return &SQL{db: db} }

// Migrate creates or alters the four board tables.
func (s *SQL) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&model.MemberRow{}, &model.TaskRow{}, &model.AttachmentRow{}, &model.RoutineRow{},
	)
}

func (s *SQL) SelectMembers(ctx context.Context) ([]model.MemberRow, error) {
	var rows []model.MemberRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}
	return rows, nil
}

func (s *SQL) SelectTasks(ctx context.Context) ([]model.TaskRow, error) {
	var rows []model.TaskRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	var atts []model.AttachmentRow
	if err := s.db.WithContext(ctx).Order("created_at").Find(&atts).Error; err != nil {
		return nil, fmt.Errorf("select attachments: %w", err)
	}

	byTask := make(map[string][]model.AttachmentRow, len(rows))
	for _, a := range atts {
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
	}
	for i := range rows {
		rows[i].Attachments = byTask[rows[i].ID]
	}
	return rows, nil
}

func (s *SQL) SelectRoutines(ctx context.Context) ([]model.RoutineRow, error) {
	var rows []model.RoutineRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select routines: %w", err)
	}
	return rows, nil
}

func (s *SQL) Insert(ctx context.Context, table string, row any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Update overwrites every column of the row; last write wins.
func (s *SQL) Update(ctx context.Context, table, id string, row any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Table(table).
		Where("id = ?", id).
		Select("*").Omit("id").
		Updates(row).Error
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(emptyRow(table)).Error; err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}

func emptyRow(table string) any {
	switch table {
	case model.TableMembers:
		return &model.MemberRow{}
	case model.TableTasks:
		return &model.TaskRow{}
	case model.TableAttachments:
		return &model.AttachmentRow{}
	default:
		return &model.RoutineRow{}
	}
}
