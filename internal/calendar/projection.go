package calendar

import (
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/model"
)

// Overdue lists tasks not DONE whose due day is strictly before today.
// Tasks with an unreadable due date are never overdue.
func Overdue(tasks []model.Task, now time.Time, loc *time.Location) []model.Task {
	today := DayOf(now, loc)
	var out []model.Task
	for _, t := range tasks {
		if t.Status == model.StatusDone {
			continue
		}
		due, err := ParseDay(t.DueDate, loc)
		if err != nil {
			continue
		}
		if due.Before(today) {
			out = append(out, t)
		}
	}
	return out
}

func OnDay(tasks []model.Task, day Day, loc *time.Location) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if due, err := ParseDay(t.DueDate, loc); err == nil && due == day {
			out = append(out, t)
		}
	}
	return out
}

func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayOf(a, loc) == DayOf(b, loc)
}

type Cell struct {
	Date  string       `json:"date"`
	Today bool         `json:"today"`
	Tasks []model.Task `json:"tasks"`
}

type Month struct {
	Year int `json:"year"`
	// Month is 1-12.
	Month int `json:"month"`
	// Offset is the weekday of the 1st (0 = Sunday), for grid padding.
	Offset int    `json:"offset"`
	Days   []Cell `json:"days"`
}

func MonthGrid(tasks []model.Task, year int, month time.Month, now time.Time, loc *time.Location) Month {
	n := DaysIn(year, month)
	today := DayOf(now, loc)
	grid := Month{
		Year:   year,
		Month:  int(month),
		Offset: int(firstOf(year, month, loc).Weekday()),
		Days:   make([]Cell, n),
	}
	for i := range grid.Days {
		d := Day{Year: year, Month: month, Day: i + 1}
		grid.Days[i] = Cell{Date: d.String(), Today: d == today, Tasks: []model.Task{}}
	}
	for _, t := range tasks {
		due, err := ParseDay(t.DueDate, loc)
		if err != nil || !due.InMonth(year, month) {
			continue
		}
		grid.Days[due.Day-1].Tasks = append(grid.Days[due.Day-1].Tasks, t)
	}
	return grid
}

// Board groups today's tasks by status, the three kanban columns.
func Board(tasks []model.Task, now time.Time, loc *time.Location) map[model.Status][]model.Task {
	board := map[model.Status][]model.Task{
		model.StatusTodo:  {},
		model.StatusDoing: {},
		model.StatusDone:  {},
	}
	for _, t := range OnDay(tasks, DayOf(now, loc), loc) {
		if _, ok := board[t.Status]; ok {
			board[t.Status] = append(board[t.Status], t)
		}
	}
	return board
}

func CompletedOn(tasks []model.Task, day Day, loc *time.Location) []model.Task {
	var out []model.Task
	for _, t := range OnDay(tasks, day, loc) {
		if t.Status == model.StatusDone {
			out = append(out, t)
		}
	}
	return out
}

func CompletedInMonth(tasks []model.Task, year int, month time.Month, loc *time.Location) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.Status != model.StatusDone {
			continue
		}
		if due, err := ParseDay(t.DueDate, loc); err == nil && due.InMonth(year, month) {
			out = append(out, t)
		}
	}
	return out
}
