package main

import (
	"context"
	"fmt"

	"github.com/LordMilo/SmartTaskManager/internal/logger"
	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/remote"
	"github.com/LordMilo/SmartTaskManager/internal/service"
)

func demoMembers() []model.MemberRow {
	return []model.MemberRow{
		{ID: "1", Name: "Alice Green", Role: service.RoleHeadGardener, PhoneNumber: "9999", IsAdmin: true, Avatar: service.AvatarURL("9999")},
		{ID: "2", Name: "Bob Soil", Role: "Landscaper", PhoneNumber: "0812345678", Avatar: service.AvatarURL("0812345678")},
		{ID: "3", Name: "Charlie Leaf", Role: "Botanist", PhoneNumber: "0898765432", Avatar: service.AvatarURL("0898765432")},
	}
}

func demoRoutines() []model.RoutineRow {
	return []model.RoutineRow{
		{ID: "r1", Title: "Morning Watering", Description: "Water the rose garden and front lawn.", DefaultPriority: string(model.PriorityUrgent)},
		{ID: "r2", Title: "Weekly Pruning", Description: "Trim hedges and remove dead leaves.", DefaultPriority: string(model.PriorityNormal)},
		{ID: "r3", Title: "Soil Check", Description: "Measure pH levels in vegetable patch.", DefaultPriority: string(model.PriorityMedium)},
		{ID: "r4", Title: "Compost Turning", Description: "Aerate the compost pile.", DefaultPriority: string(model.PriorityNormal)},
	}
}

// seedDemo inserts whatever demo rows are missing; existing phones and
// routine ids are left alone.
func seedDemo(ctx context.Context, client remote.Client) error {
	members, err := client.SelectMembers(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	phones := map[string]bool{}
	for _, m := range members {
		phones[m.PhoneNumber] = true
	}
	for _, m := range demoMembers() {
		if phones[m.PhoneNumber] {
			logger.Info("seed: member exists, skipping", "phone", m.PhoneNumber)
			continue
		}
		if err := client.Insert(ctx, model.TableMembers, &m); err != nil {
			return fmt.Errorf("insert member %s: %w", m.Name, err)
		}
		logger.Info("seed: member created", "name", m.Name)
	}

	routines, err := client.SelectRoutines(ctx)
	if err != nil {
		return fmt.Errorf("list routines: %w", err)
	}
	ids := map[string]bool{}
	for _, r := range routines {
		ids[r.ID] = true
	}
	for _, r := range demoRoutines() {
		if ids[r.ID] {
			continue
		}
		if err := client.Insert(ctx, model.TableRoutines, &r); err != nil {
			return fmt.Errorf("insert routine %s: %w", r.Title, err)
		}
		logger.Info("seed: routine created", "title", r.Title)
	}
	return nil
}
