package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diriredouane/AI-Recipe-Automator/internal/cost"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// run carries the per-row state shared by every flow handler.
type run struct {
	id        string
	sheetName string
	account   *types.AccountConfig
	row       *types.Row
	trigger   types.Trigger
	tracker   *cost.Tracker
	wp        WordPress
}

type handler func(ctx context.Context, r *run) error

func (p *Processor) handlers() map[types.Trigger]handler {
	return map[types.Trigger]handler{
		types.TriggerOK:            p.runFullFlow,
		types.TriggerAuto:          p.runFullFlow,
		types.TriggerDraft:         p.runFullFlow,
		types.TriggerPin:           p.runPin,
		types.TriggerPinLink:       p.runPinLink,
		types.TriggerUpdateArticle: p.runUpdateArticle,
		types.TriggerAddCard:       p.runAddCard,
	}
}

// ProcessRow runs the flow selected by the row's trigger cell. Any failure
// is written back to the row (trigger set to the error marker, message in
// the error column) before being returned; accumulated model costs are
// flushed to the cost column whether the flow succeeded or not.
func (p *Processor) ProcessRow(ctx context.Context, sheetName string, rowNumber int) error {
	account, err := p.resolver.ResolveDataSheet(ctx, sheetName)
	if err != nil {
		return err
	}

	row, err := p.store.Row(ctx, sheetName, rowNumber)
	if err != nil {
		return err
	}

	// Non-trigger values (pending rows, markers, stray text) are left
	// alone; only the trigger vocabulary starts a flow.
	trigger, ok := types.ParseTrigger(row.Trigger)
	if !ok {
		p.logf("row %d of %s has no actionable trigger (%q), skipping", rowNumber, sheetName, row.Trigger)
		return nil
	}
	h, ok := p.handlers()[trigger]
	if !ok {
		return fmt.Errorf("row %d of %s: no handler for trigger %q", rowNumber, sheetName, trigger)
	}

	if !account.IsActive() {
		p.logf("site %s is paused, skipping row %d", account.SiteName, rowNumber)
		return p.store.UpdateRow(ctx, sheetName, rowNumber, &types.RowUpdate{
			Trigger: types.Set(types.MarkerPaused),
			Error:   types.Set(fmt.Sprintf("account %s is paused", account.SiteName)),
		})
	}

	r := &run{
		id:        uuid.NewString(),
		sheetName: sheetName,
		account:   account,
		row:       row,
		trigger:   trigger,
		tracker:   cost.NewTracker(),
		wp:        p.newWP(account),
	}

	if p.artifacts != nil {
		if dbRunID, dbErr := p.artifacts.CreateRun(ctx, account.SiteName, sheetName, rowNumber, string(trigger)); dbErr == nil {
			r.id = dbRunID
		}
	}

	flowErr := h(ctx, r)
	p.flush(ctx, r, flowErr)

	if p.artifacts != nil {
		msg := ""
		if flowErr != nil {
			msg = flowErr.Error()
		}
		_ = p.artifacts.CompleteRun(ctx, r.id, flowErr == nil, msg)
	}
	return flowErr
}

// flush writes the cost summary and, on failure, the error marker. This
// runs after every flow regardless of outcome so spend is never lost.
func (p *Processor) flush(ctx context.Context, r *run, flowErr error) {
	patch := &types.RowUpdate{}
	if len(r.tracker.Entries()) > 0 {
		patch.CostDetails = types.Set(r.tracker.Summary())
	}
	if flowErr != nil {
		patch.Trigger = types.Set(types.MarkerError)
		patch.Error = types.Set(flowErr.Error())
	}
	if patch.CostDetails == nil && flowErr == nil {
		return
	}
	if err := p.store.UpdateRow(ctx, r.sheetName, r.row.Number, patch); err != nil {
		p.logf("failed to write row %d outcome: %v", r.row.Number, err)
	}
}

// saveArtifact persists an intermediate payload; failures only log.
func (p *Processor) saveArtifact(ctx context.Context, r *run, step string, payload any) {
	if p.artifacts == nil {
		return
	}
	_ = p.artifacts.SaveArtifact(ctx, r.id, step, payload)
}
