package sheets

import (
	"context"
	"fmt"

	"vendorledger/internal/core/domain"
	"vendorledger/pkg/apperror"

	"github.com/rs/zerolog"
	"google.golang.org/api/sheets/v4"
)

// Session is one authenticated connection, holding the worksheet title to
// sheet-id map resolved at connect time. Sessions are used by a single
// goroutine for the duration of one push or pull.
type Session struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetIDs      map[string]int64
	log           zerolog.Logger
}

// FetchAll reads every data row of a kind's worksheet. An absent worksheet
// yields an empty slice.
func (s *Session) FetchAll(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	title := string(kind)
	if _, ok := s.sheetIDs[title]; !ok {
		return []domain.Record{}, nil
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, title).Context(ctx).Do()
	if err != nil {
		return nil, apperror.ErrRemoteApply(fmt.Errorf("reading %s: %w", title, err))
	}
	if len(resp.Values) < 2 {
		// Header only, or nothing at all.
		return []domain.Record{}, nil
	}

	header := resp.Values[0]
	records := make([]domain.Record, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		rec := recordFor(header, row)
		if rec.ID() == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Apply replays one logged change against the worksheet of its resource.
// For updates and deletes an id no longer present remotely counts as
// success, there is nothing left to reconcile.
func (s *Session) Apply(ctx context.Context, entry domain.ChangeEntry) error {
	var err error
	switch entry.Action {
	case domain.ChangeActionCreate:
		err = s.appendRow(ctx, entry.Resource, entry.Data)
	case domain.ChangeActionUpdate:
		err = s.updateRow(ctx, entry.Resource, entry.ID, entry.Data)
	case domain.ChangeActionDelete:
		err = s.deleteRow(ctx, entry.Resource, entry.ID)
	default:
		return apperror.ErrRemoteApply(fmt.Errorf("unknown change action %q", entry.Action))
	}
	if err != nil {
		return err
	}

	s.log.Debug().
		Str("action", string(entry.Action)).
		Str("resource", string(entry.Resource)).
		Str("id", entry.ID).
		Msg("change applied to remote")
	return nil
}

func (s *Session) appendRow(ctx context.Context, kind domain.Kind, rec domain.Record) error {
	title := string(kind)
	if err := s.ensureWorksheet(ctx, title); err != nil {
		return err
	}
	header, err := s.ensureHeader(ctx, title, rec)
	if err != nil {
		return err
	}

	vr := &sheets.ValueRange{Values: [][]any{rowFor(header, rec)}}
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, title, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return apperror.ErrRemoteApply(fmt.Errorf("appending to %s: %w", title, err))
	}
	return nil
}

func (s *Session) updateRow(ctx context.Context, kind domain.Kind, id string, rec domain.Record) error {
	title := string(kind)
	if _, ok := s.sheetIDs[title]; !ok {
		return nil
	}

	rowIdx, err := s.findRow(ctx, title, id)
	if err != nil {
		return err
	}
	if rowIdx < 0 {
		s.log.Warn().Str("resource", title).Str("id", id).Msg("update target missing remotely, skipping")
		return nil
	}

	header, err := s.readHeader(ctx, title)
	if err != nil {
		return err
	}
	cols := make([]string, 0, len(header))
	for _, h := range header {
		name, _ := h.(string)
		cols = append(cols, name)
	}

	rng := fmt.Sprintf("%s!A%d", title, rowIdx+1)
	vr := &sheets.ValueRange{Values: [][]any{rowFor(cols, rec)}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return apperror.ErrRemoteApply(fmt.Errorf("updating %s row %d: %w", title, rowIdx+1, err))
	}
	return nil
}

func (s *Session) deleteRow(ctx context.Context, kind domain.Kind, id string) error {
	title := string(kind)
	sheetID, ok := s.sheetIDs[title]
	if !ok {
		return nil
	}

	rowIdx, err := s.findRow(ctx, title, id)
	if err != nil {
		return err
	}
	if rowIdx < 0 {
		s.log.Warn().Str("resource", title).Str("id", id).Msg("delete target missing remotely, skipping")
		return nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIdx),
					EndIndex:   int64(rowIdx) + 1,
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return apperror.ErrRemoteApply(fmt.Errorf("deleting %s row %d: %w", title, rowIdx+1, err))
	}
	return nil
}

// findRow scans column A for the id. Returns the zero-based row index, or
// -1 when absent.
func (s *Session) findRow(ctx context.Context, title, id string) (int, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, title+"!A:A").Context(ctx).Do()
	if err != nil {
		return -1, apperror.ErrRemoteApply(fmt.Errorf("scanning %s ids: %w", title, err))
	}
	for i, row := range resp.Values {
		if len(row) > 0 && domain.CanonicalID(row[0]) == id {
			return i, nil
		}
	}
	return -1, nil
}

func (s *Session) readHeader(ctx context.Context, title string) ([]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, title+"!1:1").Context(ctx).Do()
	if err != nil {
		return nil, apperror.ErrRemoteApply(fmt.Errorf("reading %s header: %w", title, err))
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return resp.Values[0], nil
}

// ensureWorksheet creates the kind's worksheet when the spreadsheet does not
// have one yet and records its sheet id.
func (s *Session) ensureWorksheet(ctx context.Context, title string) error {
	if _, ok := s.sheetIDs[title]; ok {
		return nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return apperror.ErrRemoteApply(fmt.Errorf("creating worksheet %s: %w", title, err))
	}
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			s.sheetIDs[title] = r.AddSheet.Properties.SheetId
		}
	}
	s.log.Info().Str("worksheet", title).Msg("created missing worksheet")
	return nil
}

// ensureHeader writes the header row derived from the record when the
// worksheet is still blank, and returns the effective column order.
func (s *Session) ensureHeader(ctx context.Context, title string, rec domain.Record) ([]string, error) {
	existing, err := s.readHeader(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		cols := make([]string, 0, len(existing))
		for _, h := range existing {
			name, _ := h.(string)
			cols = append(cols, name)
		}
		return cols, nil
	}

	header := headerFor(rec)
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	vr := &sheets.ValueRange{Values: [][]any{row}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, title+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return nil, apperror.ErrRemoteApply(fmt.Errorf("writing %s header: %w", title, err))
	}
	return header, nil
}
