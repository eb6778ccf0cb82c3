package sheets

import (
	"context"
	"fmt"
	"os"

	"vendorledger/internal/core/ports"
	"vendorledger/pkg/apperror"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client connects to a Google Spreadsheet used as the remote store. Each
// resource kind lives on a worksheet named after it ("Vendors", "Wallets",
// ...), first row is the column header, column A holds the record id.
type Client struct {
	credentialsFile string
	spreadsheetID   string
	log             zerolog.Logger
}

// NewClient returns an unconnected client. Credentials are only read when a
// session is opened, so the service can start without them and report the
// problem through the sync status instead.
func NewClient(credentialsFile, spreadsheetID string, log zerolog.Logger) *Client {
	return &Client{
		credentialsFile: credentialsFile,
		spreadsheetID:   spreadsheetID,
		log:             log.With().Str("component", "sheets").Logger(),
	}
}

// Connect authenticates with the service account and resolves the
// spreadsheet metadata. Misconfiguration (missing credentials, unknown
// spreadsheet id) and transport failures both surface as SYNC_001.
func (c *Client) Connect(ctx context.Context) (ports.RemoteSession, error) {
	if c.spreadsheetID == "" {
		return nil, apperror.ErrRemoteConnection("spreadsheet id is not configured", nil)
	}
	if _, err := os.Stat(c.credentialsFile); err != nil {
		return nil, apperror.ErrRemoteConnection(fmt.Sprintf("credentials file %q", c.credentialsFile), err)
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(c.credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, apperror.ErrRemoteConnection("creating sheets service", err)
	}

	meta, err := svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, apperror.ErrRemoteConnection(fmt.Sprintf("opening spreadsheet %s", c.spreadsheetID), err)
	}

	sheetIDs := make(map[string]int64, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	c.log.Debug().Int("worksheets", len(sheetIDs)).Msg("connected to spreadsheet")

	return &Session{
		svc:           svc,
		spreadsheetID: c.spreadsheetID,
		sheetIDs:      sheetIDs,
		log:           c.log,
	}, nil
}

// Ping implements ports.HealthChecker by opening a throwaway session.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Connect(ctx)
	return err
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return "sheets"
}
