// Package google reads the dataset from two tabs of a Google spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"savingsdash/internal/log"
	"savingsdash/internal/sources"
)

// Settings names the spreadsheet and its tabs.
type Settings struct {
	SpreadsheetID  string
	CompaniesSheet string
	TimelineSheet  string
}

// valueGetter is the part of the Sheets API the client needs.
type valueGetter func(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)

type Client struct {
	get            valueGetter
	spreadsheetID  string
	companiesSheet string
	timelineSheet  string
	logger         *log.Logger
}

var _ sources.DatasetReader = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, settings Settings, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(settings.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	get := func(ctx context.Context, id, rng string) ([][]interface{}, error) {
		resp, err := svc.Spreadsheets.Values.Get(id, rng).
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	}
	return newClient(get, settings, logger), nil
}

func newClient(get valueGetter, settings Settings, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	companies := strings.TrimSpace(settings.CompaniesSheet)
	if companies == "" {
		companies = "Companies"
	}
	timeline := strings.TrimSpace(settings.TimelineSheet)
	if timeline == "" {
		timeline = "Timeline"
	}
	return &Client{
		get:            get,
		spreadsheetID:  settings.SpreadsheetID,
		companiesSheet: companies,
		timelineSheet:  timeline,
		logger:         logger.WithComponent(log.ComponentSheets),
	}
}

func newSheetsService(ctx context.Context, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	if logger != nil {
		logger.WithComponent(log.ComponentSheets).InfoContext(ctx, "Creating Google Sheets service",
			"credentials_size", len(credentialsJSON),
			"scope", gsheet.SpreadsheetsReadonlyScope)
	}
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadDataset fetches both tabs concurrently and converts them to JSON lists.
func (c *Client) ReadDataset(ctx context.Context) (sources.RawDataset, error) {
	var companies, timeline [][]interface{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.get(gctx, c.spreadsheetID, c.companiesSheet+"!A:G")
		if err != nil {
			return fmt.Errorf("read %s: %w", c.companiesSheet, err)
		}
		companies = v
		return nil
	})
	g.Go(func() error {
		v, err := c.get(gctx, c.spreadsheetID, c.timelineSheet+"!A:H")
		if err != nil {
			return fmt.Errorf("read %s: %w", c.timelineSheet, err)
		}
		timeline = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return sources.RawDataset{}, err
	}

	entities, err := rowsToJSON(companies, entityColumns, nil)
	if err != nil {
		return sources.RawDataset{}, fmt.Errorf("convert %s: %w", c.companiesSheet, err)
	}
	points, err := rowsToJSON(timeline, timelineColumns, map[string]bool{"companies": true})
	if err != nil {
		return sources.RawDataset{}, fmt.Errorf("convert %s: %w", c.timelineSheet, err)
	}
	c.logger.DebugContext(ctx, "Read dataset from spreadsheet",
		log.FieldOperation, log.OpRead,
		log.FieldEntities, max(len(companies)-1, 0),
		log.FieldTimeline, max(len(timeline)-1, 0))
	return sources.RawDataset{Entities: entities, Timeline: points}, nil
}
