package notesync

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"echotrail/config"
	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

const defaultTimeout = 15 * time.Second

// Client fetches the caller's reachable notes from the remote note API
// and normalizes them into local entities.
type Client struct {
	baseURL   string
	authToken string
	http      *http.Client
	logger    *slog.Logger
}

// New creates a note API client from configuration
func New(cfg *config.NoteSyncConfig, logger *slog.Logger) service.NoteSource {
	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		authToken: cfg.AuthToken,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// FetchNotes calls GET {baseURL}/notes and decodes the response. Notes
// that fail validation are dropped individually rather than failing the
// whole sync.
func (c *Client) FetchNotes(ctx context.Context) ([]*entity.Note, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/notes", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build note request")
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch notes")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("note API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read note response")
	}

	return c.decodeNotes(ctx, body)
}

// decodeNotes turns the response body into entities. One bad note must
// not starve the cache of all the others, so per-note failures are
// logged and skipped; only an unparseable body fails the sync.
func (c *Client) decodeNotes(ctx context.Context, body []byte) ([]*entity.Note, error) {
	var raw []remoteNote
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "decode note response")
	}

	notes := make([]*entity.Note, 0, len(raw))
	for _, n := range raw {
		note, err := n.toEntity()
		if err == nil {
			err = note.Validate()
		}
		if err != nil {
			c.logger.WarnContext(ctx, "dropping invalid note from sync",
				slog.String("noteId", n.ID),
				slog.String("error", err.Error()))
			continue
		}
		notes = append(notes, note)
	}

	return notes, nil
}

// remoteNote accepts both note shapes the API has served over time: the
// current one with a GeoJSON Point under "location" and a "range" radius,
// and the older flat one with "latitude"/"longitude" and "radius". The
// two are normalized here, at the boundary, so nothing downstream ever
// sees the difference.
type remoteNote struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	FileName    string            `json:"file_name"`
	Location    *geojson.Geometry `json:"location"`
	Range       float64           `json:"range"`
	HiddenUntil *string           `json:"hidden_until"`
	CreatedAt   *time.Time        `json:"created_at"`

	// Legacy flat shape.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    float64  `json:"radius"`
}

func (n remoteNote) toEntity() (*entity.Note, error) {
	note := &entity.Note{
		ID:           n.ID,
		Title:        n.Title,
		AudioFile:    n.FileName,
		RadiusMeters: n.Range,
	}
	if note.RadiusMeters == 0 {
		note.RadiusMeters = n.Radius
	}

	switch {
	case n.Location != nil:
		point, ok := n.Location.Geometry().(orb.Point)
		if !ok {
			return nil, errors.Errorf("note %s location is not a point", n.ID)
		}
		// GeoJSON positions are [lon, lat]
		note.Longitude = point.Lon()
		note.Latitude = point.Lat()
	case n.Latitude != nil && n.Longitude != nil:
		note.Latitude = *n.Latitude
		note.Longitude = *n.Longitude
	default:
		return nil, errors.Errorf("note %s carries no location", n.ID)
	}

	if n.HiddenUntil != nil && *n.HiddenUntil != "" {
		hiddenUntil, err := time.Parse(time.RFC3339, *n.HiddenUntil)
		if err != nil {
			return nil, errors.Wrapf(err, "parse hidden_until for note %s", n.ID)
		}
		note.HiddenUntil = &hiddenUntil
	}

	if n.CreatedAt != nil {
		note.CreatedAt = *n.CreatedAt
	}

	return note, nil
}
