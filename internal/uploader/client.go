package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultUploadTimeout   = 60 * time.Second
	defaultMetadataTimeout = 30 * time.Second
	defaultCookieName      = "portal_session"
)

// Config wires a Client to a portal API instance.
type Config struct {
	// BaseURL is the API root, e.g. "https://portal.example.com/v1".
	BaseURL string
	// SessionToken is placed in the session cookie on every request.
	SessionToken string
	// CookieName defaults to the server's session cookie name.
	CookieName string

	// UploadTimeout bounds the binary upload request; defaults to 60s.
	UploadTimeout time.Duration
	// MetadataTimeout bounds the record save request; defaults to 30s.
	MetadataTimeout time.Duration

	Limits Limits

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// GameRecord is the saved record the API returns after a successful submit.
type GameRecord struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	Size          string   `json:"size"`
	ThumbnailPath string   `json:"thumbnail_path"`
	IconPath      string   `json:"icon_path"`
	PreviewPath   string   `json:"preview_path"`
	PlayPath      string   `json:"play_path"`
	Active        bool     `json:"active"`
	ThumbnailURL  string   `json:"thumbnail_url"`
	IconURL       string   `json:"icon_url"`
	PreviewURL    string   `json:"preview_url"`
	PlayURL       string   `json:"play_url"`
}

// Client runs the submission workflow against the portal API. A client
// allows one submission at a time; concurrent Submit calls beyond the first
// fail fast with ErrSubmissionInFlight.
type Client struct {
	cfg      Config
	http     *http.Client
	inFlight atomic.Bool
}

// NewClient returns a configured client. Missing timeouts and the cookie
// name take their defaults.
func NewClient(cfg Config) *Client {
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	if cfg.MetadataTimeout <= 0 {
		cfg.MetadataTimeout = defaultMetadataTimeout
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, http: httpClient}
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

// Submit runs the full workflow: validate the draft, upload pending
// binaries, then save the record. A validation failure never touches the
// network. When the save step fails, the uploaded paths stay staged on the
// draft so a retry resumes at the save.
func (c *Client) Submit(ctx context.Context, draft *Draft, onProgress ProgressFunc) (*GameRecord, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	track := newProgressTracker(onProgress)
	track.report(PhaseValidating, 0)

	if fields := ValidateDraft(draft, c.cfg.Limits); len(fields) > 0 {
		track.report(PhaseFailed, 0)
		return nil, validationError(fields)
	}

	track.report(PhaseUploading, 30)
	if err := c.uploadPending(ctx, draft); err != nil {
		track.report(PhaseFailed, 30)
		return nil, err
	}
	track.report(PhaseUploading, 60)

	payload, err := json.Marshal(c.buildPayload(draft))
	if err != nil {
		track.report(PhaseFailed, 60)
		return nil, &Error{Kind: MetadataSaveFailed, Message: "could not encode record", Err: err}
	}
	track.report(PhaseSubmitting, 80)

	record, err := c.saveRecord(ctx, draft, payload)
	if err != nil {
		track.report(PhaseFailed, 80)
		return nil, err
	}

	track.report(PhaseSucceeded, 100)
	return record, nil
}

// uploadPending sends every assigned file that has no staged path yet and
// records the returned storage paths on the draft.
func (c *Client) uploadPending(ctx context.Context, draft *Draft) error {
	pending := draft.pendingSlots()
	if len(pending) == 0 {
		return nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, slot := range pending {
		file := draft.Files[slot]
		part, err := writer.CreateFormFile(string(slot), file.Name)
		if err != nil {
			return &Error{Kind: AssetUploadFailed, Message: "could not build upload request", Err: err}
		}
		reader, err := file.Open()
		if err != nil {
			return &Error{Kind: AssetUploadFailed, Message: fmt.Sprintf("could not read %s", file.Name), Err: err}
		}
		_, copyErr := io.Copy(part, reader)
		reader.Close()
		if copyErr != nil {
			return &Error{Kind: AssetUploadFailed, Message: fmt.Sprintf("could not read %s", file.Name), Err: copyErr}
		}
	}
	if err := writer.Close(); err != nil {
		return &Error{Kind: AssetUploadFailed, Message: "could not build upload request", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/admin/uploads", body)
	if err != nil {
		return &Error{Kind: AssetUploadFailed, Message: "could not build upload request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.attachSession(req)

	env, status, err := c.do(req)
	if err != nil {
		return &Error{Kind: AssetUploadFailed, Message: "upload request failed", Err: err}
	}
	if status == http.StatusUnauthorized {
		return &Error{Kind: AuthenticationExpired, Message: "session expired"}
	}
	if status < 200 || status > 299 || !env.Success {
		return &Error{Kind: AssetUploadFailed, Message: failureMessage(env, "upload rejected")}
	}

	var results map[Slot]StagedAsset
	if err := json.Unmarshal(env.Data, &results); err != nil {
		return &Error{Kind: AssetUploadFailed, Message: "unexpected upload response", Err: err}
	}
	for _, slot := range pending {
		asset, ok := results[slot]
		if !ok || asset.Path == "" {
			return &Error{Kind: AssetUploadFailed, Message: fmt.Sprintf("no stored path returned for %s", slot)}
		}
		draft.Staged[slot] = asset
	}
	return nil
}

type recordPayload struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	Size          string   `json:"size"`
	ThumbnailPath string   `json:"thumbnail_path,omitempty"`
	IconPath      string   `json:"icon_path,omitempty"`
	PreviewPath   string   `json:"preview_path,omitempty"`
	PlayPath      string   `json:"play_path,omitempty"`
}

// buildPayload assembles the record save body from the draft metadata and
// the staged storage paths. Slots without a staged path are omitted so an
// edit keeps the stored assets.
func (c *Client) buildPayload(draft *Draft) recordPayload {
	p := recordPayload{
		Name:        strings.TrimSpace(draft.Metadata.Name),
		Description: strings.TrimSpace(draft.Metadata.Description),
		Categories:  draft.Metadata.Categories,
		Size:        draft.Metadata.Size,
	}
	if asset, ok := draft.Staged[SlotThumbnail]; ok {
		p.ThumbnailPath = asset.Path
	}
	if asset, ok := draft.Staged[SlotIcon]; ok {
		p.IconPath = asset.Path
	}
	if asset, ok := draft.Staged[SlotPreview]; ok {
		p.PreviewPath = asset.Path
	}
	if asset, ok := draft.Staged[SlotArchive]; ok {
		p.PlayPath = asset.Path
	}
	return p
}

func (c *Client) saveRecord(ctx context.Context, draft *Draft, payload []byte) (*GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.MetadataTimeout)
	defer cancel()

	method := http.MethodPost
	url := c.cfg.BaseURL + "/admin/games"
	if draft.IsEdit() {
		method = http.MethodPut
		url += "/" + draft.GameID
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: MetadataSaveFailed, Message: "could not build save request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachSession(req)

	env, status, err := c.do(req)
	if err != nil {
		return nil, &Error{Kind: MetadataSaveFailed, Message: "save request failed", Err: err}
	}
	if status == http.StatusUnauthorized {
		return nil, &Error{Kind: AuthenticationExpired, Message: "session expired"}
	}
	if status < 200 || status > 299 || !env.Success {
		return nil, &Error{
			Kind:    MetadataSaveFailed,
			Message: failureMessage(env, "save rejected"),
			Fields:  env.Errors,
		}
	}

	var record GameRecord
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return nil, &Error{Kind: MetadataSaveFailed, Message: "unexpected save response", Err: err}
	}
	return &record, nil
}

func (c *Client) attachSession(req *http.Request) {
	if c.cfg.SessionToken == "" {
		return
	}
	req.AddCookie(&http.Cookie{Name: c.cfg.CookieName, Value: c.cfg.SessionToken})
}

func (c *Client) do(req *http.Request) (envelope, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		// Some failure statuses carry no body worth parsing.
		return envelope{}, resp.StatusCode, nil
	}
	return env, resp.StatusCode, nil
}

func failureMessage(env envelope, fallback string) string {
	if env.Message != "" {
		return env.Message
	}
	return fallback
}
