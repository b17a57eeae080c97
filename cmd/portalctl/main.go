// portalctl is an operator CLI for the portal admin API. It drives the same
// submission workflow the dashboard uses: a guarded two-step wizard for game
// uploads and an optimistic toggle for banner activation.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/adilzhan/gameportal/internal/uploader"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "upload":
		err = runUpload(ctx, os.Args[2:])
	case "toggle-banner":
		err = runToggleBanner(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  portalctl upload        submit a game through the upload wizard
  portalctl toggle-banner flip a banner's active flag`)
}

func runUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	baseURL := fs.String("base-url", envOr("PORTAL_API_URL", "http://localhost:8080/v1"), "API base URL")
	session := fs.String("session", os.Getenv("PORTAL_SESSION_TOKEN"), "session cookie value")
	gameID := fs.String("game-id", "", "existing game id; leave empty to create")
	name := fs.String("name", "", "game name")
	description := fs.String("description", "", "game description")
	categories := fs.String("categories", "", "comma separated category names")
	size := fs.String("size", "medium", "grid size: small, medium or large")
	thumbnail := fs.String("thumbnail", "", "thumbnail image file")
	icon := fs.String("icon", "", "icon image file")
	preview := fs.String("gif", "", "animated preview file")
	archive := fs.String("zip", "", "game build zip archive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var draft *uploader.Draft
	if *gameID != "" {
		draft = uploader.NewEditDraft(*gameID)
	} else {
		draft = uploader.NewDraft()
	}
	draft.Metadata = uploader.Metadata{
		Name:        *name,
		Description: *description,
		Categories:  splitCategories(*categories),
		Size:        *size,
	}

	slots := map[uploader.Slot]string{
		uploader.SlotThumbnail: *thumbnail,
		uploader.SlotIcon:      *icon,
		uploader.SlotPreview:   *preview,
		uploader.SlotArchive:   *archive,
	}
	for slot, path := range slots {
		if path == "" {
			continue
		}
		file, err := fileFromDisk(path)
		if err != nil {
			return err
		}
		draft.SetFile(slot, file)
	}

	client := uploader.NewClient(uploader.Config{
		BaseURL:      *baseURL,
		SessionToken: *session,
	})
	wizard := uploader.NewWizard(client, draft, uploader.WizardConfig{
		SuccessDelay: time.Millisecond,
		OnProgress: func(p uploader.Progress) {
			fmt.Printf("  %3d%%  %s\n", p.Percent, p.Phase)
		},
	})

	if !wizard.Next() {
		printFieldErrors("file check failed", wizard.Errors())
		return fmt.Errorf("draft is not submittable")
	}

	record, err := wizard.Submit(ctx)
	if err != nil {
		if ue := uploader.AsError(err); ue != nil && len(ue.Fields) > 0 {
			printFieldErrors(ue.Message, ue.Fields)
			return fmt.Errorf("submission rejected")
		}
		return err
	}

	fmt.Printf("saved %q as /games/%s\n", record.Name, record.Slug)
	return nil
}

func runToggleBanner(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("toggle-banner", flag.ExitOnError)
	baseURL := fs.String("base-url", envOr("PORTAL_API_URL", "http://localhost:8080/v1"), "API base URL")
	session := fs.String("session", os.Getenv("PORTAL_SESSION_TOKEN"), "session cookie value")
	bannerID := fs.String("id", "", "banner id")
	active := fs.Bool("active", true, "desired active state")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *bannerID == "" {
		return fmt.Errorf("banner id is required")
	}

	toggle := uploader.NewTwoPhase(!*active)
	toggle.Apply(*active)

	err := toggle.Confirm(ctx, func(ctx context.Context, state bool) error {
		return patchBannerActive(ctx, *baseURL, *session, *bannerID, state)
	})
	if err != nil {
		fmt.Printf("banner %s stays %s\n", *bannerID, activeWord(toggle.Value()))
		return err
	}

	fmt.Printf("banner %s is now %s\n", *bannerID, activeWord(toggle.Value()))
	return nil
}

func patchBannerActive(ctx context.Context, baseURL, session, bannerID string, active bool) error {
	body, err := json.Marshal(map[string]bool{"active": active})
	if err != nil {
		return err
	}

	url := strings.TrimRight(baseURL, "/") + "/admin/banners/" + bannerID + "/active"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "portal_session", Value: session})
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env struct {
			Message string `json:"message"`
		}
		json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&env)
		if env.Message != "" {
			return fmt.Errorf("api: %s", env.Message)
		}
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}
	return nil
}

func fileFromDisk(path string) (*uploader.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	return &uploader.File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func splitCategories(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printFieldErrors(header string, fields map[string]string) {
	if header == "" {
		header = "validation failed"
	}
	fmt.Fprintln(os.Stderr, header+":")
	for field, message := range fields {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", field, message)
	}
}

func activeWord(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
