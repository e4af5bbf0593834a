package uploading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/stage"
)

const defaultUploadEndpoint = "https://www.googleapis.com/upload/youtube/v3/videos"

// Uploader publishes edited videos and files the local copy into the library.
type Uploader struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service
	client   *http.Client
	endpoint string
}

// NewUploader constructs the upload stage handler.
func NewUploader(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Uploader {
	return NewUploaderWithEndpoint(cfg, store, logger, notifier, defaultUploadEndpoint)
}

// NewUploaderWithEndpoint allows pointing the uploader at a test server.
func NewUploaderWithEndpoint(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, endpoint string) *Uploader {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "uploading"))
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Uploader{
		cfg:      cfg,
		store:    store,
		logger:   stageLogger,
		notifier: notifier,
		client:   &http.Client{Timeout: 10 * time.Minute},
		endpoint: endpoint,
	}
}

func (u *Uploader) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, u.logger)
	source := uploadSource(item)
	if source == "" {
		return services.Wrap(
			services.ErrValidation,
			"uploading",
			"validate inputs",
			"No edited or downloaded file present for upload; run export before uploading",
			nil,
		)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"uploading",
			"validate inputs",
			fmt.Sprintf("Upload source missing on disk: %s", source),
			err,
		)
	}
	item.InitProgress("Uploading", "Preparing upload")
	logger.Info("starting upload preparation", logging.String("file", source))
	return nil
}

func (u *Uploader) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, u.logger)
	source := uploadSource(item)

	var videoURL string
	if u.cfg.Upload.Enabled {
		id, err := u.upload(ctx, logger, item, source)
		if err != nil {
			return err
		}
		videoURL = "https://youtu.be/" + id
		logger.Info("upload completed", logging.String("video_url", videoURL))
	} else {
		logger.Info("upload disabled, filing video locally only")
	}

	item.SetProgress("Uploading", "Filing into library", 90)
	final, err := u.fileIntoLibrary(item, source)
	if err != nil {
		return services.Wrap(services.ErrTransient, "uploading", "move to library", "Could not move the video into library_dir; check permissions", err)
	}
	item.FinalFile = final

	item.SetProgressComplete("Uploading", "Upload complete")
	if videoURL != "" {
		if err := u.notifier.NotifyUploadCompleted(ctx, item.Title, videoURL); err != nil {
			logger.Warn("upload notification failed", logging.Error(err))
		}
	}
	return nil
}

// upload runs the two-leg resumable protocol: open a session with the video
// metadata, then stream the file to the returned session URL.
func (u *Uploader) upload(ctx context.Context, logger *slog.Logger, item *queue.Item, source string) (string, error) {
	token, err := u.loadToken()
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "uploading", "load token", "Upload token unreadable; re-run the YouTube authorization flow", err)
	}
	if !token.Valid() {
		return "", services.Wrap(services.ErrConfiguration, "uploading", "load token", "Upload token expired; re-run the YouTube authorization flow", nil)
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "uploading", "stat source", "Upload source vanished", err)
	}

	meta := BuildMetadata(item, u.cfg.Upload)
	body, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	item.SetProgress("Uploading", "Opening upload session", 10)
	sessionURL, err := u.openSession(ctx, token, body, info.Size())
	if err != nil {
		return "", err
	}

	item.SetProgress("Uploading", "Uploading video", 30)
	logger.Info("uploading video",
		logging.String("title", meta.Snippet.Title),
		logging.Int64("bytes", info.Size()),
	)
	return u.sendFile(ctx, token, sessionURL, source, info.Size())
}

func (u *Uploader) openSession(ctx context.Context, token Token, metadata []byte, size int64) (string, error) {
	url := u.endpoint + "?uploadType=resumable&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(metadata))
	if err != nil {
		return "", fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Type", "video/mp4")
	req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(size, 10))

	resp, err := u.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "uploading", "open session", "YouTube session request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", uploadAPIError("open session", resp)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", services.Wrap(services.ErrExternalTool, "uploading", "open session", "YouTube did not return an upload session URL", nil)
	}
	return location, nil
}

func (u *Uploader) sendFile(ctx context.Context, token Token, sessionURL, source string, size int64) (string, error) {
	file, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, file)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "video/mp4")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "uploading", "send file", "YouTube upload request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", uploadAPIError("send file", resp)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.ID == "" {
		return "", services.Wrap(services.ErrExternalTool, "uploading", "send file", "YouTube response carried no video ID", nil)
	}
	return result.ID, nil
}

// fileIntoLibrary moves the final video into library_dir under the item's
// published title.
func (u *Uploader) fileIntoLibrary(item *queue.Item, source string) (string, error) {
	name := VideoTitle(item.Title) + filepath.Ext(source)
	dest := fileutil.UniquePath(filepath.Join(u.cfg.Paths.LibraryDir, name))
	if err := fileutil.MoveFile(source, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (u *Uploader) HealthCheck(ctx context.Context) stage.Health {
	_ = ctx
	if !u.cfg.Upload.Enabled {
		return stage.Healthy("uploading")
	}
	token, err := u.loadToken()
	if err != nil {
		return stage.Unhealthy("uploading", "token file unreadable")
	}
	if !token.Valid() {
		return stage.Unhealthy("uploading", "token expired")
	}
	return stage.Healthy("uploading")
}

func (u *Uploader) loadToken() (Token, error) {
	path, err := config.ExpandPath(u.cfg.Upload.TokenFile)
	if err != nil {
		return Token{}, err
	}
	return LoadToken(path)
}

func uploadSource(item *queue.Item) string {
	if strings.TrimSpace(item.EditedFile) != "" {
		return item.EditedFile
	}
	return strings.TrimSpace(item.DownloadedFile)
}

func uploadAPIError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	marker := services.ErrExternalTool
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		marker = services.ErrConfiguration
	}
	return services.Wrap(
		marker,
		"uploading",
		operation,
		fmt.Sprintf("YouTube returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		nil,
	)
}
