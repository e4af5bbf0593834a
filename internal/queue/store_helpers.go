package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, title, prompt, status, editor_url, downloaded_file, edited_file, final_file, source_ref, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, metadata_json, last_heartbeat, stock_matched"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		title            sql.NullString
		prompt           sql.NullString
		statusStr        string
		editorURL        sql.NullString
		downloadedFile   sql.NullString
		editedFile       sql.NullString
		finalFile        sql.NullString
		sourceRef        sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		metadata         sql.NullString
		lastHeartbeatRaw sql.NullString
		stockMatched     sql.NullInt64
	)

	if err := scanner.Scan(
		&id,
		&title,
		&prompt,
		&statusStr,
		&editorURL,
		&downloadedFile,
		&editedFile,
		&finalFile,
		&sourceRef,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&metadata,
		&lastHeartbeatRaw,
		&stockMatched,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		Title:           title.String,
		Prompt:          prompt.String,
		Status:          Status(statusStr),
		EditorURL:       editorURL.String,
		DownloadedFile:  downloadedFile.String,
		EditedFile:      editedFile.String,
		FinalFile:       finalFile.String,
		SourceRef:       sourceRef.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		MetadataJSON:    metadata.String,
	}
	if stockMatched.Valid {
		item.StockMatched = stockMatched.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
