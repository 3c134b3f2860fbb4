// Package recordings archives provider call recordings into object storage.
package recordings

import (
	"context"
	"fmt"

	"crm_backend/internal/adapters/storage"
	callsservice "crm_backend/internal/calls/service"
	"crm_backend/internal/telephony"
	"crm_backend/platform/logger"
)

// Archiver downloads recording media from the telephony provider and uploads
// it to the recordings bucket. The provider keeps media for a limited
// retention window, so we copy it into our own storage on webhook delivery.
type Archiver struct {
	client  *telephony.Client
	storage storage.StorageService
	bucket  string
	log     *logger.Logger
}

// NewArchiver creates an archiver writing into the given bucket.
func NewArchiver(client *telephony.Client, store storage.StorageService, bucket string, log *logger.Logger) *Archiver {
	return &Archiver{client: client, storage: store, bucket: bucket, log: log}
}

// Archive fetches the recording and stores it under a key derived from the
// provider call ID. Returns the object key of the stored copy.
func (a *Archiver) Archive(ctx context.Context, providerCallID, recordingURL string) (string, error) {
	body, contentType, err := a.client.FetchRecording(ctx, recordingURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch recording for call %s: %w", providerCallID, err)
	}
	defer body.Close()

	fileName := fmt.Sprintf("%s%s", providerCallID, extensionFor(contentType))

	// Size is unknown for streamed provider downloads; -1 lets the storage
	// client use multipart upload.
	key, err := a.storage.UploadStream(ctx, a.bucket, "recordings", fileName, contentType, body, -1)
	if err != nil {
		return "", fmt.Errorf("failed to store recording for call %s: %w", providerCallID, err)
	}

	a.log.Info("archived call recording",
		"provider_call_id", providerCallID,
		"bucket", a.bucket,
		"object_key", key)

	return key, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".bin"
	}
}

var _ callsservice.RecordingArchiver = (*Archiver)(nil)
