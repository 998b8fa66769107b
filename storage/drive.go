package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"ad-aid-platform/models"
)

// DriveStore keeps objects as files inside one Google Drive folder.
// The object path is used as the Drive file name.
type DriveStore struct {
	prefixer
	client   *drive.Service
	folderID string
	breaker  *gobreaker.CircuitBreaker[any]
}

// NewDriveStore creates a DriveStore authenticated with a Service Account.
// credentialsJSON takes precedence over credentialsPath when both are set.
func NewDriveStore(ctx context.Context, folderID, publicPrefix, credentialsPath, credentialsJSON string) (*DriveStore, error) {
	var opts []option.ClientOption
	switch {
	case credentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	case credentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	default:
		return nil, fmt.Errorf("drive store requires GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS_JSON")
	}
	return NewDriveStoreWithOptions(ctx, folderID, publicPrefix, opts...)
}

// NewDriveStoreWithOptions creates a DriveStore from raw client options
func NewDriveStoreWithOptions(ctx context.Context, folderID, publicPrefix string, opts ...option.ClientOption) (*DriveStore, error) {
	if folderID == "" {
		return nil, fmt.Errorf("drive store requires a folder id")
	}

	client, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "drive-store",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, models.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️  Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &DriveStore{
		prefixer: newPrefixer(publicPrefix),
		client:   client,
		folderID: folderID,
		breaker:  breaker,
	}, nil
}

// Ensure DriveStore implements ByteStore
var _ ByteStore = (*DriveStore)(nil)

// findFileID returns the Drive id of the file named name in the folder, or "" if absent
func (s *DriveStore) findFileID(ctx context.Context, name string) (string, error) {
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escaped, s.folderID)

	r, err := s.client.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to list files: %w", err)
	}
	if len(r.Files) == 0 {
		return "", nil
	}
	return r.Files[0].Id, nil
}

// Write uploads data, updating the existing file of the same name if there is one
func (s *DriveStore) Write(ctx context.Context, p string, data []byte) error {
	name, err := CleanPath(p)
	if err != nil {
		return err
	}

	_, err = s.breaker.Execute(func() (any, error) {
		fileID, err := s.findFileID(ctx, name)
		if err != nil {
			return nil, err
		}

		if fileID != "" {
			_, err = s.client.Files.Update(fileID, &drive.File{}).
				Media(bytes.NewReader(data)).
				Fields("id").
				Context(ctx).
				Do()
			if err != nil {
				return nil, fmt.Errorf("failed to update drive file %s: %w", fileID, err)
			}
			log.Printf("💾 Drive object updated: %s (id=%s, %d bytes)", name, fileID, len(data))
			return nil, nil
		}

		created, err := s.client.Files.Create(&drive.File{
			Name:    name,
			Parents: []string{s.folderID},
		}).
			Media(bytes.NewReader(data)).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to create drive file %s: %w", name, err)
		}
		log.Printf("💾 Drive object created: %s (id=%s, %d bytes)", name, created.Id, len(data))
		return nil, nil
	})
	return err
}

// Read downloads the file stored under p
func (s *DriveStore) Read(ctx context.Context, p string) ([]byte, error) {
	name, err := CleanPath(p)
	if err != nil {
		return nil, err
	}

	result, err := s.breaker.Execute(func() (any, error) {
		fileID, err := s.findFileID(ctx, name)
		if err != nil {
			return nil, err
		}
		if fileID == "" {
			return nil, fmt.Errorf("object %s: %w", name, models.ErrNotFound)
		}

		resp, err := s.client.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
				return nil, fmt.Errorf("object %s: %w", name, models.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to download drive file %s: %w", fileID, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read drive file %s: %w", fileID, err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Delete removes the file stored under p
func (s *DriveStore) Delete(ctx context.Context, p string) error {
	name, err := CleanPath(p)
	if err != nil {
		return err
	}

	_, err = s.breaker.Execute(func() (any, error) {
		fileID, err := s.findFileID(ctx, name)
		if err != nil || fileID == "" {
			return nil, err
		}
		if err := s.client.Files.Delete(fileID).Context(ctx).Do(); err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to delete drive file %s: %w", fileID, err)
		}
		log.Printf("🗑️  Drive object deleted: %s (id=%s)", name, fileID)
		return nil, nil
	})
	return err
}
