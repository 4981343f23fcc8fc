package minio

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/dtroode/cohort-migrator/internal/model"
)

var _ model.AuditArchive = (*Client)(nil)

// ArchiveKey is the object key of an archived run report.
func ArchiveKey(entry model.AuditEntry) string {
	name := fmt.Sprintf("%s-%s-%s.json", entry.CreatedAt.UTC().Format("20060102T150405Z"), entry.Action, entry.ID)
	return path.Join("audit", entry.Cohort, name)
}

// Archive stores the full report payload of entry.
func (c *Client) Archive(ctx context.Context, entry model.AuditEntry) error {
	_, err := c.api.PutObject(ctx, c.bucket, ArchiveKey(entry), bytes.NewReader(entry.Payload), int64(len(entry.Payload)),
		minio.PutObjectOptions{
			ContentType: "application/json",
			UserMetadata: map[string]string{
				"cohort":   entry.Cohort,
				"action":   string(entry.Action),
				"executor": entry.Executor,
			},
		})
	if err != nil {
		return fmt.Errorf("failed to archive audit entry: %w", err)
	}
	return nil
}
