package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	sc "github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportResult points at an uploaded journal export.
type ExportResult struct {
	Key       string
	URL       string
	Entries   int
	ExpiresAt time.Time
}

type exportEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Persona   string    `json:"persona"`
	Summary   *string   `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type exportDocument struct {
	Subject    string        `json:"subject"`
	ExportedAt time.Time     `json:"exported_at"`
	Entries    []exportEntry `json:"entries"`
}

// ExportService uploads a subject's whole journal to object storage and
// hands back a time-limited download link. It requires the offline-journal
// feature.
type ExportService struct {
	entries      *EntryService
	entitlements *EntitlementService
	config       *sc.Config
	logger       logging.Logger
	now          func() time.Time
}

func NewExportService(e *EntryService, ent *EntitlementService, cfg *sc.Config, l logging.Logger) *ExportService {
	return &ExportService{
		entries:      e,
		entitlements: ent,
		config:       cfg,
		logger:       l.With("module", "export"),
		now:          time.Now,
	}
}

func GetRandomStorageKey(now time.Time) string {
	return fmt.Sprintf("exports/%04d/%02d/%02d/%v.json", now.Year(), int(now.Month()), now.Day(), uuid.New())
}

func (s *ExportService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *ExportService) Export(ctx context.Context, subject string) (*ExportResult, error) {
	ok, err := s.entitlements.IsEntitled(ctx, subject, catalog.OfflineJournal)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrFeatureLocked, catalog.OfflineJournal)
	}

	list, err := s.entries.ListAll(ctx, subject)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := exportDocument{Subject: subject, ExportedAt: now, Entries: make([]exportEntry, 0, len(list))}
	for _, e := range list {
		doc.Entries = append(doc.Entries, exportEntry{
			ID: e.ID, Text: e.Text, Persona: e.Persona, Summary: e.Summary, CreatedAt: e.CreatedAt,
		})
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal export: %w", common.ErrInternal, err)
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrObjectStoreUnavailable, err)
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(now)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("%w: put object: %w", common.ErrObjectStoreUnavailable, err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ExportURLTTL))
	if err != nil {
		return nil, fmt.Errorf("%w: presign: %w", common.ErrObjectStoreUnavailable, err)
	}

	s.logger.Info(ctx, "journal exported", "subject", subject, "key", key, "entries", len(list))
	return &ExportResult{
		Key:       key,
		URL:       req.URL,
		Entries:   len(list),
		ExpiresAt: now.Add(s.config.ExportURLTTL),
	}, nil
}
