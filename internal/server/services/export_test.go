package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	sc "github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exportFixture struct {
	entries      *EntryService
	entitlements *EntitlementService
	export       *ExportService
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	db, m := newStore(t)
	cat := catalog.Default()
	ent := NewEntitlementService(db, m, cat)
	entries := NewEntryService(db, m, cat, ent, &fakeSummarizer{out: "s"}, time.Second, logging.Nop())
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return &exportFixture{
		entries:      entries,
		entitlements: ent,
		export:       NewExportService(entries, ent, cfg, logging.Nop()),
	}
}

// stubS3 replaces the AWS seams for the duration of the test and returns a
// pointer to the captured upload body.
func stubS3(t *testing.T, putErr, presignErr error) *[]byte {
	t.Helper()
	origLoad, origNew, origPre, origPut, origPresign := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, putObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, putObject, presignGetObject = origLoad, origNew, origPre, origPut, origPresign
	})

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		require.NotNil(t, c)
		return &s3.PresignClient{}
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return &s3.Client{}
	}

	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		if putErr != nil {
			return nil, putErr
		}
		assert.Equal(t, "journal-exports", *in.Bucket)
		assert.Equal(t, "application/json", *in.ContentType)
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		body = b
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if presignErr != nil {
			return nil, presignErr
		}
		return &v4.PresignedHTTPRequest{URL: "https://s3.example/" + *in.Key + "?sig=1"}, nil
	}
	return &body
}

func TestExport_RequiresOfflineJournal(t *testing.T) {
	f := newExportFixture(t)
	stubS3(t, nil, nil)

	_, err := f.export.Export(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrFeatureLocked)
}

func TestExport_UploadsAndPresigns(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	body := stubS3(t, nil, nil)

	require.NoError(t, f.entitlements.SetUnlocked(ctx, "u1", catalog.OfflineJournal))
	for _, text := range []string{"one", "two"} {
		_, err := f.entries.CreateEntry(ctx, "u1", text, "stoic")
		require.NoError(t, err)
	}

	res, err := f.export.Export(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Entries)
	assert.Regexp(t, regexp.MustCompile(`^exports/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}\.json$`), res.Key)
	assert.Contains(t, res.URL, res.Key)

	var doc exportDocument
	require.NoError(t, json.Unmarshal(*body, &doc))
	assert.Equal(t, "u1", doc.Subject)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "two", doc.Entries[0].Text)
}

func TestExport_LifetimeAlsoGrantsExport(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	stubS3(t, nil, nil)
	require.NoError(t, f.entitlements.SetUnlocked(ctx, "u1", catalog.Lifetime))

	res, err := f.export.Export(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Entries)
}

func TestExport_ObjectStoreFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("put", func(t *testing.T) {
		f := newExportFixture(t)
		stubS3(t, errors.New("bucket gone"), nil)
		require.NoError(t, f.entitlements.SetUnlocked(ctx, "u1", catalog.OfflineJournal))
		_, err := f.export.Export(ctx, "u1")
		assert.ErrorIs(t, err, common.ErrObjectStoreUnavailable)
	})

	t.Run("presign", func(t *testing.T) {
		f := newExportFixture(t)
		stubS3(t, nil, errors.New("no creds"))
		require.NoError(t, f.entitlements.SetUnlocked(ctx, "u1", catalog.OfflineJournal))
		_, err := f.export.Export(ctx, "u1")
		assert.ErrorIs(t, err, common.ErrObjectStoreUnavailable)
	})

	t.Run("config", func(t *testing.T) {
		f := newExportFixture(t)
		stubS3(t, nil, nil)
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("load-fail")
		}
		require.NoError(t, f.entitlements.SetUnlocked(ctx, "u1", catalog.OfflineJournal))
		_, err := f.export.Export(ctx, "u1")
		assert.ErrorIs(t, err, common.ErrObjectStoreUnavailable)
	})
}

func TestGetRandomStorageKey(t *testing.T) {
	k := GetRandomStorageKey(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^exports/2025/02/03/`, k)
	assert.NotEqual(t, k, GetRandomStorageKey(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)))
}
