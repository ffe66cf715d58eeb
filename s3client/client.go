package s3client

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"text2phenotype.com/negex/logger"
)

var (
	clientLogger = logger.NewLogger("S3Client")
	sdkLogger    = logger.NewLogger("S3-SDK")

	ErrNoSession = errors.New("s3client: could not initialize session")
)

type EnvironmentConfig struct {
	BucketName  string `envconfig:"MDL_COMN_STORAGE_CONTAINER_NAME" required:"true"`
	T2PEnv      string `envconfig:"T2P_ENV" required:"true"`
	Region      string `envconfig:"MDL_COMN_AWS_REGION_NAME" required:"true"`
	AwsEndpoint string `envconfig:"MDL_COMN_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"MDL_COMN_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"MDL_COMN_AWS_ACCESS_KEY" default:""`
}

// Client reads and writes objects of one bucket. A failed call refreshes the
// session once and is retried.
type Client struct {
	mu   sync.Mutex
	sess *session.Session
	env  EnvironmentConfig
}

func New() (*Client, error) {
	var env EnvironmentConfig
	if err := envconfig.Process("", &env); err != nil {
		clientLogger.Err(err).Caller().Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := &Client{env: env}
	if _, err := client.refresh(); err != nil {
		return nil, err
	}
	return client, nil
}

func (client *Client) Upload(data []byte, key string) (*s3manager.UploadOutput, error) {
	var output *s3manager.UploadOutput
	err := client.withSession(key, func(sess *session.Session, log zerolog.Logger) error {
		uploader := s3manager.NewUploader(sess)
		log.Debug().Int("size", len(data)).Msg("Uploading the file")
		var err error
		output, err = uploader.Upload(&s3manager.UploadInput{
			Bucket: aws.String(client.env.BucketName),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
		return err
	})
	return output, err
}

func (client *Client) Download(key string) ([]byte, error) {
	var result []byte
	err := client.withSession(key, func(sess *session.Session, log zerolog.Logger) error {
		downloader := s3manager.NewDownloader(sess)
		buf := aws.NewWriteAtBuffer([]byte{})
		log.Debug().Msg("Downloading file")
		size, err := downloader.Download(buf, &s3.GetObjectInput{
			Bucket: aws.String(client.env.BucketName),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		log.Debug().Msgf("Downloaded %v bytes", size)
		result = buf.Bytes()
		return nil
	})
	return result, err
}

func (client *Client) Close() {
	client.mu.Lock()
	client.sess = nil
	client.mu.Unlock()
}

func (client *Client) withSession(key string, call func(sess *session.Session, log zerolog.Logger) error) error {
	log := clientLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()
	sdkLog := sdkLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()

	client.mu.Lock()
	sess := client.sess
	client.mu.Unlock()
	if sess == nil {
		return ErrNoSession
	}

	err := call(sess.Copy(&aws.Config{Logger: sdkLoggerAdapter{sdkLog}}), log)
	if err == nil {
		return nil
	}
	log.Error().Err(err).Msg("Caught error while using S3 session, trying to refresh it")
	sess, refreshErr := client.refresh()
	if refreshErr != nil {
		return fmt.Errorf("%v (session refresh: %w)", err, refreshErr)
	}
	return call(sess.Copy(&aws.Config{Logger: sdkLoggerAdapter{sdkLog}}), log)
}

// refresh tries the instance role first and falls back to credentials from
// the environment.
func (client *Client) refresh() (*session.Session, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	sess, err := session.NewSession(client.instanceConfig())
	if err == nil {
		if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err == nil {
			client.sess = sess
			clientLogger.Info().Msg("S3 session successfully initialized using EC2")
			return sess, nil
		}
	}
	clientLogger.Info().Err(err).Msg("Could not initialize S3 session using EC2, trying env credentials")

	sess, err = session.NewSession(client.envConfig())
	if err == nil {
		_, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{})
	}
	if err != nil {
		client.sess = nil
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, ErrNoSession
	}
	client.sess = sess
	clientLogger.Info().Msg("S3 session successfully initialized using env credentials")
	return sess, nil
}

func (client *Client) instanceConfig() *aws.Config {
	return aws.NewConfig().
		WithRegion(client.env.Region).
		WithMaxRetries(4).
		WithLogLevel(aws.LogDebug)
}

func (client *Client) envConfig() *aws.Config {
	cfg := aws.NewConfig().
		WithRegion(client.env.Region).
		WithMaxRetries(4).
		WithCredentials(credentials.NewStaticCredentials(client.env.AccessKeyID, client.env.AccessKey, "")).
		WithLogLevel(aws.LogDebug)

	if client.env.T2PEnv == "dev" && len(client.env.AwsEndpoint) > 0 {
		cfg = cfg.WithEndpoint(client.env.AwsEndpoint).WithS3ForcePathStyle(true)
	}
	return cfg
}

type sdkLoggerAdapter struct {
	log zerolog.Logger
}

func (adapter sdkLoggerAdapter) Log(v ...interface{}) {
	adapter.log.Debug().Msg(fmt.Sprint(v...))
}
