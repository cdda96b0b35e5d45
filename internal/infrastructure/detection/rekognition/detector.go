package rekognition

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"golang.org/x/time/rate"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

type Config struct {
	Region    string
	AccessKey string
	SecretKey string
}

// Connect builds a Rekognition client with the same credential wiring as the
// object store: static keys when configured, anonymous otherwise.
func Connect(cfg Config) *rekognition.Client {
	return rekognition.NewFromConfig(awsConfig(cfg))
}

func awsConfig(cfg Config) aws.Config {
	out := aws.Config{Region: cfg.Region}
	if cfg.AccessKey != "" {
		out.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}
	return out
}

// Detector adapts Amazon Rekognition to the label-detector port. Detection
// calls are rate limited below the account's TPS quota so a large sweep
// cannot trip provider throttling.
type Detector struct {
	client  *rekognition.Client
	limiter *rate.Limiter

	// Channel the provider notifies on asynchronous job completion.
	topicARN string
	roleARN  string
}

func New(client *rekognition.Client, topicARN, roleARN string, callsPerSecond float64) *Detector {
	if callsPerSecond <= 0 {
		callsPerSecond = 5
	}
	return &Detector{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(callsPerSecond), 1),
		topicARN: topicARN,
		roleARN:  roleARN,
	}
}

func (d *Detector) DetectSync(ctx context.Context, loc domain.ObjectLocation) ([]domain.Label, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(loc.Bucket),
				Name:   aws.String(loc.Key),
			},
		},
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrTransport, "detect labels", err)
	}

	labels := make([]domain.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, domain.Label{
			Name:       aws.ToString(l.Name),
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
	}
	return labels, nil
}

func (d *Detector) StartDetection(ctx context.Context, loc domain.ObjectLocation) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := d.client.StartLabelDetection(ctx, &rekognition.StartLabelDetectionInput{
		Video: &types.Video{
			S3Object: &types.S3Object{
				Bucket: aws.String(loc.Bucket),
				Name:   aws.String(loc.Key),
			},
		},
		NotificationChannel: &types.NotificationChannel{
			SNSTopicArn: aws.String(d.topicARN),
			RoleArn:     aws.String(d.roleARN),
		},
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrTransport, "start label detection", err)
	}
	return aws.ToString(out.JobId), nil
}

func (d *Detector) GetResults(ctx context.Context, providerToken string, pageSize int32, continuation string) (domain.DetectionPage, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return domain.DetectionPage{}, err
	}
	in := &rekognition.GetLabelDetectionInput{
		JobId:      aws.String(providerToken),
		MaxResults: aws.Int32(pageSize),
		SortBy:     types.LabelDetectionSortByTimestamp,
	}
	if continuation != "" {
		in.NextToken = aws.String(continuation)
	}

	out, err := d.client.GetLabelDetection(ctx, in)
	if err != nil {
		return domain.DetectionPage{}, domain.WrapError(domain.ErrTransport, "get label detection", err)
	}

	page := domain.DetectionPage{
		NextToken: aws.ToString(out.NextToken),
		Status:    mapJobStatus(out.JobStatus),
	}
	for _, detection := range out.Labels {
		if detection.Label == nil {
			continue
		}
		page.Labels = append(page.Labels, domain.Label{
			Name:       aws.ToString(detection.Label.Name),
			Confidence: float64(aws.ToFloat32(detection.Label.Confidence)),
		})
	}
	return page, nil
}

func mapJobStatus(status types.VideoJobStatus) domain.DetectionStatus {
	switch status {
	case types.VideoJobStatusSucceeded:
		return domain.DetectionSucceeded
	case types.VideoJobStatusFailed:
		return domain.DetectionFailed
	default:
		return domain.DetectionInProgress
	}
}
