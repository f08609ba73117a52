package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/pkg/tryon"
	"github.com/cenkalti/backoff/v4"
	"github.com/gabriel-vasile/mimetype"
)

const tryOnRateScope = "tryon"

var (
	errJobPending = errors.New("try-on job still running")

	allowedPhotoTypes = []string{"image/jpeg", "image/png", "image/webp"}
)

type TryOnService interface {
	Generate(ctx context.Context, clientKey string, req *models.TryOnRequest) (*models.TryOnResponse, error)
}

type tryOnService struct {
	client  tryon.Client
	limiter repository.RateLimitRepository
	cfg     *config.TryOn
}

func NewTryOnService(client tryon.Client, limiter repository.RateLimitRepository, cfg *config.TryOn) TryOnService {
	return &tryOnService{client: client, limiter: limiter, cfg: cfg}
}

func detectPhotoType(photo []byte) (string, bool) {
	mtype := mimetype.Detect(photo)

	for _, allowed := range allowedPhotoTypes {
		if mtype.Is(allowed) {
			return allowed, true
		}
	}

	return mtype.String(), false
}

// Generate submits the photo and garment and polls the job at a fixed
// interval until it finishes or the wall-clock timeout passes.
func (s *tryOnService) Generate(ctx context.Context, clientKey string, req *models.TryOnRequest) (*models.TryOnResponse, error) {
	logger := middleware.LoggerFromContext(ctx)

	if len(req.UserPhoto) == 0 {
		return nil, appErrors.AddValidationError("userPhoto", "is required")
	}

	if s.cfg.MaxPhotoSize > 0 && int64(len(req.UserPhoto)) > s.cfg.MaxPhotoSize {
		return nil, appErrors.AddValidationError("userPhoto", fmt.Sprintf("must be at most %d bytes", s.cfg.MaxPhotoSize))
	}

	mimeType, ok := detectPhotoType(req.UserPhoto)
	if !ok {
		return nil, appErrors.AddValidationError("userPhoto", "must be a JPEG, PNG or WebP image, got "+mimeType)
	}

	if err := checkRateLimit(ctx, s.limiter, tryOnRateScope, clientKey); err != nil {
		return nil, err
	}

	pollCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	jobID, err := s.client.Submit(pollCtx, req.UserPhoto, mimeType, req.GarmentImageURL)
	if err != nil {
		return nil, s.failure(logger, "", err)
	}

	logger.Info("Try-on job submitted", slog.String("jobID", jobID))

	var job *tryon.Job

	poll := func() error {
		j, err := s.client.Status(pollCtx, jobID)
		if err != nil {
			return backoff.Permanent(err)
		}

		if !j.Status.Done() {
			return errJobPending
		}

		job = j

		return nil
	}

	if err := backoff.Retry(poll, backoff.WithContext(backoff.NewConstantBackOff(s.cfg.PollInterval), pollCtx)); err != nil {
		return nil, s.failure(logger, jobID, err)
	}

	if job.Status == tryon.JobFailed || len(job.Output) == 0 {
		logger.Error("Try-on job failed", slog.String("jobID", jobID), slog.String("reason", job.ErrorMessage()))
		metrics.RecordTryOn("failed")

		return nil, appErrors.UpstreamUnavailableError("Try-on generation failed")
	}

	metrics.RecordTryOn("completed")

	return &models.TryOnResponse{ResultImage: job.Output[0]}, nil
}

func (s *tryOnService) failure(logger *slog.Logger, jobID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("Try-on job timed out", slog.String("jobID", jobID), slog.Duration("timeout", s.cfg.Timeout))
		metrics.RecordTryOn("timeout")

		return appErrors.TimeoutError("Try-on generation timed out").WithError(err)
	}

	logger.Error("Try-on request failed", slog.String("jobID", jobID), slog.Any("error", err))
	metrics.RecordTryOn("error")

	return appErrors.UpstreamUnavailableError("Try-on service is unavailable").WithError(err)
}
