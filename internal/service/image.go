package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/fridgewise/backend/config"
)

// ImageService stores ingredient photos in S3
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{
		s3Config: s3Config,
	}
}

// UploadIngredientPhoto uploads photo data to S3 and returns a presigned URL
func (s *ImageService) UploadIngredientPhoto(ctx context.Context, ingredientID uuid.UUID, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("ingredient-photos/%s/%s", ingredientID, uuid.New().String())

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url, err := s.s3Config.GeneratePresignedURL(ctx, key, 7*24*time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to presign photo URL: %w", err)
	}

	log.Printf("[ImageService] Uploaded ingredient photo %s", key)
	return url, nil
}
