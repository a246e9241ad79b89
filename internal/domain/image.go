package domain

import "time"

// Image is the metadata row for one uploaded image. The bytes live in
// object storage under ObjectKey; Order drives the user's gallery sort.
// URL is never persisted: it is a short-lived presigned link computed
// per response, since a stored link would outlive its signature.
type Image struct {
	ImageID    string    `json:"id" dynamodbav:"image_id"`
	UserID     string    `json:"userId" dynamodbav:"user_id"`
	Title      string    `json:"title" dynamodbav:"title"`
	ObjectKey  string    `json:"-" dynamodbav:"object_key"`
	URL        string    `json:"imagePath" dynamodbav:"-"`
	Order      int       `json:"order" dynamodbav:"sort_order"`
	UploadedAt time.Time `json:"uploadedAt" dynamodbav:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// ImageOrder is one entry of a reorder request.
type ImageOrder struct {
	ImageID string `json:"id" validate:"required"`
	Order   int    `json:"order"`
}
