package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pixshelf/pixshelf-api/internal/domain"
)

// ImageRepo provides typed DynamoDB operations for the images table.
type ImageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewImageRepo(client *dynamodb.Client, tableName string) *ImageRepo {
	return &ImageRepo{client: client, tableName: tableName}
}

func (r *ImageRepo) Put(ctx context.Context, img *domain.Image) error {
	item, err := attributevalue.MarshalMap(img)
	if err != nil {
		return fmt.Errorf("marshal image: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ImageRepo) Get(ctx context.Context, imageID string) (*domain.Image, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("image_id", imageID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("image not found: %w", domain.ErrNotFound)
	}
	var img domain.Image
	if err := attributevalue.UnmarshalMap(out.Item, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// ListByUser returns all of a user's images sorted by their gallery order.
// The GSI sort key is the upload timestamp, so ordering on sort_order is
// done here; galleries are small (tens of images).
func (r *ImageRepo) ListByUser(ctx context.Context, userID string) ([]domain.Image, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-uploaded_at-index"),
		KeyConditionExpression:    aws.String("#u = :v"),
		ExpressionAttributeNames:  map[string]string{"#u": "user_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	var images []domain.Image
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &images); err != nil {
		return nil, err
	}
	sort.SliceStable(images, func(i, j int) bool { return images[i].Order < images[j].Order })
	return images, nil
}

func (r *ImageRepo) Update(ctx context.Context, imageID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("image_id", imageID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ImageRepo) Delete(ctx context.Context, imageID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("image_id", imageID),
	})
	return err
}
